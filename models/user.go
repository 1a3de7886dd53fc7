package models

import "time"

// Roles recognized by the identity layer.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// User is an account reachable over the WhatsApp bridge or the API.
type User struct {
	ID           string    `bson:"id" json:"id"`
	PhoneNumber  string    `bson:"phone_number" json:"phone_number"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
