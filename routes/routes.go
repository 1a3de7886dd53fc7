package routes

import (
	"github.com/gin-gonic/gin"

	"hustlr/handlers"
	"hustlr/middleware"
	"hustlr/models"
	"hustlr/utils"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Booking  *handlers.BookingHandler
	Rating   *handlers.RatingHandler
	Provider *handlers.ProviderHandler
	Admin    *handlers.AdminHandler
	WhatsApp *handlers.WhatsAppHandler
	Tokens   *utils.TokenIssuer
}

// Register wires all endpoints onto the router.
func Register(r *gin.Engine, h Handlers) {
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.JWTAuthMiddleware(h.Tokens), h.Auth.Me)
	}

	bookings := api.Group("/bookings", middleware.JWTAuthMiddleware(h.Tokens))
	{
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.PUT("/:id/status", h.Booking.SetStatus)
		bookings.PUT("/:id/cancel", h.Booking.CancelOrReschedule)
		bookings.POST("/:id/rate", h.Rating.Submit)
		bookings.POST("/search_providers", h.Provider.Search)
	}

	providers := api.Group("/providers")
	{
		providers.POST("", middleware.JWTAuthMiddleware(h.Tokens), h.Provider.Register)
		providers.GET("/mine", middleware.JWTAuthMiddleware(h.Tokens), h.Provider.Mine)
		providers.GET("/:id", h.Provider.Get)
		providers.GET("/:id/ratings", h.Rating.ListByProvider)
	}

	admin := api.Group("/admin",
		middleware.JWTAuthMiddleware(h.Tokens),
		middleware.RequireRole(models.RoleAdmin))
	{
		admin.PUT("/providers/:id/verify", h.Admin.VerifyProvider)
		admin.GET("/stats", h.Admin.Stats)
	}

	wa := api.Group("/whatsapp")
	{
		wa.POST("/webhook", h.WhatsApp.Webhook)
		wa.GET("/health", h.WhatsApp.Health)
	}
}
