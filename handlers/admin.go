package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	ratingRepo "hustlr/database/repository/rating"
	userRepo "hustlr/database/repository/user"
	"hustlr/middleware"
	"hustlr/services/provider"
	"hustlr/utils"
)

// AdminHandler exposes platform administration: provider verification
// and headline statistics.
type AdminHandler struct {
	Providers    provider.ProviderService
	UserRepo     userRepo.UserRepository
	ProviderRepo providerRepo.ProviderRepository
	BookingRepo  bookingRepo.BookingRepository
	RatingRepo   ratingRepo.RatingRepository
}

// VerifyProvider handles PUT /admin/providers/:id/verify.
func (h *AdminHandler) VerifyProvider(c *gin.Context) {
	_, role := middleware.Actor(c)
	if err := h.Providers.Verify(c.Request.Context(), role, c.Param("id")); err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Provider verified"})
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.UserRepo.Count(ctx)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	providers, err := h.ProviderRepo.Count(ctx)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	bookings, err := h.BookingRepo.Count(ctx)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	ratings, err := h.RatingRepo.Count(ctx)
	if err != nil {
		utils.JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":     users,
		"total_providers": providers,
		"total_bookings":  bookings,
		"total_ratings":   ratings,
	})
}
