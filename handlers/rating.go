package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustlr/services/rating"
	"hustlr/utils"
)

// RatingHandler exposes rating submission and listing.
type RatingHandler struct {
	Service rating.RatingService
}

func NewRatingHandler(svc rating.RatingService) *RatingHandler {
	return &RatingHandler{Service: svc}
}

// Submit handles POST /bookings/:id/rate.
func (h *RatingHandler) Submit(c *gin.Context) {
	var req rating.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	r, err := h.Service.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ListByProvider handles GET /providers/:id/ratings.
func (h *RatingHandler) ListByProvider(c *gin.Context) {
	ratings, err := h.Service.ListByProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}
