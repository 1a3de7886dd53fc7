package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustlr/middleware"
	"hustlr/services/booking"
	"hustlr/utils"
)

// BookingHandler exposes the booking lifecycle operations.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func actorFrom(c *gin.Context) booking.Actor {
	id, role := middleware.Actor(c)
	return booking.Actor{ID: id, Role: role}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	bkg, err := h.Service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bkg)
}

// List handles GET /bookings.
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.Service.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// SetStatus handles PUT /bookings/:id/status.
func (h *BookingHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	bkg, err := h.Service.SetStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, bkg)
}

// CancelOrReschedule handles PUT /bookings/:id/cancel.
func (h *BookingHandler) CancelOrReschedule(c *gin.Context) {
	var req booking.CancelRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	bkg, err := h.Service.CancelOrReschedule(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, bkg)
}
