package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustlr/middleware"
	"hustlr/services/provider"
	"hustlr/utils"
)

// ProviderHandler exposes the provider directory.
type ProviderHandler struct {
	Service provider.ProviderService
}

func NewProviderHandler(svc provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{Service: svc}
}

// Register handles POST /providers.
func (h *ProviderHandler) Register(c *gin.Context) {
	var req provider.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	actorID, role := middleware.Actor(c)
	p, err := h.Service.Register(c.Request.Context(), actorID, role, req)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /providers/:id.
func (h *ProviderHandler) Get(c *gin.Context) {
	p, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Mine handles GET /providers/mine.
func (h *ProviderHandler) Mine(c *gin.Context) {
	actorID, _ := middleware.Actor(c)
	providers, err := h.Service.ListByUser(c.Request.Context(), actorID)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

// Search handles POST /bookings/search_providers.
func (h *ProviderHandler) Search(c *gin.Context) {
	var req provider.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	providers, err := h.Service.Search(c.Request.Context(), req)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}
