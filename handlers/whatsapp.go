package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustlr/services/whatsapp"
	"hustlr/utils"
)

// WhatsAppHandler exposes the inbound message webhook consumed by the
// Baileys bridge.
type WhatsAppHandler struct {
	Service whatsapp.MessageService
}

func NewWhatsAppHandler(svc whatsapp.MessageService) *WhatsAppHandler {
	return &WhatsAppHandler{Service: svc}
}

// Webhook handles POST /whatsapp/webhook. Pipeline failures still
// answer 200 with a fallback reply; only malformed requests get an
// error status, since the bridge retries non-2xx deliveries.
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	var msg whatsapp.Inbound
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	outcome, err := h.Service.Handle(c.Request.Context(), msg)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Health handles GET /whatsapp/health.
func (h *WhatsAppHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "WhatsApp Integration",
		"message": "WhatsApp webhook is operational",
	})
}
