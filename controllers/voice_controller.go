package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/services"
)

// VoiceController receives transcripts pushed by a speech-to-text webhook.
type VoiceController struct {
	receptionist *services.ReceptionistService
}

func NewVoiceController(receptionist *services.ReceptionistService) *VoiceController {
	return &VoiceController{
		receptionist: receptionist,
	}
}

// HandleTranscript processes a signed transcript webhook
func (vc *VoiceController) HandleTranscript(c *gin.Context) {
	var req models.CallRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook data", "details": err.Error()})
		return
	}
	req.Channel = models.ChannelWebhook

	log.Printf("Transcript webhook for session %q from %s", req.SessionID, req.Caller)

	response, err := vc.receptionist.ProcessCall(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process call",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetNotes returns what a production voice setup needs
func (vc *VoiceController) GetNotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"note": services.VoiceNote(),
	})
}
