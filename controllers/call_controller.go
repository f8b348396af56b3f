package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/nlu"
	"github.com/rashedsumon/ai-receptionist/services"
)

const defaultCallsLimit = 50

type CallController struct {
	receptionist *services.ReceptionistService
	nlu          *nlu.HybridNLU
}

func NewCallController(receptionist *services.ReceptionistService, hybrid *nlu.HybridNLU) *CallController {
	return &CallController{
		receptionist: receptionist,
		nlu:          hybrid,
	}
}

// HandleCall processes one simulated inbound call
func (cc *CallController) HandleCall(c *gin.Context) {
	var req models.CallRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}
	req.Channel = models.ChannelAPI

	response, err := cc.receptionist.ProcessCall(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process call",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListCalls returns the most recent processed calls
func (cc *CallController) ListCalls(c *gin.Context) {
	limit := defaultCallsLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	calls, err := cc.receptionist.RecentCalls(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve calls",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calls": calls,
		"count": len(calls),
	})
}

// GetSupportedIntents returns the keyword rule table in match order
func (cc *CallController) GetSupportedIntents(c *gin.Context) {
	rules := cc.nlu.Rules()

	intents := make([]map[string]interface{}, 0, len(rules))
	for i, rule := range rules {
		intents = append(intents, map[string]interface{}{
			"intent":   rule.Intent,
			"priority": i + 1,
			"triggers": rule.Triggers,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"intents": intents,
	})
}
