package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/services"
	"github.com/rashedsumon/ai-receptionist/utils"
)

// OfficeController exposes the calendar, the CRM log and the SMS sender to
// the dashboard.
type OfficeController struct {
	calendar *services.CalendarService
	crm      *services.CRMService
	sms      *services.SMSService
}

func NewOfficeController(calendar *services.CalendarService, crm *services.CRMService, sms *services.SMSService) *OfficeController {
	return &OfficeController{
		calendar: calendar,
		crm:      crm,
		sms:      sms,
	}
}

// ListBookings returns every calendar booking
func (oc *OfficeController) ListBookings(c *gin.Context) {
	bookings, err := oc.calendar.ListSlots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve bookings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ListLeads returns every CRM row
func (oc *OfficeController) ListLeads(c *gin.Context) {
	leads, err := oc.crm.ListLeads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve leads",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// SendSMS sends a text to a specific number (manual follow-ups)
func (oc *OfficeController) SendSMS(c *gin.Context) {
	var req struct {
		To   string `json:"to" binding:"required"`
		Text string `json:"text" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	to := utils.CleanPhoneNumber(req.To)
	if !utils.IsValidPhone(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number", "details": req.To})
		return
	}

	ok, info := oc.sms.SendSMS(c.Request.Context(), to, req.Text)
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to send SMS",
			"details": info,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "sent",
		"to":         to,
		"message_id": info,
	})
}

// GetSMSStatus returns SMS service status
func (oc *OfficeController) GetSMSStatus(c *gin.Context) {
	c.JSON(http.StatusOK, oc.sms.GetStatus())
}
