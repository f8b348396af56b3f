package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rashedsumon/ai-receptionist/metrics"
	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/nlu"
	"github.com/rashedsumon/ai-receptionist/utils"
)

const unknownCaller = "Unknown Caller"

// IntentPredictor classifies a transcript.
type IntentPredictor interface {
	PredictIntent(text string) nlu.Prediction
}

// Calendar is the booking store.
type Calendar interface {
	AddBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	IsSlotConflict(ctx context.Context, startTime string) (bool, error)
	ListSlots(ctx context.Context) ([]models.Booking, error)
}

// LeadLogger is the CRM.
type LeadLogger interface {
	LogLead(ctx context.Context, lead models.Lead) error
}

// ReceptionistService turns one simulated call into an intent, slots and
// the canned action for that intent.
type ReceptionistService struct {
	nlu      IntentPredictor
	calendar Calendar
	crm      LeadLogger
	sms      SMSSender
	calls    CallLog
	now      func() time.Time
}

func NewReceptionistService(predictor IntentPredictor, calendar Calendar, crm LeadLogger, sms SMSSender, calls CallLog) *ReceptionistService {
	if calls == nil {
		calls = NewMemoryCallLog(0)
	}
	return &ReceptionistService{
		nlu:      predictor,
		calendar: calendar,
		crm:      crm,
		sms:      sms,
		calls:    calls,
		now:      time.Now,
	}
}

// SimulateInboundCall builds the event a telephony webhook would deliver.
// An empty session id gets a generated one.
func SimulateInboundCall(sessionID, caller, transcript string) models.CallEvent {
	if sessionID == "" {
		sessionID = "sess-" + uuid.NewString()
	}
	return models.CallEvent{
		SessionID:  sessionID,
		Caller:     caller,
		Transcript: transcript,
	}
}

// VoiceNote explains what a production voice setup needs.
func VoiceNote() string {
	return "Vonage Voice API requires a publicly reachable webhook (answer_url and event_url). " +
		"For production host this service on a public endpoint and point Vonage to it, " +
		"or use ngrok for local dev."
}

func (s *ReceptionistService) ProcessCall(ctx context.Context, req models.CallRequest) (*models.CallResponse, error) {
	event := SimulateInboundCall(req.SessionID, req.Caller, req.Transcript)

	// Classify intent
	prediction := s.nlu.PredictIntent(event.Transcript)
	metrics.RecordPrediction(string(prediction.Label), string(prediction.Source))

	response := &models.CallResponse{
		Event:        event,
		Intent:       prediction.Label,
		Confidence:   prediction.Confidence,
		IntentSource: string(prediction.Source),
		Slots:        utils.ExtractSlots(event.Transcript),
	}

	var err error

	// Handle based on intent
	switch {
	case prediction.Label == models.IntentBookViewing || strings.Contains(strings.ToLower(event.Transcript), "book"):
		err = s.handleBooking(ctx, response)
	case prediction.Label == models.IntentAvailability:
		err = s.handleAvailability(ctx, response)
	case prediction.Label == models.IntentConnectAgent:
		err = s.handleConnectAgent(ctx, response)
	case prediction.Label == models.IntentSellProcess:
		err = s.handleSellProcess(ctx, response)
	default:
		err = s.handleUnknown(ctx, response)
	}

	if err != nil {
		return nil, err
	}

	metrics.RecordCall(string(response.Outcome))

	channel := req.Channel
	if channel == "" {
		channel = models.ChannelAPI
	}
	if err := s.calls.RecordCall(ctx, models.NewCallRecord(response, channel)); err != nil {
		log.Printf("Failed to record call %s: %v", event.SessionID, err)
	}

	return response, nil
}

// RecentCalls lists processed calls, newest first.
func (s *ReceptionistService) RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	return s.calls.RecentCalls(ctx, limit)
}

func (s *ReceptionistService) handleBooking(ctx context.Context, resp *models.CallResponse) error {
	event := resp.Event
	propertyID := resp.Slots.PropertyID

	// The spoken time is only echoed back; the demo books the same time tomorrow.
	startTime := FormatUTC(s.now().Add(24 * time.Hour))

	conflict, err := s.calendar.IsSlotConflict(ctx, startTime)
	if err != nil {
		return fmt.Errorf("failed to check calendar: %w", err)
	}
	if conflict {
		resp.Outcome = models.OutcomeSlotConflict
		resp.Response = "Slot conflict — cannot book at that exact time."
		resp.Actions = []models.Action{
			{Type: "pick_another_time", Label: "Offer Another Time"},
			{Type: "connect_agent", Label: "Connect to Agent"},
		}
		return nil
	}

	booking, err := s.calendar.AddBooking(ctx, models.BookingRequest{
		CustomerName: unknownCaller,
		Phone:        event.Caller,
		PropertyID:   propertyID,
		StartTime:    startTime,
		Notes:        event.Transcript,
	})
	if err != nil {
		return fmt.Errorf("failed to add booking: %w", err)
	}

	// The booking is already committed; a lost CRM row must not hide it
	// from the caller or skip the confirmation.
	if err := s.logLead(ctx, resp, "Booked via AI receptionist"); err != nil {
		log.Printf("WARNING: booking %d saved but lead not logged: %v", booking.ID, err)
	}

	smsText := fmt.Sprintf("Your viewing is booked for %s for property %s. — Real Estate Office", startTime, propertyID)
	ok, info := s.sms.SendSMS(ctx, event.Caller, smsText)
	metrics.RecordSMS(ok)

	resp.Outcome = models.OutcomeBooked
	resp.Booking = booking
	resp.SMS = &models.SMSResult{OK: ok, Info: info}
	resp.Response = "Booking created."
	if !ok {
		resp.Suggestion = "SMS not sent: " + info
	}
	resp.Actions = []models.Action{
		{
			Type:  "view_booking",
			Label: "View Booking",
			Payload: map[string]interface{}{
				"booking_id": booking.ID,
			},
		},
	}
	return nil
}

func (s *ReceptionistService) handleAvailability(ctx context.Context, resp *models.CallResponse) error {
	if err := s.logLead(ctx, resp, "Asked about availability"); err != nil {
		return err
	}

	resp.Outcome = models.OutcomeAvailability
	resp.Response = "Responded: Checking property availability."
	resp.Suggestion = "Yes — it's available. Would you like to book a viewing?"
	resp.Actions = []models.Action{
		{Type: "book_viewing", Label: "Book a Viewing"},
	}
	return nil
}

func (s *ReceptionistService) handleConnectAgent(ctx context.Context, resp *models.CallResponse) error {
	if err := s.logLead(ctx, resp, "Requested agent transfer"); err != nil {
		return err
	}

	resp.Outcome = models.OutcomeAgentRouting
	resp.Response = "Routing to agent."
	resp.Suggestion = "Ring agent or create a callback task."
	resp.Actions = []models.Action{
		{
			Type:  "call",
			Label: "Ring Agent",
			Payload: map[string]interface{}{
				"caller": resp.Event.Caller,
			},
		},
		{Type: "callback_task", Label: "Create Callback Task"},
	}
	return nil
}

func (s *ReceptionistService) handleSellProcess(ctx context.Context, resp *models.CallResponse) error {
	if err := s.logLead(ctx, resp, "Interested in selling"); err != nil {
		return err
	}

	resp.Outcome = models.OutcomeSellerGuide
	resp.Response = "Explained selling process."
	resp.Suggestion = "send seller guide and schedule valuation."
	resp.Actions = []models.Action{
		{Type: "send_seller_guide", Label: "Send Seller Guide"},
		{Type: "schedule_valuation", Label: "Schedule Valuation"},
	}
	return nil
}

func (s *ReceptionistService) handleUnknown(ctx context.Context, resp *models.CallResponse) error {
	if err := s.logLead(ctx, resp, "Unknown intent"); err != nil {
		return err
	}

	resp.Outcome = models.OutcomeFollowUp
	resp.Response = "Intent not recognized confidently; logged for follow-up."
	return nil
}

func (s *ReceptionistService) logLead(ctx context.Context, resp *models.CallResponse, note string) error {
	err := s.crm.LogLead(ctx, models.Lead{
		CustomerName: unknownCaller,
		Phone:        resp.Event.Caller,
		Intent:       resp.Intent,
		Message:      resp.Event.Transcript,
		Note:         note,
	})
	if err != nil {
		return fmt.Errorf("failed to log lead: %w", err)
	}
	return nil
}
