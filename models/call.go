package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallChannel is how a simulated call reached the receptionist.
type CallChannel string

const (
	ChannelAPI       CallChannel = "api"
	ChannelWebSocket CallChannel = "websocket"
	ChannelWebhook   CallChannel = "webhook"
)

// CallRequest is a simulated inbound call: who called and what they said.
type CallRequest struct {
	Caller     string      `json:"caller" binding:"required"`
	Transcript string      `json:"transcript" binding:"required"`
	SessionID  string      `json:"session_id,omitempty"`
	Channel    CallChannel `json:"channel,omitempty"`
}

// CallEvent is what the telephony side would hand over for one call.
type CallEvent struct {
	SessionID  string `json:"session_id"`
	Caller     string `json:"caller"`
	Transcript string `json:"transcript"`
}

// ExtractedSlots holds the naive regex slot values of a transcript.
type ExtractedSlots struct {
	ProposedTime *string `json:"proposed_time" bson:"proposed_time,omitempty"`
	PropertyID   string  `json:"property_id" bson:"property_id"`
}

// CallOutcome names the branch taken for a call.
type CallOutcome string

const (
	OutcomeBooked       CallOutcome = "booked"
	OutcomeSlotConflict CallOutcome = "slot_conflict"
	OutcomeAvailability CallOutcome = "availability"
	OutcomeAgentRouting CallOutcome = "agent_routing"
	OutcomeSellerGuide  CallOutcome = "seller_guide"
	OutcomeFollowUp     CallOutcome = "follow_up"
)

// CallResponse is returned to the dashboard for one processed call.
type CallResponse struct {
	Event        CallEvent      `json:"event"`
	Intent       IntentLabel    `json:"intent"`
	Confidence   float64        `json:"confidence"`
	IntentSource string         `json:"intent_source"`
	Slots        ExtractedSlots `json:"slots"`
	Outcome      CallOutcome    `json:"outcome"`
	Response     string         `json:"response"`
	Suggestion   string         `json:"suggestion,omitempty"`
	Booking      *Booking       `json:"booking,omitempty"`
	SMS          *SMSResult     `json:"sms,omitempty"`
	Actions      []Action       `json:"actions,omitempty"`
}

// Action is a follow-up the dashboard can offer as a button.
type Action struct {
	Type    string                 `json:"type"`
	Label   string                 `json:"label"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// CallRecord is a processed call as stored in the call log.
type CallRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	Caller     string             `bson:"caller" json:"caller"`
	Transcript string             `bson:"transcript" json:"transcript"`
	Intent     IntentLabel        `bson:"intent" json:"intent"`
	Confidence float64            `bson:"confidence" json:"confidence"`
	Source     string             `bson:"source" json:"source"`
	Slots      ExtractedSlots     `bson:"slots" json:"slots"`
	Outcome    CallOutcome        `bson:"outcome" json:"outcome"`
	BookingID  int                `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	SMSSent    bool               `bson:"sms_sent" json:"sms_sent"`
	Channel    CallChannel        `bson:"channel,omitempty" json:"channel,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewCallRecord flattens a response into a call log entry.
func NewCallRecord(resp *CallResponse, channel CallChannel) *CallRecord {
	record := &CallRecord{
		SessionID:  resp.Event.SessionID,
		Caller:     resp.Event.Caller,
		Transcript: resp.Event.Transcript,
		Intent:     resp.Intent,
		Confidence: resp.Confidence,
		Source:     resp.IntentSource,
		Slots:      resp.Slots,
		Outcome:    resp.Outcome,
		Channel:    channel,
		Timestamp:  time.Now().UTC(),
	}
	if resp.Booking != nil {
		record.BookingID = resp.Booking.ID
	}
	if resp.SMS != nil {
		record.SMSSent = resp.SMS.OK
	}
	return record
}
