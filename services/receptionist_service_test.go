package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/nlu"
)

type fakeSMS struct {
	ok    bool
	info  string
	to    []string
	texts []string
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, text string) (bool, string) {
	f.to = append(f.to, to)
	f.texts = append(f.texts, text)
	return f.ok, f.info
}

type failingCRM struct{}

func (failingCRM) LogLead(ctx context.Context, lead models.Lead) error {
	return errors.New("disk full")
}

type failingCallLog struct{}

func (failingCallLog) RecordCall(ctx context.Context, record *models.CallRecord) error {
	return errors.New("mongo down")
}

func (failingCallLog) RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	return nil, nil
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type receptionistFixture struct {
	svc      *ReceptionistService
	calendar *CalendarService
	crm      *CRMService
	sms      *fakeSMS
	calls    *MemoryCallLog
}

func newReceptionistFixture(t *testing.T, rules []nlu.IntentRule) *receptionistFixture {
	t.Helper()
	dir := t.TempDir()

	f := &receptionistFixture{
		calendar: NewCalendarService(filepath.Join(dir, "calendar_db.json")),
		crm:      NewCRMService(filepath.Join(dir, "crm_leads.csv")),
		sms:      &fakeSMS{ok: true, info: "msg-1"},
		calls:    NewMemoryCallLog(10),
	}
	f.calendar.now = func() time.Time { return fixedNow }
	f.crm.now = func() time.Time { return fixedNow }

	predictor := nlu.New(nlu.Options{Rules: rules})
	f.svc = NewReceptionistService(predictor, f.calendar, f.crm, f.sms, f.calls)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestProcessCallBranches(t *testing.T) {
	tests := []struct {
		name        string
		transcript  string
		wantIntent  models.IntentLabel
		wantOutcome models.CallOutcome
		wantNote    string
		wantSuggest string
	}{
		{
			name:        "availability",
			transcript:  "Is the apartment 7 still available?",
			wantIntent:  models.IntentAvailability,
			wantOutcome: models.OutcomeAvailability,
			wantNote:    "Asked about availability",
			wantSuggest: "Yes — it's available. Would you like to book a viewing?",
		},
		{
			name:        "connect agent",
			transcript:  "Can you connect me to someone",
			wantIntent:  models.IntentConnectAgent,
			wantOutcome: models.OutcomeAgentRouting,
			wantNote:    "Requested agent transfer",
			wantSuggest: "Ring agent or create a callback task.",
		},
		{
			name:        "sell process",
			transcript:  "How do I sell my house",
			wantIntent:  models.IntentSellProcess,
			wantOutcome: models.OutcomeSellerGuide,
			wantNote:    "Interested in selling",
			wantSuggest: "send seller guide and schedule valuation.",
		},
		{
			name:        "pricing falls through to follow-up",
			transcript:  "how much would that cost",
			wantIntent:  models.IntentPricing,
			wantOutcome: models.OutcomeFollowUp,
			wantNote:    "Unknown intent",
		},
		{
			name:        "unrecognised",
			transcript:  "zzz qqq",
			wantIntent:  models.IntentUnknown,
			wantOutcome: models.OutcomeFollowUp,
			wantNote:    "Unknown intent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReceptionistFixture(t, nil)
			ctx := context.Background()

			resp, err := f.svc.ProcessCall(ctx, models.CallRequest{
				Caller:     "+15551234567",
				Transcript: tt.transcript,
				SessionID:  "sess-1",
			})
			if err != nil {
				t.Fatalf("ProcessCall: %v", err)
			}

			if resp.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", resp.Intent, tt.wantIntent)
			}
			if resp.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", resp.Outcome, tt.wantOutcome)
			}
			if resp.Suggestion != tt.wantSuggest {
				t.Errorf("Suggestion = %q, want %q", resp.Suggestion, tt.wantSuggest)
			}
			if resp.Booking != nil || len(f.sms.texts) != 0 {
				t.Error("non-booking branch must not book or text")
			}

			leads, err := f.crm.ListLeads(ctx)
			if err != nil {
				t.Fatalf("ListLeads: %v", err)
			}
			if len(leads) != 1 {
				t.Fatalf("got %d leads, want 1", len(leads))
			}
			if leads[0].Note != tt.wantNote || leads[0].Message != tt.transcript || leads[0].Phone != "+15551234567" {
				t.Errorf("lead = %+v", leads[0])
			}
		})
	}
}

func TestProcessCallBooking(t *testing.T) {
	f := newReceptionistFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.ProcessCall(ctx, models.CallRequest{
		Caller:     "+15551234567",
		Transcript: "I'd like to book a viewing for property 42 tomorrow at 3pm",
	})
	if err != nil {
		t.Fatalf("ProcessCall: %v", err)
	}

	if resp.Intent != models.IntentBookViewing || resp.Confidence != 0.9 || resp.IntentSource != "rules" {
		t.Errorf("prediction = %q %v %q", resp.Intent, resp.Confidence, resp.IntentSource)
	}
	if resp.Outcome != models.OutcomeBooked {
		t.Fatalf("Outcome = %q, want booked", resp.Outcome)
	}
	if resp.Slots.PropertyID != "42" || resp.Slots.ProposedTime == nil || *resp.Slots.ProposedTime != "tomorrow" {
		t.Errorf("slots = %+v", resp.Slots)
	}
	if len(resp.Event.SessionID) <= len("sess-") || resp.Event.SessionID[:5] != "sess-" {
		t.Errorf("SessionID = %q, want generated sess- id", resp.Event.SessionID)
	}

	wantStart := "2025-03-02T10:00:00.000000Z"
	if resp.Booking == nil || resp.Booking.StartTime != wantStart || resp.Booking.CustomerName != "Unknown Caller" {
		t.Fatalf("booking = %+v", resp.Booking)
	}

	wantText := "Your viewing is booked for " + wantStart + " for property 42. — Real Estate Office"
	if len(f.sms.texts) != 1 || f.sms.texts[0] != wantText || f.sms.to[0] != "+15551234567" {
		t.Errorf("sms = %v to %v", f.sms.texts, f.sms.to)
	}
	if resp.SMS == nil || !resp.SMS.OK || resp.SMS.Info != "msg-1" {
		t.Errorf("SMS = %+v", resp.SMS)
	}

	leads, _ := f.crm.ListLeads(ctx)
	if len(leads) != 1 || leads[0].Note != "Booked via AI receptionist" {
		t.Errorf("leads = %+v", leads)
	}

	calls, _ := f.calls.RecentCalls(ctx, 0)
	if len(calls) != 1 || calls[0].BookingID != resp.Booking.ID || !calls[0].SMSSent || calls[0].Channel != models.ChannelAPI {
		t.Errorf("call log = %+v", calls)
	}
}

func TestProcessCallSlotConflict(t *testing.T) {
	f := newReceptionistFixture(t, nil)
	ctx := context.Background()

	req := models.CallRequest{Caller: "+15551234567", Transcript: "book a viewing please"}
	if _, err := f.svc.ProcessCall(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}

	resp, err := f.svc.ProcessCall(ctx, req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if resp.Outcome != models.OutcomeSlotConflict {
		t.Errorf("Outcome = %q, want slot_conflict", resp.Outcome)
	}
	if resp.Booking != nil || len(f.sms.texts) != 1 {
		t.Error("conflicting call must not book or text")
	}

	slots, _ := f.calendar.ListSlots(ctx)
	if len(slots) != 1 {
		t.Errorf("got %d bookings, want 1", len(slots))
	}
}

func TestProcessCallBookWordOverridesLabel(t *testing.T) {
	rules := []nlu.IntentRule{{Intent: models.IntentGeneral, Triggers: []string{"facebook"}}}
	f := newReceptionistFixture(t, rules)

	resp, err := f.svc.ProcessCall(context.Background(), models.CallRequest{
		Caller:     "+15551234567",
		Transcript: "I saw your ad on Facebook",
	})
	if err != nil {
		t.Fatalf("ProcessCall: %v", err)
	}
	if resp.Intent != models.IntentGeneral {
		t.Errorf("Intent = %q, want general", resp.Intent)
	}
	if resp.Outcome != models.OutcomeBooked {
		t.Errorf("Outcome = %q, want booked", resp.Outcome)
	}
}

func TestProcessCallSMSFailureIsReported(t *testing.T) {
	f := newReceptionistFixture(t, nil)
	f.sms.ok = false
	f.sms.info = "Vonage credentials not provided"

	resp, err := f.svc.ProcessCall(context.Background(), models.CallRequest{
		Caller:     "+15551234567",
		Transcript: "schedule a visit",
	})
	if err != nil {
		t.Fatalf("ProcessCall: %v", err)
	}
	if resp.Outcome != models.OutcomeBooked || resp.SMS == nil || resp.SMS.OK {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Suggestion != "SMS not sent: Vonage credentials not provided" {
		t.Errorf("Suggestion = %q", resp.Suggestion)
	}
}

func TestProcessCallErrors(t *testing.T) {
	dir := t.TempDir()
	calendar := NewCalendarService(filepath.Join(dir, "calendar_db.json"))

	svc := NewReceptionistService(nlu.New(nlu.Options{}), calendar, failingCRM{}, &fakeSMS{}, nil)
	if _, err := svc.ProcessCall(context.Background(), models.CallRequest{Caller: "1", Transcript: "is it available"}); err == nil {
		t.Error("expected CRM failure to surface")
	}

	crm := NewCRMService(filepath.Join(dir, "crm_leads.csv"))
	svc = NewReceptionistService(nlu.New(nlu.Options{}), calendar, crm, &fakeSMS{}, failingCallLog{})
	if _, err := svc.ProcessCall(context.Background(), models.CallRequest{Caller: "1", Transcript: "is it available"}); err != nil {
		t.Errorf("call log failure should not fail the call: %v", err)
	}
}

func TestBookingSurvivesCRMFailure(t *testing.T) {
	f := newReceptionistFixture(t, nil)
	f.svc.crm = failingCRM{}
	ctx := context.Background()

	resp, err := f.svc.ProcessCall(ctx, models.CallRequest{
		Caller:     "+15551234567",
		Transcript: "I want to book a viewing for property 12",
	})
	if err != nil {
		t.Fatalf("ProcessCall: %v", err)
	}
	if resp.Outcome != models.OutcomeBooked || resp.Booking == nil {
		t.Fatalf("response = %+v", resp)
	}
	if resp.SMS == nil || !resp.SMS.OK || len(f.sms.texts) != 1 {
		t.Errorf("confirmation SMS not sent: %+v", resp.SMS)
	}

	slots, err := f.calendar.ListSlots(ctx)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != resp.Booking.ID {
		t.Errorf("slots = %+v", slots)
	}
}

func TestMemoryCallLogNewestFirst(t *testing.T) {
	l := NewMemoryCallLog(2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := l.RecordCall(ctx, &models.CallRecord{SessionID: id}); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := l.RecentCalls(ctx, 0)
	if len(got) != 2 || got[0].SessionID != "c" || got[1].SessionID != "b" {
		t.Errorf("RecentCalls = %+v", got)
	}

	got, _ = l.RecentCalls(ctx, 1)
	if len(got) != 1 || got[0].SessionID != "c" {
		t.Errorf("RecentCalls(1) = %+v", got)
	}
}

func TestSimulateInboundCallKeepsSessionID(t *testing.T) {
	event := SimulateInboundCall("sess-fixed", "+1555", "hello")
	if event.SessionID != "sess-fixed" || event.Caller != "+1555" || event.Transcript != "hello" {
		t.Errorf("event = %+v", event)
	}
}
