package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rashedsumon/ai-receptionist/config"
)

func TestSMSWithoutCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := NewSMSService(config.SMSConfig{BaseURL: srv.URL, From: "RE-Office"})
	ok, info := s.SendSMS(context.Background(), "+15551234567", "hi")

	if ok || info != "Vonage credentials not provided" {
		t.Errorf("SendSMS = (%v, %q)", ok, info)
	}
	if called {
		t.Error("no request should be made without credentials")
	}
}

func TestSMSSend(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantOK   bool
		wantInfo string
	}{
		{
			name:     "accepted",
			status:   http.StatusOK,
			body:     `{"message-count":"1","messages":[{"to":"15551234567","message-id":"0A0000000123ABCD1","status":"0"}]}`,
			wantOK:   true,
			wantInfo: "0A0000000123ABCD1",
		},
		{
			name:     "rejected",
			status:   http.StatusOK,
			body:     `{"message-count":"1","messages":[{"status":"4","error-text":"Bad Credentials"}]}`,
			wantInfo: "Vonage status 4: Bad Credentials",
		},
		{
			name:     "http error",
			status:   http.StatusInternalServerError,
			body:     "boom",
			wantInfo: "Vonage API error (500): boom",
		},
		{
			name:     "no messages",
			status:   http.StatusOK,
			body:     `{"message-count":"0","messages":[]}`,
			wantInfo: "Vonage returned no messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotForm map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/sms/json" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("ParseForm: %v", err)
				}
				gotForm = map[string]string{
					"api_key": r.PostForm.Get("api_key"),
					"from":    r.PostForm.Get("from"),
					"to":      r.PostForm.Get("to"),
					"text":    r.PostForm.Get("text"),
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewSMSService(config.SMSConfig{
				APIKey:    "key",
				APISecret: "secret",
				From:      "RE-Office",
				BaseURL:   srv.URL + "/",
				Timeout:   time.Second,
			})
			ok, info := s.SendSMS(context.Background(), "+1 (555) 123-4567", "Your viewing is booked")

			if ok != tt.wantOK || info != tt.wantInfo {
				t.Errorf("SendSMS = (%v, %q), want (%v, %q)", ok, info, tt.wantOK, tt.wantInfo)
			}
			if gotForm["to"] != "15551234567" || gotForm["from"] != "RE-Office" || gotForm["api_key"] != "key" {
				t.Errorf("form = %v", gotForm)
			}

			status := s.GetStatus()
			if tt.wantOK && status.MessageCountDay != 1 {
				t.Errorf("MessageCountDay = %d, want 1", status.MessageCountDay)
			}
			if !tt.wantOK && status.FailedCountToday != 1 {
				t.Errorf("FailedCountToday = %d, want 1", status.FailedCountToday)
			}
		})
	}
}

func TestSMSUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := NewSMSService(config.SMSConfig{APIKey: "k", APISecret: "s", BaseURL: url, Timeout: time.Second})
	ok, info := s.SendSMS(context.Background(), "15551234567", "hi")
	if ok {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(info, "failed to send request") {
		t.Errorf("info = %q", info)
	}
}
