package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rashedsumon/ai-receptionist/config"
	"github.com/rashedsumon/ai-receptionist/models"
	"github.com/rashedsumon/ai-receptionist/utils"
)

// SMSSender is the remote SMS collaborator.
type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) (bool, string)
}

// SMSService sends texts through the Vonage SMS API.
type SMSService struct {
	apiURL     string
	apiKey     string
	apiSecret  string
	from       string
	httpClient *http.Client

	// Status tracking
	statusMu     sync.RWMutex
	lastSentTime time.Time
	dailyCount   map[string]int
	dailyFailed  map[string]int
}

type vonageResponse struct {
	MessageCount string          `json:"message-count"`
	Messages     []vonageMessage `json:"messages"`
}

type vonageMessage struct {
	To        string `json:"to"`
	MessageID string `json:"message-id"`
	Status    string `json:"status"`
	ErrorText string `json:"error-text"`
}

func NewSMSService(cfg config.SMSConfig) *SMSService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMSService{
		apiURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		from:      cfg.From,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dailyCount:  make(map[string]int),
		dailyFailed: make(map[string]int),
	}
}

// Configured reports whether credentials are present.
func (s *SMSService) Configured() bool {
	return s.apiKey != "" && s.apiSecret != ""
}

// SendSMS sends text to the given number. It never returns an error: the
// bool says whether Vonage accepted the message and the string carries the
// message id or the failure reason.
func (s *SMSService) SendSMS(ctx context.Context, to, text string) (bool, string) {
	if !s.Configured() {
		return false, "Vonage credentials not provided"
	}

	ok, info := s.send(ctx, utils.CleanPhoneNumber(to), text)
	s.updateStatus(ok)
	if !ok {
		log.Printf("SMS to %s failed: %s", to, info)
	}
	return ok, info
}

func (s *SMSService) send(ctx context.Context, to, text string) (bool, string) {
	form := url.Values{
		"api_key":    {s.apiKey},
		"api_secret": {s.apiSecret},
		"from":       {s.from},
		"to":         {to},
		"text":       {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/sms/json", strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Sprintf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Sprintf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("Vonage API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result vonageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Sprintf("failed to parse response: %v", err)
	}
	if len(result.Messages) == 0 {
		return false, "Vonage returned no messages"
	}

	msg := result.Messages[0]
	if msg.Status != "0" {
		return false, fmt.Sprintf("Vonage status %s: %s", msg.Status, msg.ErrorText)
	}
	return true, msg.MessageID
}

func (s *SMSService) updateStatus(ok bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	today := time.Now().Format("2006-01-02")
	if !ok {
		s.dailyFailed[today]++
		return
	}
	s.lastSentTime = time.Now()
	s.dailyCount[today]++
}

// GetStatus returns the service status
func (s *SMSService) GetStatus() models.SMSServiceStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()

	today := time.Now().Format("2006-01-02")

	return models.SMSServiceStatus{
		Enabled:          s.Configured(),
		Provider:         "vonage",
		LastMessageSent:  s.lastSentTime,
		MessageCountDay:  s.dailyCount[today],
		FailedCountToday: s.dailyFailed[today],
	}
}
