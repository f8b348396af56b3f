package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rashedsumon/ai-receptionist/models"
)

var crmHeader = []string{"timestamp", "customer_name", "phone", "intent", "message", "note"}

// CRMService appends leads to a CSV file.
type CRMService struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewCRMService(path string) *CRMService {
	return &CRMService{
		path: path,
		now:  time.Now,
	}
}

// LogLead appends one row, writing the header first if the file is new.
// An empty Timestamp is filled with the current UTC time.
func (s *CRMService) LogLead(ctx context.Context, lead models.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open CRM log: %w", err)
	}
	defer f.Close()

	if lead.Timestamp == "" {
		lead.Timestamp = FormatUTC(s.now())
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(crmHeader); err != nil {
			return fmt.Errorf("failed to write CRM header: %w", err)
		}
	}
	if err := w.Write([]string{
		lead.Timestamp,
		lead.CustomerName,
		lead.Phone,
		string(lead.Intent),
		lead.Message,
		lead.Note,
	}); err != nil {
		return fmt.Errorf("failed to write lead: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write lead: %w", err)
	}
	return nil
}

// ListLeads reads every logged lead back, oldest first.
func (s *CRMService) ListLeads(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Lead{}, nil
		}
		return nil, fmt.Errorf("failed to open CRM log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	leads := []models.Lead{}
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CRM log: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == crmHeader[0] {
				continue
			}
		}
		for len(record) < len(crmHeader) {
			record = append(record, "")
		}
		leads = append(leads, models.Lead{
			Timestamp:    record[0],
			CustomerName: record[1],
			Phone:        record[2],
			Intent:       models.IntentLabel(record[3]),
			Message:      record[4],
			Note:         record[5],
		})
	}

	return leads, nil
}
