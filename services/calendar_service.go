package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rashedsumon/ai-receptionist/models"
)

// CalendarService keeps bookings in a JSON file holding one array.
type CalendarService struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewCalendarService(path string) *CalendarService {
	return &CalendarService{
		path: path,
		now:  time.Now,
	}
}

// ListSlots returns every booking. A missing file is an empty calendar.
func (s *CalendarService) ListSlots(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// AddBooking appends a booking with the next sequential id.
func (s *CalendarService) AddBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.load()
	if err != nil {
		return nil, err
	}

	booking := models.Booking{
		ID:           len(bookings) + 1,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		PropertyID:   req.PropertyID,
		StartTime:    req.StartTime,
		Notes:        req.Notes,
		Agent:        req.Agent,
		CreatedAt:    FormatUTC(s.now()),
	}
	bookings = append(bookings, booking)

	if err := s.save(bookings); err != nil {
		return nil, err
	}

	return &booking, nil
}

// IsSlotConflict reports whether a booking already starts at exactly
// startTime. Overlaps are not considered.
func (s *CalendarService) IsSlotConflict(ctx context.Context, startTime string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.load()
	if err != nil {
		return false, err
	}

	for _, b := range bookings {
		if b.StartTime == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (s *CalendarService) load() ([]models.Booking, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Booking{}, nil
		}
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("failed to parse calendar %s: %w", s.path, err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *CalendarService) save(bookings []models.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".calendar-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// FormatUTC renders t as UTC ISO-8601 with a trailing "Z".
func FormatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
