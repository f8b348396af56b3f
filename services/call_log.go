package services

import (
	"context"
	"sync"

	"github.com/rashedsumon/ai-receptionist/models"
)

// CallLog stores processed calls for the dashboard history.
type CallLog interface {
	RecordCall(ctx context.Context, record *models.CallRecord) error
	RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error)
}

const defaultMemoryCalls = 200

// MemoryCallLog keeps the most recent calls in process. It is used when no
// database is configured.
type MemoryCallLog struct {
	mu       sync.RWMutex
	records  []models.CallRecord
	capacity int
}

func NewMemoryCallLog(capacity int) *MemoryCallLog {
	if capacity <= 0 {
		capacity = defaultMemoryCalls
	}
	return &MemoryCallLog{capacity: capacity}
}

func (l *MemoryCallLog) RecordCall(ctx context.Context, record *models.CallRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, *record)
	if over := len(l.records) - l.capacity; over > 0 {
		l.records = append([]models.CallRecord(nil), l.records[over:]...)
	}
	return nil
}

// RecentCalls returns up to limit calls, newest first.
func (l *MemoryCallLog) RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	out := make([]models.CallRecord, 0, limit)
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.records[i])
	}
	return out, nil
}
