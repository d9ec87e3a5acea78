package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/compliance"
	"github.com/fixsecurity/fixsentry/internal/fix"
	"github.com/fixsecurity/fixsentry/internal/platform"
)

// Record is one processed message retained for the query endpoints.
type Record struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"session_id"`
	ReceivedAt time.Time          `json:"received_at"`
	Message    *fix.Message       `json:"message"`
	Compliance *compliance.Result `json:"compliance"`
	Anomalies  *anomaly.Result    `json:"anomalies"`
}

// MessageStore keeps the most recent processed messages in memory for the
// query endpoints, dropping the oldest once the cap is reached. It is
// demo-grade storage: a production deployment would persist these in a
// database.
type MessageStore struct {
	mu      sync.RWMutex
	records []Record
	max     int
}

// NewMessageStore creates a store capped at max records.
func NewMessageStore(max int) *MessageStore {
	if max <= 0 {
		max = 10000
	}
	return &MessageStore{max: max}
}

// Add retains a processed result and returns the stored record.
func (s *MessageStore) Add(res *platform.Result) Record {
	rec := Record{
		ID:         uuid.NewString(),
		SessionID:  res.Message.SessionID(),
		ReceivedAt: time.Now().UTC(),
		Message:    res.Message,
		Compliance: res.Compliance,
		Anomalies:  res.Anomalies,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return rec
}

// Filter returns the records matching the optional session and message
// type filters, oldest first.
func (s *MessageStore) Filter(sessionID, msgType string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		if msgType != "" && rec.Message.MsgType != msgType {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Get returns the record with the given id.
func (s *MessageStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
