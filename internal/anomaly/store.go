package anomaly

import (
	"sync"
	"time"
)

// Store owns the session-keyed baselines. Access to a given session is
// serialized so the detector's read-then-update is atomic per key, while
// distinct sessions proceed independently.
//
// Baselines are never evicted: the map grows with session cardinality for
// the life of the process. Deployments with high session churn should
// layer their own eviction on top rather than rely on this store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	baseline *Baseline
}

// NewStore creates an empty baseline store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

func (s *Store) entryFor(key string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[key]; ok {
		return e
	}
	e = &entry{}
	s.sessions[key] = e
	return e
}

// update runs fn with exclusive access to the key's baseline. fn receives
// nil until the first message for the session has been observed and
// returns the baseline to keep.
func (s *Store) update(key string, fn func(*Baseline) *Baseline) {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseline = fn(e.baseline)
}

// Len returns the number of sessions with an entry in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// BaselineSnapshot is a point-in-time read-only copy of one session's
// statistics, for inspection endpoints.
type BaselineSnapshot struct {
	SessionID            string         `json:"session_id"`
	MessageCount         int64          `json:"message_count"`
	LastSeqNum           int            `json:"last_seq_num"`
	TypeDistribution     map[string]int `json:"type_distribution"`
	AvgMessagesPerMinute float64        `json:"avg_messages_per_minute"`
	StartTime            time.Time      `json:"start_time"`
}

func snapshot(key string, b *Baseline, now time.Time) BaselineSnapshot {
	return BaselineSnapshot{
		SessionID:            key,
		MessageCount:         b.MessageCount(),
		LastSeqNum:           b.LastSeqNum(),
		TypeDistribution:     b.TypeDistribution(),
		AvgMessagesPerMinute: b.AvgMessagesPerMinute(now),
		StartTime:            b.StartTime(),
	}
}

// Snapshot returns a copy of one session's baseline, or false when the
// session has not been observed yet.
func (s *Store) Snapshot(key string) (BaselineSnapshot, bool) {
	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return BaselineSnapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.baseline == nil {
		return BaselineSnapshot{}, false
	}
	return snapshot(key, e.baseline, time.Now()), true
}

// Snapshots returns a copy of every observed session baseline.
func (s *Store) Snapshots() []BaselineSnapshot {
	s.mu.RLock()
	keys := make([]string, 0, len(s.sessions))
	for key := range s.sessions {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	now := time.Now()
	out := make([]BaselineSnapshot, 0, len(keys))
	for _, key := range keys {
		s.mu.RLock()
		e, ok := s.sessions[key]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		e.mu.Lock()
		if e.baseline != nil {
			out = append(out, snapshot(key, e.baseline, now))
		}
		e.mu.Unlock()
	}
	return out
}
