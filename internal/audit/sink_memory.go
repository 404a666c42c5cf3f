package audit

import (
	"context"
	"sync"
)

// MemorySink keeps a bounded in-process trail, useful for tests and for
// deployments without kafka.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 4096
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// Events returns a copy of the recorded trail, oldest first.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Close() error { return nil }
