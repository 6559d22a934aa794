package memory

import (
	"context"
	"fmt"
	"sync"

	"factoring/internal/amqp"
)

// Store keeps the audit trail in memory. Useful for tests and for running
// the worker without Google Sheets credentials.
type Store struct {
	mu    sync.Mutex
	items []amqp.AuditEvent
}

func New() *Store {
	return &Store{}
}

// Append stores the event and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, event *amqp.AuditEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *event)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Events returns a copy of the stored trail.
func (s *Store) Events() []amqp.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]amqp.AuditEvent, len(s.items))
	copy(out, s.items)
	return out
}
