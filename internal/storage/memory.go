package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage keeps events in a slice. It is not durable.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []UsageEvent
	closed bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Init(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) RecordUsage(ctx context.Context, event UsageEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	event = cloneEvent(event)
	event.ID = uuid.NewString()
	s.events = append(s.events, event)
	return event.ID, nil
}

func (s *MemoryStorage) GetUsageHistory(ctx context.Context, filter Filter) ([]UsageEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	result := []UsageEvent{}
	for _, event := range s.events {
		if filter.Match(event) {
			result = append(result, cloneEvent(event))
		}
	}
	return result, nil
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cloneEvent copies the entity slices so callers cannot mutate stored history.
func cloneEvent(e UsageEvent) UsageEvent {
	e = normalize(e)
	e.DetectedEntities = append([]string{}, e.DetectedEntities...)
	e.SelectedEntities = append([]string{}, e.SelectedEntities...)
	return e
}
