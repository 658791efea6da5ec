package memory

import (
	"context"
	"sync"

	id "tranchor/pkg/domain"
	audit "tranchor/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ParticipantID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ParticipantID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ParticipantID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Participant] = append(s.events[event.Participant], event)
	return nil
}

func (s *InMemoryStore) ListByParticipant(_ context.Context, participant id.ParticipantID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[participant]...), nil
}

// ListAll returns all audit events across all participants.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allEvents []audit.Event
	for _, participantEvents := range s.events {
		allEvents = append(allEvents, participantEvents...)
	}

	return allEvents, nil
}
