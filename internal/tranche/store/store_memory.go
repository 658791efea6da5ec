package store

import (
	"context"
	"sort"
	"sync"

	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// InMemoryStore keeps tranche definitions and assignments in maps guarded by
// a RWMutex. Definitions are cloned on the way in and out so no caller can
// alias registry state.
type InMemoryStore struct {
	mu          sync.RWMutex
	definitions map[id.TrancheLevel]*models.Definition
	assignments map[id.ParticipantID]id.TrancheLevel
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		definitions: make(map[id.TrancheLevel]*models.Definition),
		assignments: make(map[id.ParticipantID]id.TrancheLevel),
	}
}

func (s *InMemoryStore) SaveDefinition(_ context.Context, def *models.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[def.Level] = def.Clone()
	return nil
}

func (s *InMemoryStore) GetDefinition(_ context.Context, level id.TrancheLevel) (*models.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.definitions[level]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return def.Clone(), nil
}

func (s *InMemoryStore) ListDefinitions(_ context.Context) ([]*models.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]*models.Definition, 0, len(s.definitions))
	for _, def := range s.definitions {
		defs = append(defs, def.Clone())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Level < defs[j].Level })
	return defs, nil
}

func (s *InMemoryStore) Assign(_ context.Context, participant id.ParticipantID, level id.TrancheLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[participant] = level
	return nil
}

func (s *InMemoryStore) LevelOf(_ context.Context, participant id.ParticipantID) (id.TrancheLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.assignments[participant]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return level, nil
}
