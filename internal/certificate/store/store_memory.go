package store

import (
	"context"
	"sort"
	"sync"

	"tranchor/internal/certificate/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu           sync.RWMutex
	certificates map[id.CertificateID]*models.Certificate
	maxID        id.CertificateID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{certificates: make(map[id.CertificateID]*models.Certificate)}
}

func (s *InMemoryStore) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.certificates[cert.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *cert
	s.certificates[cert.ID] = &copied
	if cert.ID > s.maxID {
		s.maxID = cert.ID
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.certificates[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *cert
	return &copied, nil
}

func (s *InMemoryStore) Exists(_ context.Context, certID id.CertificateID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.certificates[certID]
	return ok, nil
}

func (s *InMemoryStore) MaxID(_ context.Context) (id.CertificateID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxID, nil
}

func (s *InMemoryStore) DecrementSupply(_ context.Context, certID id.CertificateID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cert, ok := s.certificates[certID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cert.TotalSupply < amount {
		return sentinel.ErrInvalidState
	}
	cert.TotalSupply -= amount
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	certs := make([]*models.Certificate, 0, len(s.certificates))
	for _, cert := range s.certificates {
		copied := *cert
		certs = append(certs, &copied)
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].ID < certs[j].ID })
	return certs, nil
}
