package ledger

import (
	"context"
	"fmt"
	"sync"

	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// MemoryStore is an in-memory HoldingsStore for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	holdings map[id.ParticipantID]map[id.CertificateID]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{holdings: make(map[id.ParticipantID]map[id.CertificateID]uint64)}
}

func (s *MemoryStore) Holding(_ context.Context, participant id.ParticipantID, certID id.CertificateID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holdings[participant][certID], nil
}

func (s *MemoryStore) HoldingsOf(_ context.Context, participant id.ParticipantID) (map[id.CertificateID]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.CertificateID]uint64, len(s.holdings[participant]))
	for certID, amount := range s.holdings[participant] {
		if amount > 0 {
			out[certID] = amount
		}
	}
	return out, nil
}

func (s *MemoryStore) Credit(_ context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(participant, certID, amount)
	return nil
}

func (s *MemoryStore) Debit(_ context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debit(participant, certID, amount)
}

func (s *MemoryStore) ApplyBatch(_ context.Context, from, to id.ParticipantID, pairs []Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A certificate may appear more than once in a batch, so validate the
	// per-id aggregate; a passing batch can then never fail mid-apply. A
	// wrapped aggregate always exceeds any representable balance.
	needed := make(map[id.CertificateID]uint64, len(pairs))
	for _, p := range pairs {
		sum := needed[p.CertificateID] + p.Amount
		if sum < needed[p.CertificateID] {
			return fmt.Errorf("holding of %s for certificate %s: %w", from, p.CertificateID, sentinel.ErrInvalidState)
		}
		needed[p.CertificateID] = sum
	}
	for certID, amount := range needed {
		if s.holdings[from][certID] < amount {
			return fmt.Errorf("holding of %s for certificate %s: %w", from, certID, sentinel.ErrInvalidState)
		}
	}
	for _, p := range pairs {
		if err := s.debit(from, p.CertificateID, p.Amount); err != nil {
			return err
		}
		s.credit(to, p.CertificateID, p.Amount)
	}
	return nil
}

func (s *MemoryStore) credit(participant id.ParticipantID, certID id.CertificateID, amount uint64) {
	if s.holdings[participant] == nil {
		s.holdings[participant] = make(map[id.CertificateID]uint64)
	}
	s.holdings[participant][certID] += amount
}

func (s *MemoryStore) debit(participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	held := s.holdings[participant][certID]
	if held < amount {
		return fmt.Errorf("holding of %s for certificate %s: %w", participant, certID, sentinel.ErrInvalidState)
	}
	s.holdings[participant][certID] = held - amount
	return nil
}
