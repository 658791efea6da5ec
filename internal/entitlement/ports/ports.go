// Package ports defines the external valuation capability the entitlement
// calculator consumes. The pool adapter is polymorphic: production wires a
// pool-backed implementation, tests wire the static or generated mock
// variants.
package ports

import (
	"context"

	id "tranchor/pkg/domain"
)

// AdapterPort reports a participant's proportional share of an external
// pool's value. Implementations must treat each call as a single atomic read
// and must never call back into the engine.
type AdapterPort interface {
	// GetPoolAddress returns the address of the pool currently backing
	// valuations.
	GetPoolAddress(ctx context.Context) (string, error)

	// SetPoolAddress rotates the backing pool and returns the previous
	// address. Admin-privileged.
	SetPoolAddress(ctx context.Context, addr string) (string, error)

	// GetPoolShare returns the participant's proportional entitlement out of
	// maxAmount. Rejects maxAmount == 0.
	GetPoolShare(ctx context.Context, participant id.ParticipantID, maxAmount uint64) (uint64, error)

	// GetEntireBalance returns the total value held by the pool.
	GetEntireBalance(ctx context.Context) (uint64, error)

	// BalanceOf returns the participant's raw balance in pool-value terms.
	BalanceOf(ctx context.Context, participant id.ParticipantID) (uint64, error)
}
