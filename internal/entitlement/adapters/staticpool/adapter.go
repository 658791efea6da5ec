// Package staticpool provides an in-memory AdapterPort backed by fixed
// balances. It serves as the no-op/test variant and as the dev-mode pool when
// no external valuation source is configured.
package staticpool

import (
	"context"
	"math/bits"
	"sync"

	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
)

type Adapter struct {
	mu       sync.RWMutex
	poolAddr string
	balances map[id.ParticipantID]uint64
	total    uint64
}

func New(poolAddr string) *Adapter {
	return &Adapter{
		poolAddr: poolAddr,
		balances: make(map[id.ParticipantID]uint64),
	}
}

// SetBalance fixes a participant's pool-value balance. The pool total is the
// sum of all set balances unless overridden by SetTotal.
func (a *Adapter) SetBalance(participant id.ParticipantID, balance uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.balances[participant]
	a.balances[participant] = balance
	a.total = a.total - prev + balance
}

// SetTotal overrides the pool total independent of per-participant balances.
func (a *Adapter) SetTotal(total uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = total
}

func (a *Adapter) GetPoolAddress(context.Context) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.poolAddr, nil
}

func (a *Adapter) SetPoolAddress(_ context.Context, addr string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.poolAddr
	a.poolAddr = addr
	return prev, nil
}

func (a *Adapter) GetPoolShare(ctx context.Context, participant id.ParticipantID, maxAmount uint64) (uint64, error) {
	if maxAmount == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "max amount must be positive")
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.total == 0 {
		return 0, dErrors.New(dErrors.CodeDivisionByZero, "pool balance is zero")
	}

	// 128-bit intermediate: maxAmount is caller-supplied and may be huge.
	hi, lo := bits.Mul64(maxAmount, a.balances[participant])
	if hi >= a.total {
		return 0, dErrors.New(dErrors.CodeOverflow, "pool share computation overflows")
	}
	share, _ := bits.Div64(hi, lo, a.total)
	return share, nil
}

func (a *Adapter) GetEntireBalance(context.Context) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total, nil
}

func (a *Adapter) BalanceOf(_ context.Context, participant id.ParticipantID) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balances[participant], nil
}
