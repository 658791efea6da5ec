package entitlement

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranchor/internal/entitlement/adapters/staticpool"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
)

const alice = id.ParticipantID("alice")

func newCalc(t *testing.T, adapter *staticpool.Adapter) *Calculator {
	t.Helper()
	calc, err := NewCalculator(adapter, 3, 2)
	require.NoError(t, err)
	return calc
}

func TestComputeCap_ReferenceScenario(t *testing.T) {
	// participant balance 10, pool balance 1000, requested 1000: the share
	// stage yields 10 (scaled) and the final cap is 1.
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, 10)
	adapter.SetTotal(1000)

	calc := newCalc(t, adapter)
	cap, err := calc.ComputeCap(context.Background(), alice, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cap)
}

func TestComputeCap_ZeroPool(t *testing.T) {
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, 10)
	adapter.SetTotal(0)

	calc := newCalc(t, adapter)
	_, err := calc.ComputeCap(context.Background(), alice, 1000)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDivisionByZero))
}

func TestComputeCap_Overflow(t *testing.T) {
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, math.MaxUint64)
	adapter.SetTotal(math.MaxUint64)

	calc := newCalc(t, adapter)
	_, err := calc.ComputeCap(context.Background(), alice, math.MaxUint64)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow), "wide products must fail closed, got %v", err)
}

func TestComputeCap_MonotonicInRequestedAmount(t *testing.T) {
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, 250)
	adapter.SetTotal(10_000)

	calc := newCalc(t, adapter)
	ctx := context.Background()

	var prev uint64
	for _, requested := range []uint64{0, 1, 10, 100, 999, 1000, 5000, 100_000, 1_000_000} {
		cap, err := calc.ComputeCap(ctx, alice, requested)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cap, prev,
			"cap must never decrease as requested amount grows (requested=%d)", requested)
		prev = cap
	}
}

func TestComputeCap_ZeroBalanceParticipant(t *testing.T) {
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, 0)
	adapter.SetTotal(1000)

	calc := newCalc(t, adapter)
	cap, err := calc.ComputeCap(context.Background(), alice, 1_000_000)
	require.NoError(t, err)
	assert.Zero(t, cap, "no pool stake means no entitlement")
}

func TestComputeCap_RoundingHalfUp(t *testing.T) {
	// balance 15, pool 10000: share stage computes 15*10^4/10^4 = 15, then
	// half-up on the discarded digit gives 2 at the cap stage boundary.
	adapter := staticpool.New("pool-1")
	adapter.SetBalance(alice, 15)
	adapter.SetTotal(10_000)

	calc := newCalc(t, adapter)
	cap, err := calc.ComputeCap(context.Background(), alice, 1_000_000)
	require.NoError(t, err)

	// share = (15*10^4/10^4 + 5)/10 = 2; cap = ((10^6*2)*10^3/10^4 + 5)/10 / 10^2 = 200.
	assert.Equal(t, uint64(200), cap)
}

func TestNewCalculator_Validation(t *testing.T) {
	adapter := staticpool.New("pool-1")

	_, err := NewCalculator(nil, 3, 2)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = NewCalculator(adapter, 0, 2)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = NewCalculator(adapter, 3, 18)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
