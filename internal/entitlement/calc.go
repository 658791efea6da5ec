// Package entitlement computes the dynamic cap a participant may move for a
// certificate: a percent-of-percent of the requested amount derived from the
// participant's share of the backing pool's value.
//
// All arithmetic is unsigned fixed-precision integer math with round-half-up
// on the discarded digit. Any intermediate product that would exceed uint64
// fails closed with an Overflow error rather than wrapping.
package entitlement

import (
	"context"
	"math/bits"

	"tranchor/internal/entitlement/ports"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
)

// Calculator derives entitlement caps from adapter-reported balances.
// It holds no state beyond configuration; caps are recomputed on every call
// because pool value changes between calls.
type Calculator struct {
	adapter        ports.AdapterPort
	sharePrecision uint
	capPrecision   uint
}

// maxPrecision keeps 10^(p+1) comfortably inside uint64.
const maxPrecision = 17

// NewCalculator builds a calculator with the given decimal precisions.
// Reference configuration is share precision 3, cap precision 2.
func NewCalculator(adapter ports.AdapterPort, sharePrecision, capPrecision uint) (*Calculator, error) {
	if adapter == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "adapter port is required")
	}
	if sharePrecision == 0 || sharePrecision > maxPrecision {
		return nil, dErrors.Newf(dErrors.CodeValidation, "share precision must be in [1,%d]", maxPrecision)
	}
	if capPrecision == 0 || capPrecision > maxPrecision {
		return nil, dErrors.Newf(dErrors.CodeValidation, "cap precision must be in [1,%d]", maxPrecision)
	}
	return &Calculator{
		adapter:        adapter,
		sharePrecision: sharePrecision,
		capPrecision:   capPrecision,
	}, nil
}

// ComputeCap returns the amount of requestedAmount the participant is
// entitled to move, given their current share of the pool.
//
// Stage one scales the participant's pool share to sharePrecision digits;
// stage two applies that share to the requested amount at capPrecision
// digits. Both stages round half-up on the discarded digit.
func (c *Calculator) ComputeCap(ctx context.Context, participant id.ParticipantID, requestedAmount uint64) (uint64, error) {
	participantBalance, err := c.adapter.BalanceOf(ctx, participant)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read participant balance")
	}
	poolBalance, err := c.adapter.GetEntireBalance(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read pool balance")
	}

	if poolBalance == 0 {
		return 0, dErrors.New(dErrors.CodeDivisionByZero, "pool balance is zero")
	}

	share, err := pct(participantBalance, poolBalance, c.sharePrecision)
	if err != nil {
		return 0, err
	}

	scaled, overflow := mulChecked(requestedAmount, share)
	if overflow {
		return 0, dErrors.New(dErrors.CodeOverflow, "requested amount times share exceeds uint64")
	}

	capScaled, err := pct(scaled, pow10(c.sharePrecision+1), c.capPrecision)
	if err != nil {
		return 0, err
	}
	return capScaled / pow10(c.capPrecision), nil
}

// pct computes numerator/denominator as a percentage scaled to precision
// decimal digits, rounding half-up on the extra digit.
func pct(numerator, denominator uint64, precision uint) (uint64, error) {
	factor := pow10(precision + 1)
	prod, overflow := mulChecked(numerator, factor)
	if overflow {
		return 0, dErrors.New(dErrors.CodeOverflow, "scaled numerator exceeds uint64")
	}
	q := prod / denominator
	return (q + 5) / 10, nil
}

func mulChecked(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi != 0
}

func pow10(n uint) uint64 {
	result := uint64(1)
	for range n {
		result *= 10
	}
	return result
}
