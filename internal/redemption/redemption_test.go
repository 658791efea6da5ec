package redemption

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tranchor/internal/entitlement"
	"tranchor/internal/entitlement/adapters/staticpool"
	"tranchor/internal/guard"
	"tranchor/internal/ledger"
	trancheservice "tranchor/internal/tranche/service"
	tranchestore "tranchor/internal/tranche/store"
	id "tranchor/pkg/domain"
	domainerrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
	auditmemory "tranchor/pkg/platform/audit/store/memory"
	"tranchor/pkg/platform/audit/publisher"
)

const custodian = id.ParticipantID("custodian")

type redemptionFixture struct {
	adapter  *staticpool.Adapter
	registry *trancheservice.Registry
	ledger   *ledger.Service
	store    *ledger.MemoryStore
	audit    *auditmemory.InMemoryStore
	pauser   *stubPauser
	svc      *Service
}

type stubPauser struct {
	paused bool
	reason string
}

func (p *stubPauser) IsPaused(context.Context) (bool, string) { return p.paused, p.reason }

type nopSupply struct{}

func (nopSupply) DecrementSupply(context.Context, id.CertificateID, uint64) error { return nil }

// newRedemptionFixture wires the real registry, calculator, guard and
// ledger over a static pool adapter.
func newRedemptionFixture(t *testing.T) *redemptionFixture {
	t.Helper()

	f := &redemptionFixture{
		adapter: staticpool.New("pool"),
		store:   ledger.NewMemoryStore(),
		audit:   auditmemory.NewInMemoryStore(),
		pauser:  &stubPauser{},
	}

	registry, err := trancheservice.New(tranchestore.NewInMemoryStore())
	require.NoError(t, err)
	f.registry = registry

	calc, err := entitlement.NewCalculator(f.adapter, 3, 2)
	require.NoError(t, err)
	g := guard.New(registry, calc)

	f.ledger = ledger.New(f.store, g, nopSupply{})
	f.svc = New(registry, g, f.ledger, custodian,
		WithPauser(f.pauser),
		WithAuditPublisher(publisher.NewPublisher(f.audit)),
		WithClock(func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return f
}

// fund gives the custodian enough of each certificate to settle from.
func (f *redemptionFixture) fund(t *testing.T, certIDs ...id.CertificateID) {
	t.Helper()
	for _, certID := range certIDs {
		require.NoError(t, f.ledger.Mint(context.Background(), custodian, certID, 1_000))
	}
}

// A participant holding the entire pool has a 100.0% share, so its
// entitlement for a cap of c works out to c/10 under the two-stage
// rounding scheme.
func (f *redemptionFixture) assignFullShare(t *testing.T, p id.ParticipantID, level id.TrancheLevel) {
	t.Helper()
	f.adapter.SetBalance(p, 1_000)
	f.adapter.SetTotal(1_000)
	require.NoError(t, f.registry.Assign(context.Background(), p, level))
}

func TestRedeem_IntersectsWithTranche(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1, 2},
		map[id.CertificateID]uint64{1: 50, 2: 30}))
	f.assignFullShare(t, "bob", 1)
	f.fund(t, 1, 2)

	// Certificate 3 is outside the tranche and is silently skipped.
	receipt, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{2, 3})

	require.NoError(t, err)
	require.Equal(t, []Line{{CertificateID: 2, Amount: 3}}, receipt.Lines)
	require.Equal(t, uint64(3), receipt.Total)

	held, err := f.ledger.HoldingOf(ctx, "bob", 2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), held)
}

func TestRedeem_TrancheOrderWins(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1, 2},
		map[id.CertificateID]uint64{1: 50, 2: 30}))
	f.assignFullShare(t, "bob", 1)
	f.fund(t, 1, 2)

	// Requested in reverse; the receipt follows the tranche's ordering.
	receipt, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{2, 1})

	require.NoError(t, err)
	require.Equal(t, []Line{
		{CertificateID: 1, Amount: 5},
		{CertificateID: 2, Amount: 3},
	}, receipt.Lines)
	require.Equal(t, uint64(8), receipt.Total)
}

func TestRedeem_EmptyIntersectionSucceeds(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1, 2},
		map[id.CertificateID]uint64{1: 50, 2: 30}))
	f.assignFullShare(t, "bob", 1)

	receipt, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{7, 8})

	require.NoError(t, err)
	require.True(t, receipt.Empty())
	require.Zero(t, receipt.Total)

	events, err := f.audit.ListByParticipant(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventRedemptionEmpty, events[0].Action)
}

func TestRedeem_UnassignedCallerGetsEmptyReceipt(t *testing.T) {
	f := newRedemptionFixture(t)

	receipt, err := f.svc.Redeem(context.Background(), "stranger", []id.CertificateID{1})

	require.NoError(t, err)
	require.True(t, receipt.Empty())
}

func TestRedeem_RejectsNonPositiveID(t *testing.T) {
	f := newRedemptionFixture(t)

	_, err := f.svc.Redeem(context.Background(), "bob", []id.CertificateID{1, 0})

	require.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidID))
}

func TestRedeem_PausedEngine(t *testing.T) {
	f := newRedemptionFixture(t)
	f.pauser.paused = true
	f.pauser.reason = "maintenance"

	_, err := f.svc.Redeem(context.Background(), "bob", []id.CertificateID{1})

	require.True(t, domainerrors.HasCode(err, domainerrors.CodeSuspended))
}

func TestRedeem_ZeroPoolFailsClosed(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1},
		map[id.CertificateID]uint64{1: 50}))
	require.NoError(t, f.registry.Assign(ctx, "bob", 1))
	// No balances configured: the pool total is zero.

	_, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{1})

	require.True(t, domainerrors.HasCode(err, domainerrors.CodeDivisionByZero))
}

func TestRedeem_SettlesFromCustodianAtomically(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1, 2},
		map[id.CertificateID]uint64{1: 50, 2: 30}))
	f.assignFullShare(t, "bob", 1)
	// Fund only certificate 1; settling certificate 2 must fail the batch.
	require.NoError(t, f.ledger.Mint(ctx, custodian, 1, 1_000))

	_, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{1, 2})

	require.True(t, domainerrors.HasCode(err, domainerrors.CodeInsufficientHolding))
	held, err := f.ledger.HoldingOf(ctx, "bob", 1)
	require.NoError(t, err)
	require.Zero(t, held)
}

func TestRedeem_AuditTrail(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.registry.Define(ctx, 1,
		[]id.CertificateID{1},
		map[id.CertificateID]uint64{1: 50}))
	f.assignFullShare(t, "bob", 1)
	f.fund(t, 1)

	_, err := f.svc.Redeem(ctx, "bob", []id.CertificateID{1})
	require.NoError(t, err)

	events, err := f.audit.ListByParticipant(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventRedemptionExecuted, events[0].Action)
	require.Equal(t, uint64(5), events[0].Amount)
}
