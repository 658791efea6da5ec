package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranchor/internal/certificate/store"
	id "tranchor/pkg/domain"
	dErrors "tranchor/pkg/domain-errors"
	"tranchor/pkg/platform/audit"
)

const custodian = id.ParticipantID("custodian")

type recordingMinter struct {
	mu    sync.Mutex
	mints []mint
}

type mint struct {
	recipient id.ParticipantID
	certID    id.CertificateID
	amount    uint64
}

func (m *recordingMinter) Mint(_ context.Context, recipient id.ParticipantID, certID id.CertificateID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mints = append(m.mints, mint{recipient, certID, amount})
	return nil
}

func newIssuer(t *testing.T) (*Issuer, *recordingMinter) {
	t.Helper()
	minter := &recordingMinter{}
	issuer, err := New(store.NewInMemoryStore(), minter, custodian)
	require.NoError(t, err)
	return issuer, minter
}

func TestIssuer_SequenceInvariant(t *testing.T) {
	ctx := context.Background()

	t.Run("id zero rejected", func(t *testing.T) {
		issuer, _ := newIssuer(t)
		_, err := issuer.Issue(ctx, 0, 100, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidID))
	})

	t.Run("issuing ahead of the sequence fails", func(t *testing.T) {
		issuer, _ := newIssuer(t)
		_, err := issuer.Issue(ctx, 2, 100, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSequenceViolation),
			"id 2 before id 1 exists must fail, got %v", err)
	})

	t.Run("gap then fill then continue", func(t *testing.T) {
		issuer, _ := newIssuer(t)

		_, err := issuer.Issue(ctx, 1, 100, "genesis")
		require.NoError(t, err)

		_, err = issuer.Issue(ctx, 3, 25, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSequenceViolation),
			"id 3 directly after id 1 must fail")

		_, err = issuer.Issue(ctx, 2, 50, "")
		require.NoError(t, err)

		_, err = issuer.Issue(ctx, 3, 25, "")
		require.NoError(t, err)

		maxID, err := issuer.MaxID(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.CertificateID(3), maxID)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		issuer, _ := newIssuer(t)
		_, err := issuer.Issue(ctx, 1, 100, "")
		require.NoError(t, err)

		_, err = issuer.Issue(ctx, 1, 100, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSequenceViolation))
	})
}

func TestIssuer_MintsToCustodian(t *testing.T) {
	ctx := context.Background()
	issuer, minter := newIssuer(t)

	cert, err := issuer.Issue(ctx, 1, 100, "q1 rewards")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cert.TotalSupply)
	assert.Equal(t, "q1 rewards", cert.Metadata)

	require.Len(t, minter.mints, 1)
	assert.Equal(t, custodian, minter.mints[0].recipient)
	assert.Equal(t, id.CertificateID(1), minter.mints[0].certID)
	assert.Equal(t, uint64(100), minter.mints[0].amount)
}

func TestIssuer_SupplyAccounting(t *testing.T) {
	ctx := context.Background()
	issuer, _ := newIssuer(t)

	amounts := []uint64{100, 50, 25}
	var total uint64
	for i, amount := range amounts {
		_, err := issuer.Issue(ctx, id.CertificateID(i+1), amount, "")
		require.NoError(t, err)
		total += amount
	}

	certs, err := issuer.List(ctx)
	require.NoError(t, err)
	require.Len(t, certs, len(amounts))

	var sum uint64
	for _, cert := range certs {
		sum += cert.TotalSupply
	}
	assert.Equal(t, total, sum, "supply sum must equal sum of issued amounts")
}

func TestIssuer_ZeroAmount(t *testing.T) {
	issuer, _ := newIssuer(t)
	_, err := issuer.Issue(context.Background(), 1, 0, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestIssuer_GetMissing(t *testing.T) {
	issuer, _ := newIssuer(t)
	_, err := issuer.Get(context.Background(), 42)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestIssuer_IssuanceIsLogged(t *testing.T) {
	var buf bytes.Buffer
	minter := &recordingMinter{}
	issuer, err := New(store.NewInMemoryStore(), minter, custodian,
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), 1, 100, "")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), string(audit.EventCertificateIssued))
	assert.Contains(t, buf.String(), "log_type=audit")
}
