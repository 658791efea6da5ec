package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// PostgresStore is a HoldingsStore backed by a holdings table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const createHoldingsTable = `
CREATE TABLE IF NOT EXISTS holdings (
	participant    TEXT   NOT NULL,
	certificate_id BIGINT NOT NULL,
	balance        BIGINT NOT NULL CHECK (balance >= 0),
	PRIMARY KEY (participant, certificate_id)
)`

// EnsureSchema creates the holdings table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createHoldingsTable); err != nil {
		return fmt.Errorf("ensure holdings schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Holding(ctx context.Context, participant id.ParticipantID, certID id.CertificateID) (uint64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`SELECT balance FROM holdings WHERE participant = $1 AND certificate_id = $2`,
		string(participant), int64(certID),
	).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query holding: %w", err)
	}
	return uint64(balance), nil
}

func (s *PostgresStore) HoldingsOf(ctx context.Context, participant id.ParticipantID) (map[id.CertificateID]uint64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT certificate_id, balance FROM holdings WHERE participant = $1 AND balance > 0`,
		string(participant),
	)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	out := make(map[id.CertificateID]uint64)
	for rows.Next() {
		var certID, balance int64
		if err := rows.Scan(&certID, &balance); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out[id.CertificateID(certID)] = uint64(balance)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Credit(ctx context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	return credit(ctx, s.pool, participant, certID, amount)
}

func (s *PostgresStore) Debit(ctx context.Context, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	return debit(ctx, s.pool, participant, certID, amount)
}

func (s *PostgresStore) ApplyBatch(ctx context.Context, from, to id.ParticipantID, pairs []Pair) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range pairs {
		if err := debit(ctx, tx, from, p.CertificateID, p.Amount); err != nil {
			return err
		}
		if err := credit(ctx, tx, to, p.CertificateID, p.Amount); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// execer covers both the pool and an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func credit(ctx context.Context, q execer, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO holdings (participant, certificate_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant, certificate_id)
		DO UPDATE SET balance = holdings.balance + EXCLUDED.balance`,
		string(participant), int64(certID), int64(amount),
	)
	if err != nil {
		return fmt.Errorf("credit holding: %w", err)
	}
	return nil
}

func debit(ctx context.Context, q execer, participant id.ParticipantID, certID id.CertificateID, amount uint64) error {
	tag, err := q.Exec(ctx, `
		UPDATE holdings SET balance = balance - $3
		WHERE participant = $1 AND certificate_id = $2 AND balance >= $3`,
		string(participant), int64(certID), int64(amount),
	)
	if err != nil {
		return fmt.Errorf("debit holding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("holding of %s for certificate %s: %w", participant, certID, sentinel.ErrInvalidState)
	}
	return nil
}
