package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tranchor/internal/certificate/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// PostgresStore persists certificates in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the certificates table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS certificates (
			id           BIGINT PRIMARY KEY,
			total_supply BIGINT NOT NULL CHECK (total_supply >= 0),
			metadata     TEXT   NOT NULL DEFAULT '',
			issued_at    TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure certificates schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, cert *models.Certificate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO certificates (id, total_supply, metadata, issued_at)
		VALUES ($1, $2, $3, $4)`,
		int64(cert.ID), int64(cert.TotalSupply), cert.Metadata, cert.IssuedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	cert := &models.Certificate{}
	var supply int64
	err := s.pool.QueryRow(ctx, `
		SELECT id, total_supply, metadata, issued_at
		FROM certificates WHERE id = $1`, int64(certID)).
		Scan(&cert.ID, &supply, &cert.Metadata, &cert.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query certificate: %w", err)
	}
	cert.TotalSupply = uint64(supply)
	return cert, nil
}

func (s *PostgresStore) Exists(ctx context.Context, certID id.CertificateID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificates WHERE id = $1)`, int64(certID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check certificate existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) MaxID(ctx context.Context) (id.CertificateID, error) {
	var maxID int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM certificates`).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("query max certificate id: %w", err)
	}
	return id.CertificateID(maxID), nil
}

func (s *PostgresStore) DecrementSupply(ctx context.Context, certID id.CertificateID, amount uint64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE certificates
		SET total_supply = total_supply - $2
		WHERE id = $1 AND total_supply >= $2`,
		int64(certID), int64(amount))
	if err != nil {
		return fmt.Errorf("decrement certificate supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, eerr := s.Exists(ctx, certID)
		if eerr != nil {
			return eerr
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Certificate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, total_supply, metadata, issued_at
		FROM certificates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert := &models.Certificate{}
		var supply int64
		if err := rows.Scan(&cert.ID, &supply, &cert.Metadata, &cert.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		cert.TotalSupply = uint64(supply)
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, nil
}
