package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tranchor/internal/tranche/models"
	id "tranchor/pkg/domain"
	"tranchor/pkg/platform/sentinel"
)

// PostgresStore persists tranche definitions and assignments in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the registry tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tranche_entitlements (
			level          BIGINT NOT NULL,
			position       INT    NOT NULL,
			certificate_id BIGINT NOT NULL,
			cap_amount     BIGINT NOT NULL,
			PRIMARY KEY (level, certificate_id)
		);
		CREATE TABLE IF NOT EXISTS tranche_assignments (
			participant TEXT PRIMARY KEY,
			level       BIGINT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure tranche schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveDefinition(ctx context.Context, def *models.Definition) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save definition: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM tranche_entitlements WHERE level = $1`, int64(def.Level)); err != nil {
		return fmt.Errorf("clear tranche definition: %w", err)
	}

	for position, certID := range def.IDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tranche_entitlements (level, position, certificate_id, cap_amount)
			VALUES ($1, $2, $3, $4)`,
			int64(def.Level), position, int64(certID), int64(def.Caps[certID])); err != nil {
			return fmt.Errorf("insert tranche entitlement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save definition: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDefinition(ctx context.Context, level id.TrancheLevel) (*models.Definition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT certificate_id, cap_amount
		FROM tranche_entitlements
		WHERE level = $1
		ORDER BY position`, int64(level))
	if err != nil {
		return nil, fmt.Errorf("query tranche definition: %w", err)
	}
	defer rows.Close()

	def := &models.Definition{Level: level, Caps: make(map[id.CertificateID]uint64)}
	for rows.Next() {
		var certID, capAmount int64
		if err := rows.Scan(&certID, &capAmount); err != nil {
			return nil, fmt.Errorf("scan tranche entitlement: %w", err)
		}
		def.IDs = append(def.IDs, id.CertificateID(certID))
		def.Caps[id.CertificateID(certID)] = uint64(capAmount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tranche entitlements: %w", err)
	}
	if len(def.IDs) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return def, nil
}

func (s *PostgresStore) ListDefinitions(ctx context.Context) ([]*models.Definition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT level, certificate_id, cap_amount
		FROM tranche_entitlements
		ORDER BY level, position`)
	if err != nil {
		return nil, fmt.Errorf("query tranche definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.Definition
	var current *models.Definition
	for rows.Next() {
		var level, certID, capAmount int64
		if err := rows.Scan(&level, &certID, &capAmount); err != nil {
			return nil, fmt.Errorf("scan tranche definition: %w", err)
		}
		if current == nil || current.Level != id.TrancheLevel(level) {
			current = &models.Definition{
				Level: id.TrancheLevel(level),
				Caps:  make(map[id.CertificateID]uint64),
			}
			defs = append(defs, current)
		}
		current.IDs = append(current.IDs, id.CertificateID(certID))
		current.Caps[id.CertificateID(certID)] = uint64(capAmount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tranche definitions: %w", err)
	}
	return defs, nil
}

func (s *PostgresStore) Assign(ctx context.Context, participant id.ParticipantID, level id.TrancheLevel) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tranche_assignments (participant, level)
		VALUES ($1, $2)
		ON CONFLICT (participant) DO UPDATE SET level = EXCLUDED.level`,
		participant.String(), int64(level))
	if err != nil {
		return fmt.Errorf("assign participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) LevelOf(ctx context.Context, participant id.ParticipantID) (id.TrancheLevel, error) {
	var level int64
	err := s.pool.QueryRow(ctx,
		`SELECT level FROM tranche_assignments WHERE participant = $1`,
		participant.String()).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("query participant level: %w", err)
	}
	return id.TrancheLevel(level), nil
}
