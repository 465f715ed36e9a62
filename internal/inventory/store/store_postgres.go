package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"bloodlink/internal/inventory/models"
	"bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, u *models.Unit) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO blood_units (
			id, unit_code, process_id, donor_id, blood_type_id,
			volume_ml, status, collected_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(u.ID), u.UnitCode, uuid.UUID(u.ProcessID), uuid.UUID(u.DonorID), uuid.UUID(u.BloodTypeID),
		u.VolumeMl, string(u.Status), u.CollectedAt, u.ExpiresAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "blood_units_code_key", "blood_units_process_key") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert blood unit: %w", err)
	}
	return nil
}

const selectUnits = `
	SELECT id, unit_code, process_id, donor_id, blood_type_id,
		   volume_ml, status, collected_at, expires_at
	FROM blood_units
`

func (s *PostgresStore) List(ctx context.Context) ([]*models.Unit, error) {
	return s.query(ctx, selectUnits+` ORDER BY blood_type_id, collected_at DESC`)
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Unit, error) {
	return s.query(ctx, selectUnits+` ORDER BY collected_at DESC LIMIT $1`, limit)
}

func (s *PostgresStore) Totals(ctx context.Context) ([]models.TypeTotals, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT blood_type_id, COUNT(*), COALESCE(SUM(volume_ml), 0)
		FROM blood_units
		WHERE status = $1
		GROUP BY blood_type_id
	`, string(models.UnitAvailable))
	if err != nil {
		return nil, fmt.Errorf("sum blood units: %w", err)
	}
	defer rows.Close()

	var out []models.TypeTotals
	for rows.Next() {
		var (
			t  models.TypeTotals
			id uuid.UUID
		)
		if err := rows.Scan(&id, &t.Units, &t.TotalVolumeMl); err != nil {
			return nil, fmt.Errorf("scan unit totals: %w", err)
		}
		t.BloodTypeID = domain.BloodTypeID(id)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unit totals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) BloodTypeInUse(ctx context.Context, id domain.BloodTypeID) (bool, error) {
	var used bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blood_units WHERE blood_type_id = $1)`, uuid.UUID(id)).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check blood type usage: %w", err)
	}
	return used, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Unit, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blood units: %w", err)
	}
	defer rows.Close()

	var out []*models.Unit
	for rows.Next() {
		var (
			u                         models.Unit
			id, process, donor, btype uuid.UUID
			status                    string
		)
		if err := rows.Scan(&id, &u.UnitCode, &process, &donor, &btype,
			&u.VolumeMl, &status, &u.CollectedAt, &u.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan blood unit: %w", err)
		}
		u.ID = domain.UnitID(id)
		u.ProcessID = domain.ProcessID(process)
		u.DonorID = domain.UserID(donor)
		u.BloodTypeID = domain.BloodTypeID(btype)
		u.Status = models.UnitStatus(status)
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood units: %w", err)
	}
	return out, nil
}
