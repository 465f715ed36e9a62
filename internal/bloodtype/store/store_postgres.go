package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// PostgresStore persists blood types in PostgreSQL.
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

func (s *PostgresStore) Create(ctx context.Context, bt *models.BloodType) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO blood_types (id, blood_group, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(bt.ID), bt.Group, bt.Description, bt.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "blood_types_group_key") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert blood type: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, bt *models.BloodType) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE blood_types SET description = $2 WHERE id = $1
	`, uuid.UUID(bt.ID), bt.Description)
	if err != nil {
		return fmt.Errorf("update blood type: %w", err)
	}
	return requireRow(res)
}

// Delete removes the type and the rules that mention it. Run it inside a
// transaction. Rows elsewhere that still reference the type make it fail
// with sentinel.ErrConflict.
func (s *PostgresStore) Delete(ctx context.Context, id domain.BloodTypeID) error {
	ex := s.execer(ctx)
	if _, err := ex.ExecContext(ctx, `
		DELETE FROM compatibility_rules WHERE donor_type_id = $1 OR recipient_type_id = $1
	`, uuid.UUID(id)); err != nil {
		return fmt.Errorf("delete compatibility rules: %w", err)
	}
	res, err := ex.ExecContext(ctx, `DELETE FROM blood_types WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete blood type: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectTypes = `SELECT id, blood_group, description, created_at FROM blood_types`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.BloodTypeID) (*models.BloodType, error) {
	row := s.execer(ctx).QueryRowContext(ctx, selectTypes+` WHERE id = $1`, uuid.UUID(id))
	return scanType(row)
}

func (s *PostgresStore) FindByGroup(ctx context.Context, group string) (*models.BloodType, error) {
	row := s.execer(ctx).QueryRowContext(ctx, selectTypes+` WHERE blood_group = $1`, group)
	return scanType(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.BloodType, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectTypes+` ORDER BY blood_group`)
	if err != nil {
		return nil, fmt.Errorf("list blood types: %w", err)
	}
	defer rows.Close()

	var out []*models.BloodType
	for rows.Next() {
		bt, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood types: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertRule(ctx context.Context, rule *models.CompatibilityRule) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO compatibility_rules (id, donor_type_id, recipient_type_id, compatible)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT compatibility_rules_pair_key
		DO UPDATE SET compatible = EXCLUDED.compatible
	`, rule.ID, uuid.UUID(rule.DonorTypeID), uuid.UUID(rule.RecipientTypeID), rule.Compatible)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("upsert compatibility rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRulesForRecipient(ctx context.Context, recipient domain.BloodTypeID) ([]*models.CompatibilityRule, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, donor_type_id, recipient_type_id, compatible
		FROM compatibility_rules
		WHERE recipient_type_id = $1
	`, uuid.UUID(recipient))
	if err != nil {
		return nil, fmt.Errorf("list compatibility rules: %w", err)
	}
	defer rows.Close()

	var out []*models.CompatibilityRule
	for rows.Next() {
		var (
			r                  models.CompatibilityRule
			donor, recipientID uuid.UUID
		)
		if err := rows.Scan(&r.ID, &donor, &recipientID, &r.Compatible); err != nil {
			return nil, fmt.Errorf("scan compatibility rule: %w", err)
		}
		r.DonorTypeID = domain.BloodTypeID(donor)
		r.RecipientTypeID = domain.BloodTypeID(recipientID)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compatibility rules: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanType(row scanner) (*models.BloodType, error) {
	var (
		bt models.BloodType
		id uuid.UUID
	)
	if err := row.Scan(&id, &bt.Group, &bt.Description, &bt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan blood type: %w", err)
	}
	bt.ID = domain.BloodTypeID(id)
	return &bt, nil
}
