package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// PostgresStore persists requests and pledges in PostgreSQL. Bed occupancy
// and pledge uniqueness are enforced by the schema.
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

func (s *PostgresStore) CreateIfBedAvailable(ctx context.Context, r *models.Request) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO blood_requests (
			id, patient_name, hospital, blood_type_id, quantity, urgency,
			status, room_number, bed_number, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(r.ID), r.PatientName, r.Hospital, uuid.UUID(r.BloodTypeID), r.Quantity, string(r.Urgency),
		string(r.Status), r.RoomNumber, r.BedNumber, uuid.UUID(r.CreatedBy), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "blood_requests_pending_bed_idx") {
			return sentinel.ErrAlreadyUsed
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert blood request: %w", err)
	}
	return nil
}

const selectRequests = `
	SELECT r.id, r.patient_name, r.hospital, r.blood_type_id, r.quantity, r.urgency,
		   r.status, r.room_number, r.bed_number, r.created_by, r.created_at, r.updated_at,
		   (SELECT COUNT(*) FROM donation_pledges p WHERE p.request_id = r.id)
	FROM blood_requests r
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RequestID) (*models.Request, error) {
	return scanRequest(s.execer(ctx).QueryRowContext(ctx, selectRequests+` WHERE r.id = $1`, uuid.UUID(id)))
}

// FindByIDForUpdate locks the request row until the surrounding transaction
// ends. PledgeCount is left at zero; callers recount under the lock.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id domain.RequestID) (*models.Request, error) {
	return scanRequest(s.execer(ctx).QueryRowContext(ctx, `
		SELECT r.id, r.patient_name, r.hospital, r.blood_type_id, r.quantity, r.urgency,
			   r.status, r.room_number, r.bed_number, r.created_by, r.created_at, r.updated_at, 0
		FROM blood_requests r
		WHERE r.id = $1
		FOR UPDATE
	`, uuid.UUID(id)))
}

func (s *PostgresStore) Update(ctx context.Context, r *models.Request) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE blood_requests
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, uuid.UUID(r.ID), string(r.Status), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update blood request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Request, error) {
	if len(statuses) == 0 {
		return s.list(ctx, selectRequests+` ORDER BY r.created_at DESC, r.id`)
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return s.list(ctx, selectRequests+` WHERE r.status = ANY($1) ORDER BY r.created_at DESC, r.id`, pq.Array(names))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Request, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreatePledge(ctx context.Context, p *models.Pledge) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO donation_pledges (id, donor_id, request_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(p.ID), uuid.UUID(p.DonorID), uuid.UUID(p.RequestID), p.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "donation_pledges_donor_request_key") {
			return sentinel.ErrAlreadyUsed
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert pledge: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountPledges(ctx context.Context, id domain.RequestID) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donation_pledges WHERE request_id = $1`, uuid.UUID(id)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pledges: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) BloodTypeInUse(ctx context.Context, id domain.BloodTypeID) (bool, error) {
	var used bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blood_requests WHERE blood_type_id = $1)`, uuid.UUID(id)).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check blood type usage: %w", err)
	}
	return used, nil
}

func (s *PostgresStore) ListPledges(ctx context.Context, id domain.RequestID) ([]*models.Pledge, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, donor_id, request_id, created_at
		FROM donation_pledges
		WHERE request_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list pledges: %w", err)
	}
	defer rows.Close()

	var out []*models.Pledge
	for rows.Next() {
		var (
			p                        models.Pledge
			pledgeID, donor, request uuid.UUID
		)
		if err := rows.Scan(&pledgeID, &donor, &request, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pledge: %w", err)
		}
		p.ID = domain.PledgeID(pledgeID)
		p.DonorID = domain.UserID(donor)
		p.RequestID = domain.RequestID(request)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pledges: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.Request, error) {
	var (
		r                        models.Request
		id, bloodType, createdBy uuid.UUID
		urgency, status          string
	)
	err := row.Scan(&id, &r.PatientName, &r.Hospital, &bloodType, &r.Quantity, &urgency,
		&status, &r.RoomNumber, &r.BedNumber, &createdBy, &r.CreatedAt, &r.UpdatedAt, &r.PledgeCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan blood request: %w", err)
	}
	r.ID = domain.RequestID(id)
	r.BloodTypeID = domain.BloodTypeID(bloodType)
	r.CreatedBy = domain.UserID(createdBy)
	r.Urgency = models.Urgency(urgency)
	r.Status = models.Status(status)
	return &r, nil
}
