package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bloodlink/internal/donation/models"
	"bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// PostgresStore persists processes, appointments and health checks. The
// one-active-process rule and the 1:1 child rows are enforced by the schema.
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

func (s *PostgresStore) CreateProcess(ctx context.Context, p *models.Process) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO donation_processes (
			id, donor_id, status, donation_type, collected_volume_ml, note,
			certificate_url, source_request_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, processArgs(p)...)
	if err != nil {
		if postgres.IsUniqueViolation(err, "donation_processes_one_active_idx") {
			return sentinel.ErrAlreadyUsed
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert donation process: %w", err)
	}
	return nil
}

func processArgs(p *models.Process) []any {
	var source uuid.NullUUID
	if p.SourceRequestID != nil {
		source = uuid.NullUUID{UUID: uuid.UUID(*p.SourceRequestID), Valid: true}
	}
	return []any{
		uuid.UUID(p.ID), uuid.UUID(p.DonorID), string(p.Status), string(p.Type), nullVolume(p.CollectedVolumeMl), p.Note,
		p.CertificateURL, source, p.CreatedAt, p.UpdatedAt,
	}
}

func nullVolume(ml *int) sql.NullInt64 {
	if ml == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*ml), Valid: true}
}

const selectProcesses = `
	SELECT id, donor_id, status, donation_type, collected_volume_ml, note,
		   certificate_url, source_request_id, created_at, updated_at
	FROM donation_processes
`

func (s *PostgresStore) FindProcess(ctx context.Context, id domain.ProcessID) (*models.Process, error) {
	return scanProcess(s.execer(ctx).QueryRowContext(ctx, selectProcesses+` WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) FindActiveByDonor(ctx context.Context, donorID domain.UserID) (*models.Process, error) {
	return scanProcess(s.execer(ctx).QueryRowContext(ctx,
		selectProcesses+` WHERE donor_id = $1 AND status = ANY($2) ORDER BY created_at DESC LIMIT 1`,
		uuid.UUID(donorID), pq.Array(statusNames(models.ActiveStatuses())),
	))
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID domain.UserID) ([]*models.Process, error) {
	return s.list(ctx, selectProcesses+` WHERE donor_id = $1 ORDER BY created_at DESC, id`, uuid.UUID(donorID))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Process, error) {
	if len(statuses) == 0 {
		return s.list(ctx, selectProcesses+` ORDER BY created_at DESC, id`)
	}
	return s.list(ctx, selectProcesses+` WHERE status = ANY($1) ORDER BY created_at DESC, id`, pq.Array(statusNames(statuses)))
}

func statusNames(statuses []models.Status) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Process, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donation processes: %w", err)
	}
	defer rows.Close()

	var out []*models.Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donation processes: %w", err)
	}
	return out, nil
}

// Execute locks the process row with FOR UPDATE, hands a copy to fn and
// writes back what fn returns. Without a transaction in ctx it opens one.
func (s *PostgresStore) Execute(ctx context.Context, id domain.ProcessID, fn func(models.Process) (models.Process, error)) (*models.Process, error) {
	if _, ok := txcontext.From(ctx); !ok {
		var out *models.Process
		err := txcontext.NewSQLRunner(s.db).RunInTx(ctx, func(ctx context.Context) error {
			var err error
			out, err = s.Execute(ctx, id, fn)
			return err
		})
		return out, err
	}

	current, err := scanProcess(s.execer(ctx).QueryRowContext(ctx, selectProcesses+` WHERE id = $1 FOR UPDATE`, uuid.UUID(id)))
	if err != nil {
		return nil, err
	}
	next, err := fn(*current)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE donation_processes
		SET status = $2, collected_volume_ml = $3, note = $4, certificate_url = $5, updated_at = $6
		WHERE id = $1
	`, uuid.UUID(next.ID), string(next.Status), nullVolume(next.CollectedVolumeMl), next.Note, next.CertificateURL, next.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update donation process: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &next, nil
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	var staff uuid.NullUUID
	if a.StaffID != nil {
		staff = uuid.NullUUID{UUID: uuid.UUID(*a.StaffID), Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO donation_appointments (id, process_id, scheduled_date, location, staff_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(a.ID), uuid.UUID(a.ProcessID), a.ScheduledDate, a.Location, staff, a.Notes, a.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "donation_appointments_process_key") {
			return sentinel.ErrAlreadyUsed
		}
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

const selectAppointments = `
	SELECT id, process_id, scheduled_date, location, staff_id, notes, created_at
	FROM donation_appointments
`

func (s *PostgresStore) FindAppointment(ctx context.Context, id domain.AppointmentID) (*models.Appointment, error) {
	return scanAppointment(s.execer(ctx).QueryRowContext(ctx, selectAppointments+` WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) FindAppointmentByProcess(ctx context.Context, processID domain.ProcessID) (*models.Appointment, error) {
	return scanAppointment(s.execer(ctx).QueryRowContext(ctx, selectAppointments+` WHERE process_id = $1`, uuid.UUID(processID)))
}

func (s *PostgresStore) DeleteAppointment(ctx context.Context, id domain.AppointmentID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM donation_appointments WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpsertHealthCheck(ctx context.Context, h *models.HealthCheck) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO health_checks (
			id, process_id, systolic, diastolic, hemoglobin, weight_kg,
			heart_rate, temperature_c, eligible, notes, checked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (process_id) DO UPDATE SET
			systolic = EXCLUDED.systolic,
			diastolic = EXCLUDED.diastolic,
			hemoglobin = EXCLUDED.hemoglobin,
			weight_kg = EXCLUDED.weight_kg,
			heart_rate = EXCLUDED.heart_rate,
			temperature_c = EXCLUDED.temperature_c,
			eligible = EXCLUDED.eligible,
			notes = EXCLUDED.notes,
			checked_at = EXCLUDED.checked_at
	`, uuid.UUID(h.ID), uuid.UUID(h.ProcessID), h.Systolic, h.Diastolic, h.Hemoglobin, h.WeightKg,
		h.HeartRate, h.TemperatureC, h.Eligible, h.Notes, h.CheckedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("upsert health check: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindHealthCheck(ctx context.Context, processID domain.ProcessID) (*models.HealthCheck, error) {
	var (
		h          models.HealthCheck
		id, procID uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, process_id, systolic, diastolic, hemoglobin, weight_kg,
			   heart_rate, temperature_c, eligible, notes, checked_at
		FROM health_checks
		WHERE process_id = $1
	`, uuid.UUID(processID)).Scan(&id, &procID, &h.Systolic, &h.Diastolic, &h.Hemoglobin, &h.WeightKg,
		&h.HeartRate, &h.TemperatureC, &h.Eligible, &h.Notes, &h.CheckedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan health check: %w", err)
	}
	h.ID = domain.HealthCheckID(id)
	h.ProcessID = domain.ProcessID(procID)
	return &h, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProcess(row scanner) (*models.Process, error) {
	var (
		p             models.Process
		id, donor     uuid.UUID
		status, dtype string
		volume        sql.NullInt64
		source        uuid.NullUUID
	)
	err := row.Scan(&id, &donor, &status, &dtype, &volume, &p.Note,
		&p.CertificateURL, &source, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan donation process: %w", err)
	}
	p.ID = domain.ProcessID(id)
	p.DonorID = domain.UserID(donor)
	p.Status = models.Status(status)
	p.Type = models.DonationType(dtype)
	if volume.Valid {
		v := int(volume.Int64)
		p.CollectedVolumeMl = &v
	}
	if source.Valid {
		rid := domain.RequestID(source.UUID)
		p.SourceRequestID = &rid
	}
	return &p, nil
}

func scanAppointment(row scanner) (*models.Appointment, error) {
	var (
		a          models.Appointment
		id, procID uuid.UUID
		staff      uuid.NullUUID
	)
	err := row.Scan(&id, &procID, &a.ScheduledDate, &a.Location, &staff, &a.Notes, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	a.ID = domain.AppointmentID(id)
	a.ProcessID = domain.ProcessID(procID)
	if staff.Valid {
		sid := domain.UserID(staff.UUID)
		a.StaffID = &sid
	}
	return &a, nil
}
