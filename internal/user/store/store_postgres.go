package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bloodlink/internal/platform/postgres"
	"bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
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

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO users (
			id, email, full_name, phone, password_hash, role,
			blood_type_id, last_donation_date, ready_to_donate, created_at, updated_at,
			address, latitude, longitude, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		uuid.UUID(u.ID), u.Email, u.FullName, u.Phone, u.PasswordHash, string(u.Role),
		nullableBloodType(u.BloodTypeID), u.LastDonationDate, u.ReadyToDonate, u.CreatedAt, u.UpdatedAt,
		u.Address, latitude(u.Location), longitude(u.Location), string(statusOrActive(u.Status)),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_lower_idx") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, email, full_name, phone, password_hash, role,
		   blood_type_id, last_donation_date, ready_to_donate, created_at, updated_at,
		   address, latitude, longitude, status`

const selectUsers = `
	SELECT ` + userColumns + `
	FROM users
`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return scanUser(s.execer(ctx).QueryRowContext(ctx, selectUsers+` WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	return scanUser(s.execer(ctx).QueryRowContext(ctx, selectUsers+` WHERE LOWER(email) = LOWER($1)`, address))
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE users
		SET full_name = $2, phone = $3, role = $4, blood_type_id = $5,
			last_donation_date = $6, ready_to_donate = $7, updated_at = $8,
			address = $9, latitude = $10, longitude = $11, status = $12
		WHERE id = $1
	`,
		uuid.UUID(u.ID), u.FullName, u.Phone, string(u.Role), nullableBloodType(u.BloodTypeID),
		u.LastDonationDate, u.ReadyToDonate, u.UpdatedAt,
		u.Address, latitude(u.Location), longitude(u.Location), string(statusOrActive(u.Status)),
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListReadyDonors(ctx context.Context) ([]*models.User, error) {
	return s.list(ctx, selectUsers+`
		WHERE role = 'DONOR' AND ready_to_donate AND status = 'ACTIVE'
		ORDER BY created_at, id
	`)
}

// List pages through users oldest first. Empty role or status match all.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.User, error) {
	filter.Normalize()
	return s.list(ctx, selectUsers+`
		WHERE ($1 = '' OR role = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`, string(filter.Role), string(filter.Status), filter.Limit, filter.Offset)
}

// distanceKm is the haversine distance in kilometres between the row and
// ($1, $2), matching models.DistanceKm.
const distanceKm = `2 * 6371 * ASIN(LEAST(1, SQRT(
	POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
	COS(RADIANS($1)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - $2) / 2), 2)
)))`

// ListReadyDonorsNear returns active ready donors within the radius, nearest
// first.
func (s *PostgresStore) ListReadyDonorsNear(ctx context.Context, filter models.NearbyFilter) ([]models.NearbyDonor, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+userColumns+`, distance_km
		FROM (
			SELECT *, `+distanceKm+` AS distance_km
			FROM users
			WHERE role = 'DONOR' AND ready_to_donate AND status = 'ACTIVE'
			  AND latitude IS NOT NULL AND longitude IS NOT NULL
			  AND ($4::uuid IS NULL OR blood_type_id = $4)
		) AS candidates
		WHERE distance_km <= $3
		ORDER BY distance_km, created_at
	`, filter.Center.Latitude, filter.Center.Longitude, filter.RadiusKm, nullableBloodType(filter.BloodTypeID))
	if err != nil {
		return nil, fmt.Errorf("search nearby donors: %w", err)
	}
	defer rows.Close()

	out := []models.NearbyDonor{}
	for rows.Next() {
		var hit models.NearbyDonor
		u, err := scanUser(rows, &hit.DistanceKm)
		if err != nil {
			return nil, err
		}
		hit.User = u
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearby donors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) BloodTypeInUse(ctx context.Context, id domain.BloodTypeID) (bool, error) {
	var used bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE blood_type_id = $1)`, uuid.UUID(id)).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check blood type usage: %w", err)
	}
	return used, nil
}

func (s *PostgresStore) ListDueForReadiness(ctx context.Context, cutoff time.Time) ([]*models.User, error) {
	return s.list(ctx, selectUsers+`
		WHERE role = 'DONOR' AND NOT ready_to_donate AND status = 'ACTIVE'
		  AND last_donation_date IS NOT NULL AND last_donation_date <= $1
		ORDER BY created_at, id
	`, cutoff)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads userColumns followed by any extra destinations.
func scanUser(row scanner, extra ...any) (*models.User, error) {
	var (
		u           models.User
		id          uuid.UUID
		role        string
		status      string
		bloodTypeID uuid.NullUUID
		lastDonated sql.NullTime
		lat, lon    sql.NullFloat64
	)
	dest := append([]any{&id, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &role,
		&bloodTypeID, &lastDonated, &u.ReadyToDonate, &u.CreatedAt, &u.UpdatedAt,
		&u.Address, &lat, &lon, &status}, extra...)
	err := row.Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.Role = domain.Role(role)
	u.Status = models.Status(status)
	if lat.Valid && lon.Valid {
		u.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if bloodTypeID.Valid {
		bt := domain.BloodTypeID(bloodTypeID.UUID)
		u.BloodTypeID = &bt
	}
	if lastDonated.Valid {
		d := lastDonated.Time
		u.LastDonationDate = &d
	}
	return &u, nil
}

func nullableBloodType(id *domain.BloodTypeID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}

func latitude(loc *models.Location) sql.NullFloat64 {
	if loc == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Latitude, Valid: true}
}

func longitude(loc *models.Location) sql.NullFloat64 {
	if loc == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Longitude, Valid: true}
}

func statusOrActive(st models.Status) models.Status {
	if st == "" {
		return models.StatusActive
	}
	return st
}
