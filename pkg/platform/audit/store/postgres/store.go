package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"bloodlink/pkg/domain"
	audit "bloodlink/pkg/platform/audit"
	txcontext "bloodlink/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction so an audit row commits or rolls back with the change
// it describes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, actor_id, subject, action,
			from_status, to_status, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		aid := uuid.UUID(event.ActorID)
		actorID = &aid
	}

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		actorID,
		event.Subject,
		event.Action,
		event.FromStatus,
		event.ToStatus,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT category, occurred_at, actor_id, subject, action,
		   from_status, to_status, reason, request_id
	FROM audit_events
`

func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectColumns+` WHERE subject = $1 ORDER BY occurred_at ASC`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectColumns+` ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			actorID  uuid.NullUUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&actorID,
			&event.Subject,
			&event.Action,
			&event.FromStatus,
			&event.ToStatus,
			&event.Reason,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if actorID.Valid {
			event.ActorID = domain.UserID(actorID.UUID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
