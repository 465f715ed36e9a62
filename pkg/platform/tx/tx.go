// Package tx carries a unit of work through context so stores from different
// modules can take part in the same transaction without knowing about each
// other.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "bloodlink/pkg/domain-errors"
)

type ctxKey struct{}
type lockKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes fn as one unit of work. Calls nested inside fn's context
// join the outer unit instead of starting a new one.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// SQLRunner runs units of work as database/sql transactions.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db, timeout: defaultTxTimeout}
}

// WithTimeout overrides the default deadline applied when ctx has none.
func (r *SQLRunner) WithTimeout(d time.Duration) *SQLRunner {
	r.timeout = d
	return r
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

// LockRunner serializes units of work behind one mutex. It backs the
// in-memory stores, which journal an undo step for every write through
// OnRollback; a unit of work that fails or panics replays the journal in
// reverse before the lock is released.
type LockRunner struct {
	mu sync.Mutex
}

func NewLockRunner() *LockRunner {
	return &LockRunner{}
}

type lockUnit struct {
	runner *LockRunner
	undo   []func()
}

func (r *LockRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(lockKey{}).(*lockUnit); held != nil && held.runner == r {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	unit := &lockUnit{runner: r}
	committed := false
	defer func() {
		if !committed {
			for i := len(unit.undo) - 1; i >= 0; i-- {
				unit.undo[i]()
			}
		}
	}()
	if err := fn(context.WithValue(ctx, lockKey{}, unit)); err != nil {
		return err
	}
	committed = true
	return nil
}

// OnRollback records how to undo a write made under a LockRunner. Outside a
// LockRunner unit of work it does nothing.
func OnRollback(ctx context.Context, undo func()) {
	if unit, _ := ctx.Value(lockKey{}).(*lockUnit); unit != nil {
		unit.undo = append(unit.undo, undo)
	}
}
