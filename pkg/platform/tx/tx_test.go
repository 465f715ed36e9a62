package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bloodlink/pkg/domain-errors"
)

func TestSQLRunner(t *testing.T) {
	t.Run("commits on success and exposes the tx in context", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = NewSQLRunner(db).RunInTx(context.Background(), func(ctx context.Context) error {
			_, ok := From(ctx)
			assert.True(t, ok)
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = NewSQLRunner(db).RunInTx(context.Background(), func(context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		runner := NewSQLRunner(db)
		err = runner.RunInTx(context.Background(), func(ctx context.Context) error {
			outer, _ := From(ctx)
			return runner.RunInTx(ctx, func(inner context.Context) error {
				got, _ := From(inner)
				assert.Same(t, outer, got)
				return nil
			})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled context is rejected before begin", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = NewSQLRunner(db).RunInTx(ctx, func(context.Context) error { return nil })
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func TestLockRunner(t *testing.T) {
	t.Run("is reentrant for the same runner", func(t *testing.T) {
		runner := NewLockRunner()
		calls := 0
		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			return runner.RunInTx(ctx, func(context.Context) error {
				calls++
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("serializes concurrent units of work", func(t *testing.T) {
		runner := NewLockRunner()
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = runner.RunInTx(context.Background(), func(context.Context) error {
					v := counter
					counter = v + 1
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})

	t.Run("replays undo steps in reverse when the unit fails", func(t *testing.T) {
		runner := NewLockRunner()
		var undone []string
		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			OnRollback(ctx, func() { undone = append(undone, "first") })
			return runner.RunInTx(ctx, func(ctx context.Context) error {
				OnRollback(ctx, func() { undone = append(undone, "second") })
				return errors.New("boom")
			})
		})
		require.Error(t, err)
		assert.Equal(t, []string{"second", "first"}, undone)
	})

	t.Run("keeps writes when the unit commits", func(t *testing.T) {
		runner := NewLockRunner()
		undone := false
		err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
			OnRollback(ctx, func() { undone = true })
			return nil
		})
		require.NoError(t, err)
		assert.False(t, undone)
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		runner := NewLockRunner()
		undone := false
		assert.Panics(t, func() {
			_ = runner.RunInTx(context.Background(), func(ctx context.Context) error {
				OnRollback(ctx, func() { undone = true })
				panic("boom")
			})
		})
		assert.True(t, undone)
	})

	t.Run("ignores undo steps outside a unit", func(t *testing.T) {
		assert.NotPanics(t, func() { OnRollback(context.Background(), func() {}) })
	})
}
