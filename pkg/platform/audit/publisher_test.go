package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/audit/store/memory"
	"bloodlink/pkg/requestcontext"
)

type failingStore struct{ memory.InMemoryStore }

func (f *failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestPublisherEmit(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-7")

	t.Run("enriches and persists", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		reg := prometheus.NewRegistry()
		p := audit.NewPublisher(store, audit.WithRegisterer(reg))

		processID := domain.ProcessID(uuid.New())
		err := p.Emit(ctx, audit.Event{
			ActorID:    domain.UserID(uuid.New()),
			Subject:    audit.Subject("donation", processID),
			Action:     string(audit.EventLabResultRecorded),
			FromStatus: "BLOOD_COLLECTED",
			ToStatus:   "COMPLETED",
		})
		require.NoError(t, err)

		events, err := store.ListBySubject(ctx, "donation:"+processID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.Equal(t, now, events[0].Timestamp)
		assert.Equal(t, "req-7", events[0].RequestID)
		count, err := testutil.GatherAndCount(reg, "bloodlink_audit_events_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects events without action", func(t *testing.T) {
		p := audit.NewPublisher(memory.NewInMemoryStore())
		require.Error(t, p.Emit(ctx, audit.Event{Subject: "x"}))
	})

	t.Run("returns store failures to the caller", func(t *testing.T) {
		p := audit.NewPublisher(&failingStore{})
		err := p.Emit(ctx, audit.Event{Action: string(audit.EventPledgeRecorded)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestUnknownEventsAreOperations(t *testing.T) {
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("something_new").Category())
	assert.Equal(t, audit.CategorySecurity, audit.EventRoleChanged.Category())
}
