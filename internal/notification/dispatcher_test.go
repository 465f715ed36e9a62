package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []Message
	fail  bool
	block chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.fail {
		return errors.New("smtp relay down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{}
	reg := prometheus.NewRegistry()
	d := NewDispatcher(sender, WithLogger(quietLogger()), WithWorkers(3), WithQueueSize(50), WithRegisterer(reg))

	for range 20 {
		require.True(t, d.Enqueue(context.Background(), Message{Kind: KindReminder, To: "donor@example.org"}))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 20, sender.count())
	assert.InDelta(t, 20, testutil.ToFloat64(d.outcomes.WithLabelValues("sent")), 0)
	assert.False(t, d.Enqueue(context.Background(), Message{To: "late@example.org"}), "closed dispatcher rejects")
}

func TestDispatcherNeverBlocksWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, WithLogger(quietLogger()), WithWorkers(1), WithQueueSize(1), WithRegisterer(prometheus.NewRegistry()))

	accepted := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			if d.Enqueue(context.Background(), Message{To: "x@example.org"}) {
				accepted++
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	assert.LessOrEqual(t, accepted, 2, "one in flight plus one queued")
	assert.GreaterOrEqual(t, testutil.ToFloat64(d.outcomes.WithLabelValues("dropped")), float64(8))

	close(sender.block)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherLogsFailures(t *testing.T) {
	sender := &recordingSender{fail: true}
	d := NewDispatcher(sender, WithLogger(quietLogger()), WithRegisterer(prometheus.NewRegistry()))
	require.True(t, d.Enqueue(context.Background(), Message{To: "x@example.org"}))
	require.NoError(t, d.Close(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(d.outcomes.WithLabelValues("failed")), 0)
}

func TestEnqueueIgnoresMissingRecipient(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, WithLogger(quietLogger()))
	assert.False(t, d.Enqueue(context.Background(), Message{Kind: KindReminder}))
	require.NoError(t, d.Close(context.Background()))
}
