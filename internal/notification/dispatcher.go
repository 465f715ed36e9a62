package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// Dispatcher delivers messages on a fixed pool of workers behind a bounded
// queue. Enqueue never blocks: when the queue is full the message is dropped.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	queue       chan Message
	workers     int
	sendTimeout time.Duration
	group       errgroup.Group

	mu     sync.RWMutex
	closed bool

	outcomes *prometheus.CounterVec
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Message, n)
		}
	}
}

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.sendTimeout = timeout
	}
}

func WithRegisterer(reg prometheus.Registerer) DispatcherOption {
	return func(d *Dispatcher) {
		d.outcomes = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_notifications_total",
			Help: "Notifications by outcome: sent, failed or dropped",
		}, []string{"outcome"})
	}
}

// NewDispatcher starts the workers immediately. Call Close to drain them.
func NewDispatcher(sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		logger:      slog.Default(),
		queue:       make(chan Message, 256),
		workers:     4,
		sendTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	for range d.workers {
		d.group.Go(d.work)
	}
	return d
}

// Enqueue reports whether msg was accepted. Messages without a recipient
// are ignored.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) bool {
	if msg.To == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.record("dropped")
		d.logger.WarnContext(ctx, "notification dropped: dispatcher closed", "kind", string(msg.Kind))
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.record("dropped")
		d.logger.WarnContext(ctx, "notification dropped: queue full",
			"kind", string(msg.Kind),
			"queue_capacity", cap(d.queue),
		)
		return false
	}
}

func (d *Dispatcher) work() error {
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.sender.Send(ctx, msg)
		cancel()
		if err != nil {
			d.record("failed")
			d.logger.Error("notification delivery failed",
				"kind", string(msg.Kind),
				"to", msg.To,
				"error", err,
			)
			continue
		}
		d.record("sent")
	}
	return nil
}

// Close stops accepting messages and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) record(outcome string) {
	if d.outcomes != nil {
		d.outcomes.WithLabelValues(outcome).Inc()
	}
}
