package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bloodlink/pkg/requestcontext"
)

// Publisher writes audit events synchronously. A failed write is returned to
// the caller, whose unit of work must then fail: workflow transitions never
// commit without their audit record.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	emitted *prometheus.CounterVec
	failed  prometheus.Counter
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithRegisterer registers publisher metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Publisher) {
		f := promauto.With(reg)
		p.emitted = f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_audit_events_total",
			Help: "Audit events persisted, by category",
		}, []string{"category"})
		p.failed = f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_audit_persist_failures_total",
			Help: "Audit events that failed to persist",
		})
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in category, timestamp and request ID from ctx and appends the
// event to the store.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	event.Category = AuditEvent(event.Action).Category()
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.failed != nil {
			p.failed.Inc()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	if p.emitted != nil {
		p.emitted.WithLabelValues(string(event.Category)).Inc()
	}
	return nil
}
