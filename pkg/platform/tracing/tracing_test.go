package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestStartWithGlobalNoopProvider(t *testing.T) {
	ctx, finish := Start(context.Background(), "donation.collect", String("process_id", "p-1"))
	span := trace.SpanFromContext(ctx)
	assert.NotNil(t, span)

	assert.NotPanics(t, func() { finish(errors.New("boom")) })
}
