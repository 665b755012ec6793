package tracer

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	tp := InitTracer(context.Background(), "marketplace-client", "", logger.NewNop())
	require.NotNil(t, tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestInitTracer_WithEndpoint(t *testing.T) {
	// The exporter connects lazily, so an unreachable collector does not fail setup.
	tp := InitTracer(context.Background(), "marketplace-client", "127.0.0.1:4317", logger.NewNop())
	require.NotNil(t, tp)
	assert.Equal(t, tp, otel.GetTracerProvider())
	_ = tp.Shutdown(context.Background())
}
