package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/pkg/config"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{}, "test", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitWithoutEndpointBuildsProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: true, SampleRatio: 1}, "test", nil)
	require.NoError(t, err)

	_, span := Tracer("tracing-test").Start(context.Background(), "noop")
	require.True(t, span.SpanContext().HasTraceID())
	span.End()
	require.NoError(t, shutdown(context.Background()))
}
