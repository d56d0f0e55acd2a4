package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetupTracingSDK_installsGlobalProvider(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	tp, shutdown, err := SetupTracingSDK(context.Background(), &Config{
		ServiceName:    "stall-service",
		ServiceVersion: "test",
		Endpoint:       "localhost:4318",
		Insecure:       true,
	})
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Same(t, tp, otel.GetTracerProvider())

	require.NoError(t, shutdown(context.Background()))
}
