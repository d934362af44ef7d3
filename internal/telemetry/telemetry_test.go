package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()

	_, span := Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitWithEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{
		Endpoint:    "127.0.0.1:4318",
		ServiceName: "chainsim-test",
		Insecure:    true,
	})
	require.NoError(t, err)
	defer shutdown()

	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
}
