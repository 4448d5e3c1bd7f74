package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_RequiresServiceName(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}

func TestNewTracerProvider_EmitsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()

	tp, shutdown, err := NewTracerProvider(exp, Config{ServiceName: "testsvc", ServiceVersion: "v0"})
	require.NoError(t, err)

	_, sp := tp.Tracer("test").Start(context.Background(), "root.span")
	sp.End()

	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	require.NoError(t, shutdown(context.Background()))

	assert.Equal(t, "root.span", spans[0].Name)
	require.NotNil(t, spans[0].Resource)

	foundName := false
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == attribute.Key("service.name") {
			foundName = kv.Value.AsString() == "testsvc"
		}
	}
	assert.True(t, foundName, "expected resource to include service.name=testsvc")
}
