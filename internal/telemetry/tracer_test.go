package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
)

func TestInitTracer_Disabled(t *testing.T) {
	ctx := context.Background()

	cleanup, err := InitTracer(ctx, config.Otel{ServiceName: "product-catalog"})
	require.NoError(t, err)
	assert.NoError(t, cleanup(ctx))

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions(config.Otel{CollectorURL: "otel:4317", Insecure: true}), 2)
	assert.Len(t, exporterOptions(config.Otel{CollectorURL: "https://otel:4317", CollectorAuth: "Bearer x"}), 3)
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), config.Otel{
		ServiceName:  "product-catalog",
		K8sPodName:   "pc-0",
		K8sNamespace: "shop",
	})
	require.NoError(t, err)

	set := res.Set()
	name, ok := set.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "product-catalog", name.AsString())

	pod, ok := set.Value(semconv.K8SPodNameKey)
	require.True(t, ok)
	assert.Equal(t, "pc-0", pod.AsString())
}
