package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/planner-shop/internal/config"
)

func TestInitTracer(t *testing.T) {
	t.Run("Should install a propagator and no-op cleanup without a collector", func(t *testing.T) {
		cleanup, err := InitTracer(context.Background(), config.Otel{ServiceName: "planner-shop"})
		require.NoError(t, err)
		require.NoError(t, cleanup(context.Background()))

		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	})

	t.Run("Should include kubernetes attributes when set", func(t *testing.T) {
		attrs := resourceAttributes(config.Otel{ServiceName: "svc", K8sPodName: "pod-1", K8sNamespace: "shop"})
		assert.Len(t, attrs, 3)
	})
}
