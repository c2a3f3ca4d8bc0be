package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

const instrumentationName = "github.com/tuanvumaihuynh/planner-shop/internal/storage/mq"

var (
	tracer = otel.Tracer(instrumentationName)

	// kTracer propagates trace context through record headers.
	// The global provider delegates to whatever InitTracer installs later.
	kTracer = kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
)
