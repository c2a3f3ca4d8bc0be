// Package outbox carries request context across the outbox table and the broker.
package outbox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/planner-shop/pkg/correlationid"
)

const (
	ContentTypeHeader = "content-type"
	ContentTypeJSON   = "application/json"
)

// BuildHeaders returns the headers stored with an outbox message: the trace
// context, the correlation id when present and the payload content type.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{
		ContentTypeHeader: ContentTypeJSON,
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	if id, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = id
	}

	return headers
}

// ContextFromHeaders restores the trace context and correlation id saved by BuildHeaders.
func ContextFromHeaders(ctx context.Context, headers map[string]string) context.Context {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))

	if id, ok := headers[correlationid.Header]; ok && id != "" {
		ctx = correlationid.NewContext(ctx, id)
	}

	return ctx
}

// ContextFromRecord adds the correlation id of a consumed record to ctx.
// Trace context is restored by the kotel hooks.
func ContextFromRecord(ctx context.Context, rec *kgo.Record) context.Context {
	for _, header := range rec.Headers {
		if header.Key == correlationid.Header && len(header.Value) > 0 {
			return correlationid.NewContext(ctx, string(header.Value))
		}
	}
	return ctx
}
