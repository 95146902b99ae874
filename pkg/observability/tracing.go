package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"
)

// Tracer wraps X-Ray subsegment capture behind an on/off switch so local
// runs and tests do not need a running daemon. A nil Tracer traces nothing.
type Tracer struct {
	enabled bool
	logger  *zap.Logger
}

// NewTracer creates a tracer
func NewTracer(enabled bool, logger *zap.Logger) *Tracer {
	return &Tracer{enabled: enabled, logger: logger}
}

// Capture runs fn inside a named subsegment when tracing is enabled,
// otherwise it just runs fn.
func (t *Tracer) Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if t == nil || !t.enabled {
		return fn(ctx)
	}
	return xray.Capture(ctx, name, fn)
}

// Annotate attaches a searchable annotation to the current subsegment
func (t *Tracer) Annotate(ctx context.Context, key, value string) {
	if t == nil || !t.enabled {
		return
	}
	if err := xray.AddAnnotation(ctx, key, value); err != nil {
		t.logger.Debug("Failed to add trace annotation", zap.Error(err))
	}
}
