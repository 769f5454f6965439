package aidetect

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("docaudit/aidetect")

// degradation wraps a stage error the stage already recorded on the report.
// The span still fails but no second ErrorEntry is added.
type degradation struct{ err error }

func (d *degradation) Error() string { return d.err.Error() }
func (d *degradation) Unwrap() error { return d.err }

// withSpan times one analysis stage, both on the report and as an
// OpenTelemetry span. A stage error is recorded, never returned.
func (e *Engine) withSpan(ctx context.Context, report *Report, name string, fn func(context.Context) error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	span.SetAttributes(attribute.String("document.id", report.DocumentID))

	status := "ok"
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var d *degradation
		if errors.As(err, &d) {
			status = "degraded"
		} else {
			status = "error"
			report.Errors = append(report.Errors, ErrorEntry{
				Stage:     name,
				Message:   err.Error(),
				Type:      "exception",
				Retryable: false,
			})
		}
	}
	report.Traces = append(report.Traces, SpanTrace{
		Name:       name,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
	})
}
