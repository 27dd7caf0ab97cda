// Package metrics holds the OpenTelemetry instruments of the compute service
// and the viewer's remote delegation. Binaries build them from a Provider.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Field-Sense/internal/metrics"

// Instrument names.
const (
	MetricRequests = "fieldsense.compute.requests"
	MetricFailures = "fieldsense.compute.failures"
	MetricStale    = "fieldsense.compute.stale"
	MetricDuration = "fieldsense.compute.duration"
)

// Recorder counts compute requests and times them.
type Recorder struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	stale    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewWithMeter creates the instruments on m.
func NewWithMeter(m metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error

	r.requests, err = m.Int64Counter(
		MetricRequests,
		metric.WithDescription("Compute requests handled, by operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	r.failures, err = m.Int64Counter(
		MetricFailures,
		metric.WithDescription("Compute requests that failed, by operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	r.stale, err = m.Int64Counter(
		MetricStale,
		metric.WithDescription("Results dropped because a newer version superseded them"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stale counter: %w", err)
	}

	r.duration, err = m.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Compute latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return r, nil
}

// Observe records one finished request. A nil Recorder ignores the call.
func (r *Recorder) Observe(ctx context.Context, op string, took time.Duration, err error) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", op))
	r.requests.Add(ctx, 1, attrs)
	r.duration.Record(ctx, float64(took.Microseconds())/1000, attrs)
	if err != nil {
		r.failures.Add(ctx, 1, attrs)
	}
}

// Stale records a result discarded as out of date.
func (r *Recorder) Stale(ctx context.Context, op string) {
	if r == nil {
		return
	}
	r.stale.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
