// Package metricstest builds Recorders backed by a manual reader so tests
// can read back what was counted.
package metricstest

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Garsondee/Field-Sense/internal/metrics"
)

// Reader collects on demand from a test meter provider.
type Reader struct {
	t      testing.TB
	reader *sdkmetric.ManualReader
}

// New returns a Recorder whose instruments report to the returned Reader.
func New(t testing.TB) (*metrics.Recorder, *Reader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	rec, err := metrics.NewWithMeter(mp.Meter("metricstest"))
	if err != nil {
		t.Fatalf("creating recorder: %v", err)
	}
	return rec, &Reader{t: t, reader: reader}
}

func (r *Reader) collect() metricdata.ResourceMetrics {
	r.t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(context.Background(), &rm); err != nil {
		r.t.Fatalf("collecting metrics: %v", err)
	}
	return rm
}

// Count sums an int64 counter over data points whose op attribute matches;
// an empty op matches every point.
func (r *Reader) Count(name, op string) int64 {
	r.t.Helper()
	var total int64
	for _, sm := range r.collect().ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				r.t.Fatalf("%s is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if matchOp(dp.Attributes, op) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// Samples counts histogram observations for op.
func (r *Reader) Samples(name, op string) uint64 {
	r.t.Helper()
	var total uint64
	for _, sm := range r.collect().ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			h, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				r.t.Fatalf("%s is %T, not a float64 histogram", name, m.Data)
			}
			for _, dp := range h.DataPoints {
				if matchOp(dp.Attributes, op) {
					total += dp.Count
				}
			}
		}
	}
	return total
}

func matchOp(set attribute.Set, op string) bool {
	if op == "" {
		return true
	}
	v, ok := set.Value("op")
	return ok && v.AsString() == op
}
