package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultInterval is how often the periodic reader exports.
const DefaultInterval = 30 * time.Second

// ProviderConfig holds the metrics export configuration.
type ProviderConfig struct {
	Enabled     bool
	ServiceName string
	Interval    time.Duration
	// Writer receives JSON exports; required when enabled.
	Writer io.Writer
	// Reader replaces the periodic exporter, for tests.
	Reader sdkmetric.Reader
}

// Provider owns the SDK meter provider, or nothing when disabled.
type Provider struct {
	mp *sdkmetric.MeterProvider
}

// NewProvider builds a meter provider that exports to cfg.Writer on an
// interval and installs it as the global provider. Disabled config returns
// a provider whose meters are no-ops.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := cfg.Reader
	if reader == nil {
		if cfg.Writer == nil {
			return nil, fmt.Errorf("metrics enabled but no writer configured")
		}
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		reader = sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)
	return &Provider{mp: mp}, nil
}

// Meter returns the named meter, a no-op one when disabled.
func (p *Provider) Meter(name string) metric.Meter {
	if p == nil || p.mp == nil {
		return noop.Meter{}
	}
	return p.mp.Meter(name)
}

// Recorder builds the compute instruments on this provider.
func (p *Provider) Recorder() (*Recorder, error) {
	return NewWithMeter(p.Meter(instrumentationName))
}

// Enabled reports whether metrics are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.mp != nil
}

// Shutdown flushes pending exports and stops the reader.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown failed: %w", err)
	}
	return nil
}

// SetupFile exports to a JSON-lines file at path, creating its directory.
// The returned func shuts the provider down and closes the file.
func SetupFile(serviceName, path string, interval time.Duration) (*Provider, func(context.Context) error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating metrics dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening metrics file: %w", err)
	}
	p, err := NewProvider(ProviderConfig{
		Enabled:     true,
		ServiceName: serviceName,
		Interval:    interval,
		Writer:      f,
	})
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return p, func(ctx context.Context) error {
		err := p.Shutdown(ctx)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}
