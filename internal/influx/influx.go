// Package influx ships headless report runs to InfluxDB, or to a line
// protocol backup writer when no server is reachable.
package influx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// Measurement is the measurement name of every run point.
const Measurement = "headless_run"

// Options locates the server.
type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Run is one scenario run flattened for storage.
type Run struct {
	Scenario string
	Index    int
	Seed     int64
	// Fields are numeric or boolean outcomes, e.g. ticks_to_resolve.
	Fields map[string]any
}

// Sink writes runs either to a server or to a backup writer.
type Sink struct {
	client  influxdb2.Client
	writer  influxdb2_api.WriteAPIBlocking
	backup  io.Writer
	logger  zerolog.Logger
	written int
}

// Connect pings the server and prepares a blocking writer.
func Connect(ctx context.Context, opts Options, logger zerolog.Logger) (*Sink, error) {
	if opts.URL == "" {
		return nil, errors.New("influx url is empty")
	}
	if opts.Org == "" || opts.Bucket == "" {
		return nil, errors.New("influx org and bucket are required")
	}
	client := influxdb2.NewClientWithOptions(opts.URL, opts.Token,
		influxdb2.DefaultOptions().SetPrecision(time.Millisecond))

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if err == nil {
			err = errors.New("server not ready")
		}
		return nil, fmt.Errorf("influx ping %s: %w", opts.URL, err)
	}

	logger.Info().Str("url", opts.URL).Str("bucket", opts.Bucket).Msg("InfluxDB client initialized")
	return &Sink{
		client: client,
		writer: client.WriteAPIBlocking(opts.Org, opts.Bucket),
		logger: logger,
	}, nil
}

// NewBackupSink writes line protocol to w, one point per line.
func NewBackupSink(w io.Writer, logger zerolog.Logger) *Sink {
	return &Sink{backup: w, logger: logger}
}

// NewRunPoint converts a run to a point tagged by scenario, index and seed.
func NewRunPoint(r Run, ts time.Time) *influxdb2_write.Point {
	p := influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("scenario", r.Scenario).
		AddTag("run", fmt.Sprint(r.Index)).
		AddTag("seed", fmt.Sprint(r.Seed)).
		SetTime(ts)
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.AddField(k, r.Fields[k])
	}
	return p
}

// WriteRun stores one run.
func (s *Sink) WriteRun(ctx context.Context, r Run) error {
	point := NewRunPoint(r, time.Now())
	if s.writer != nil {
		if err := s.writer.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("error writing run %d to InfluxDB: %w", r.Index, err)
		}
	} else {
		if s.backup == nil {
			return errors.New("influx sink has neither a client nor a backup writer")
		}
		line := influxdb2_write.PointToLineProtocol(point, time.Millisecond)
		if _, err := io.WriteString(s.backup, line+"\n"); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup: %w", err)
		}
	}
	s.written++
	s.logger.Trace().Str("scenario", r.Scenario).Int("run", r.Index).Msg("run written")
	return nil
}

// Written is the number of runs stored so far.
func (s *Sink) Written() int { return s.written }

// Close releases the client, if any.
func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
