package remote

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/metrics"
)

// DefaultDebounce coalesces bursts of state changes into one request.
const DefaultDebounce = 50 * time.Millisecond

// Options configures a Delegator.
type Options struct {
	Debounce time.Duration
	Timeout  time.Duration
	Logger   zerolog.Logger
	Metrics  *metrics.Recorder
	// OnResult runs on the computing goroutine for every accepted result.
	OnResult func(version uint64, data *game.HeatMapData)
}

// Delegator is the viewer's side of remote computation. Submit never blocks;
// results arrive later through Latest or OnResult. Failures keep the cached
// result and clear Available; there are no retries, the next Submit is the
// retry.
type Delegator struct {
	computer Computer
	opts     Options

	mu        sync.Mutex
	timer     *time.Timer
	latest    uint64
	pending   *api.HeatMapRequest
	pendingV  uint64
	inflight  bool
	closed    bool
	cached    *game.HeatMapData
	cachedV   uint64
	available bool
	discarded int
}

// NewDelegator wraps a computer.
func NewDelegator(c Computer, opts Options) *Delegator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Delegator{computer: c, opts: opts, available: true}
}

// Submit records a request for the given state version and restarts the
// debounce timer. The snapshot is cloned, so the caller may keep mutating it.
func (d *Delegator) Submit(version uint64, req api.HeatMapRequest) {
	if req.GameState != nil {
		req.GameState = req.GameState.Clone()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if version > d.latest {
		d.latest = version
	}
	d.pending = &req
	d.pendingV = version
	if d.timer == nil {
		d.timer = time.AfterFunc(d.opts.Debounce, d.fire)
		return
	}
	d.timer.Stop()
	d.timer.Reset(d.opts.Debounce)
}

// fire dispatches the pending request unless one is already in flight; the
// in-flight call picks the pending one up when it finishes.
func (d *Delegator) fire() {
	d.mu.Lock()
	if d.closed || d.inflight || d.pending == nil {
		d.mu.Unlock()
		return
	}
	req, version := *d.pending, d.pendingV
	d.pending = nil
	d.inflight = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	start := time.Now()
	data, err := d.computer.HeatMap(ctx, req)
	cancel()
	d.opts.Metrics.Observe(context.Background(), "delegate", time.Since(start), err)

	d.mu.Lock()
	d.inflight = false
	again := d.pending != nil && !d.closed
	var accepted bool
	switch {
	case err != nil:
		if d.available {
			d.opts.Logger.Warn().Err(err).Uint64("version", version).Msg("remote heat map unavailable")
		}
		d.available = false
	case version != d.latest || d.closed:
		d.available = true
		d.discarded++
		d.opts.Metrics.Stale(context.Background(), "delegate")
		d.opts.Logger.Trace().Uint64("version", version).Uint64("latest", d.latest).Msg("stale heat map dropped")
	default:
		if !d.available {
			d.opts.Logger.Info().Msg("remote heat map available again")
		}
		d.available = true
		d.cached, d.cachedV = data, version
		accepted = true
	}
	onResult := d.opts.OnResult
	d.mu.Unlock()

	if accepted && onResult != nil {
		onResult(version, data)
	}
	if again {
		d.fire()
	}
}

// Latest returns the newest accepted result and its version. data is nil
// both before the first result and when the result was "no overlay".
func (d *Delegator) Latest() (data *game.HeatMapData, version uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cached, d.cachedV
}

// Available is false after a failed computation until one succeeds.
func (d *Delegator) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.available
}

// Discarded counts results dropped as stale.
func (d *Delegator) Discarded() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.discarded
}

// Probe runs the computer's healthcheck, when it has one, and updates
// Available.
func (d *Delegator) Probe(ctx context.Context) error {
	hc, ok := d.computer.(interface {
		Healthcheck(context.Context) error
	})
	if !ok {
		return nil
	}
	err := hc.Healthcheck(ctx)
	d.mu.Lock()
	d.available = err == nil
	d.mu.Unlock()
	return err
}

// Close stops the timer; later results are dropped.
func (d *Delegator) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
