package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/config"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/logging"
	"github.com/Garsondee/Field-Sense/internal/metrics"
	"github.com/Garsondee/Field-Sense/internal/remote"
	"github.com/Garsondee/Field-Sense/internal/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var configDir string
	var perSide int
	var seed int64
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.IntVar(&perSide, "players", 7, "players per side in the starting lineup")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "RNG seed for offender sampling")
	flag.Parse()

	if err := config.Load(configDir); err != nil {
		return err
	}
	logger, closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	hm, err := config.HeatMapConfig()
	if err != nil {
		return err
	}
	opt := config.OptimizerParams()
	sim := game.NewSimulation(game.VerticalStack(config.Field(), perSide, opt.StackOffset))
	sim.HeatMap = hm
	sim.Optimizer = opt

	var delegator *remote.Delegator
	if config.GetBool("remote.enabled") {
		var closeRemote func()
		delegator, closeRemote, err = newDelegator(logger)
		if err != nil {
			return err
		}
		defer closeRemote()
	}

	g := render.New(sim, render.Options{Logger: logger, Delegator: delegator, Seed: seed})
	w, h := g.Size()
	ebiten.SetWindowTitle("Field Sense")
	ebiten.SetWindowSize(w, h)
	logger.Info().Int("players", len(sim.State.Players)).Bool("remote", delegator != nil).Msg("viewer starting")
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

func setupLogging() (zerolog.Logger, func() error, error) {
	opts := logging.Options{
		Name:    "game",
		Level:   config.GetString("logLevel"),
		LogsDir: config.GetString("logsDir"),
	}
	if config.GetBool("graylog.enabled") {
		opts.GraylogAddress = config.GetString("graylog.address")
	}
	return logging.Setup(opts)
}

// newDelegator connects to the compute service over the configured transport.
// An unreachable service is logged, not fatal; the HUD shows it.
func newDelegator(logger zerolog.Logger) (*remote.Delegator, func(), error) {
	url := config.GetString("remote.url")
	timeout := config.Duration("remote.timeout", 5*time.Second)
	provider := &metrics.Provider{}
	shutdown := func(context.Context) error { return nil }
	if config.GetBool("metrics.enabled") {
		path := logging.LogFilePath(config.GetString("logsDir"), "game.metrics", time.Now())
		var err error
		provider, shutdown, err = metrics.SetupFile("field-sense-game", path,
			config.Duration("metrics.interval", metrics.DefaultInterval))
		if err != nil {
			return nil, nil, err
		}
	}
	closeMetrics := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("metrics shutdown")
		}
	}
	rec, err := provider.Recorder()
	if err != nil {
		closeMetrics()
		return nil, nil, err
	}
	opts := remote.Options{
		Debounce: config.Duration("remote.debounce", remote.DefaultDebounce),
		Timeout:  timeout,
		Logger:   logger,
		Metrics:  rec,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var computer remote.Computer
	var stream *remote.Stream
	switch transport := config.GetString("remote.transport"); transport {
	case "ws", "websocket":
		stream, err = remote.DialStream(ctx, url, timeout)
		if err != nil {
			closeMetrics()
			return nil, nil, fmt.Errorf("dialing heat-map stream: %w", err)
		}
		computer = stream
	case "http", "":
		computer = api.New(url, timeout)
	default:
		closeMetrics()
		return nil, nil, fmt.Errorf("unknown remote.transport %q", transport)
	}

	d := remote.NewDelegator(computer, opts)
	if err := d.Probe(ctx); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("compute service unreachable")
	}
	return d, func() {
		d.Close()
		if stream != nil {
			_ = stream.Close()
		}
		closeMetrics()
	}, nil
}
