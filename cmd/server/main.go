package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Field-Sense/internal/config"
	"github.com/Garsondee/Field-Sense/internal/logging"
	"github.com/Garsondee/Field-Sense/internal/metrics"
	"github.com/Garsondee/Field-Sense/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var configDir, addr string
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	flag.Parse()

	if err := config.Load(configDir); err != nil {
		return err
	}
	if addr == "" {
		addr = config.GetString("server.address")
	}

	opts := logging.Options{
		Name:    "server",
		Level:   config.GetString("logLevel"),
		LogsDir: config.GetString("logsDir"),
	}
	if config.GetBool("graylog.enabled") {
		opts.GraylogAddress = config.GetString("graylog.address")
	}
	logger, closeLog, err := logging.Setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	params, err := config.LayerParams()
	if err != nil {
		return err
	}
	provider := &metrics.Provider{}
	if config.GetBool("metrics.enabled") {
		path := logging.LogFilePath(config.GetString("logsDir"), "server.metrics", time.Now())
		var shutdown func(context.Context) error
		provider, shutdown, err = metrics.SetupFile("field-sense-server", path,
			config.Duration("metrics.interval", metrics.DefaultInterval))
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("metrics shutdown")
			}
		}()
		logger.Info().Str("file", path).Msg("exporting metrics")
	}
	rec, err := provider.Recorder()
	if err != nil {
		return err
	}
	cfg := server.Config{
		Params:      params,
		Optimizer:   config.OptimizerParams(),
		AllowOrigin: config.GetString("server.allowOrigin"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, logger, rec).Run(ctx, addr); err != nil {
		logger.Error().Err(err).Msg("compute service stopped")
		return err
	}
	logger.Info().Msg("compute service shut down")
	return nil
}
