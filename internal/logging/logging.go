// Package logging builds the zerolog logger shared by the Field-Sense
// binaries: a console writer, an optional session log file and an optional
// Graylog GELF sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options selects the log sinks.
type Options struct {
	Name  string // binary name, used for the log file
	Level string
	// LogsDir, when set, receives a session log file.
	LogsDir string
	// GraylogAddress, when set, ships every entry over GELF UDP.
	GraylogAddress string
	// Console defaults to stderr.
	Console io.Writer
	NoColor bool
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel maps a config string to a level; unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup returns the logger and a close func for any file it opened.
// A Graylog connection failure is reported but not fatal; the logger
// continues without it.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	closer := func() error { return nil }

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		},
	}

	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create logs dir: %w", err)
		}
		name := opts.Name
		if name == "" {
			name = "field-sense"
		}
		path := LogFilePath(opts.LogsDir, name, time.Now())
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		closer = file.Close
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	var gelfErr error
	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			gelfErr = err
		} else {
			writers = append(writers, gw)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Str("app", opts.Name).Logger()

	if gelfErr != nil {
		logger.Warn().Err(gelfErr).Str("address", opts.GraylogAddress).Msg("Graylog writer unavailable")
	}
	logger.Debug().Str("loglevel", logger.GetLevel().String()).Msg("Logging set up")
	return logger, closer, nil
}
