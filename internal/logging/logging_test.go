package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	ts := time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)
	got := LogFilePath(filepath.Join("var", "logs"), "field-server", ts)
	assert.Equal(t, filepath.Join("var", "logs", "field-server.20240115_143045.log"), got)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetup_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Name: "test", Level: "warn", Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer closer()

	logger.Info().Msg("hidden")
	logger.Warn().Str("player", "o1").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "player=o1")
}

func TestSetup_WritesSessionFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Name: "sess", Level: "info", LogsDir: dir, Console: &buf})
	require.NoError(t, err)

	logger.Info().Msg("to file")
	require.NoError(t, closer())

	matches, err := filepath.Glob(filepath.Join(dir, "sess.*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestSetup_BadLogsDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, _, err := Setup(Options{Name: "x", LogsDir: filepath.Join(file, "sub"), Console: &bytes.Buffer{}})
	require.Error(t, err)
}
