package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// FileName is the config file searched for in the config directory.
const FileName = "fieldsense.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. FIELDSENSE_SERVER_ADDRESS.
const EnvPrefix = "FIELDSENSE"

// SetDefaults registers every default value. Load calls it; tests that set
// keys directly call it too.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("field.length", game.DefaultFieldLength)
	viper.SetDefault("field.width", game.DefaultFieldWidth)
	viper.SetDefault("field.endZoneDepth", game.DefaultEndZoneDepth)

	viper.SetDefault("heatmap.gridSize", game.DefaultGridSize)
	viper.SetDefault("heatmap.normalize", true)
	viper.SetDefault("heatmap.modes.catch", false)
	viper.SetDefault("heatmap.modes.difficulty", false)
	viper.SetDefault("heatmap.modes.markingDifficulty", false)
	viper.SetDefault("heatmap.modes.coverage", false)

	viper.SetDefault("layers.catchBackBoundary", game.BoundaryOwnEndZone.String())
	viper.SetDefault("layers.shortPassYards", 0)
	viper.SetDefault("layers.markCutoffDegrees", 90)
	viper.SetDefault("layers.coverageHandicapYards", 0)
	viper.SetDefault("layers.difficultyFloor", 0.2)

	viper.SetDefault("optimizer.defenderRadius", 5)
	viper.SetDefault("optimizer.stackOffset", 20)

	viper.SetDefault("server.address", ":3000")
	viper.SetDefault("server.allowOrigin", "*")

	viper.SetDefault("remote.enabled", false)
	viper.SetDefault("remote.url", "http://localhost:3000")
	viper.SetDefault("remote.transport", "http")
	viper.SetDefault("remote.debounce", "50ms")
	viper.SetDefault("remote.timeout", "5s")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.interval", "30s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "field-sense")
	viper.SetDefault("influx.bucket", "headless_runs")
}

// Load reads configuration from the JSON file in configDir and sets default
// values. A missing file is not an error; defaults and environment apply.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Duration returns a duration config value, falling back when the key is
// unset or not positive.
func Duration(key string, fallback time.Duration) time.Duration {
	d := viper.GetDuration(key)
	if d <= 0 {
		return fallback
	}
	return d
}

// Field builds the playing field from field.*.
func Field() game.Field {
	return game.NewField(
		viper.GetFloat64("field.length"),
		viper.GetFloat64("field.width"),
		viper.GetFloat64("field.endZoneDepth"),
	)
}

// Modes reads the heat-map layer toggles.
func Modes() game.Modes {
	return game.Modes{
		Catch:             viper.GetBool("heatmap.modes.catch"),
		Difficulty:        viper.GetBool("heatmap.modes.difficulty"),
		MarkingDifficulty: viper.GetBool("heatmap.modes.markingDifficulty"),
		Coverage:          viper.GetBool("heatmap.modes.coverage"),
	}
}

// LayerParams starts from the engine defaults and applies layers.*.
// An unknown back-boundary name is an error.
func LayerParams() (game.LayerParams, error) {
	p := game.DefaultLayerParams()
	b, err := game.ParseCatchBoundary(viper.GetString("layers.catchBackBoundary"))
	if err != nil {
		return p, fmt.Errorf("layers.catchBackBoundary: %w", err)
	}
	p.CatchBoundary = b
	p.ShortPassYards = viper.GetFloat64("layers.shortPassYards")
	if deg := viper.GetFloat64("layers.markCutoffDegrees"); deg > 0 {
		p.MarkCutoff = deg / 180 * math.Pi
	}
	p.CoverageHandicap = viper.GetFloat64("layers.coverageHandicapYards")
	p.DifficultyFloor = viper.GetFloat64("layers.difficultyFloor")
	return p, nil
}

// HeatMapConfig combines heatmap.* with LayerParams.
func HeatMapConfig() (game.HeatMapConfig, error) {
	cfg := game.DefaultHeatMapConfig()
	cfg.Modes = Modes()
	cfg.Normalize = viper.GetBool("heatmap.normalize")
	if g := viper.GetFloat64("heatmap.gridSize"); g > 0 {
		cfg.GridSize = g
	}
	p, err := LayerParams()
	if err != nil {
		return cfg, err
	}
	cfg.Params = p
	return cfg, nil
}

// OptimizerParams reads optimizer.*, sharing the heat-map grid size.
func OptimizerParams() game.OptimizerParams {
	op := game.DefaultOptimizerParams()
	if g := viper.GetFloat64("heatmap.gridSize"); g > 0 {
		op.GridSize = g
	}
	if r := viper.GetFloat64("optimizer.defenderRadius"); r > 0 {
		op.DefenderRadius = r
	}
	op.StackOffset = viper.GetFloat64("optimizer.stackOffset")
	return op
}
