package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Field-Sense/internal/config"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/logging"
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
	var sound bool
	var fps int
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.IntVar(&perSide, "players", 7, "players per side in the starting lineup")
	flag.BoolVar(&sound, "sound", true, "play a tone on every catch")
	flag.IntVar(&fps, "fps", 30, "frames per second")
	flag.Parse()
	if fps <= 0 {
		return fmt.Errorf("-fps must be > 0")
	}

	if err := config.Load(configDir); err != nil {
		return err
	}
	// The terminal belongs to the viewer, so logs only go to the session file.
	logger, closeLog, err := logging.Setup(logging.Options{
		Name:    "field-tui",
		Level:   config.GetString("logLevel"),
		LogsDir: config.GetString("logsDir"),
		Console: io.Discard,
	})
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
	if !sim.HeatMap.Modes.Any() {
		sim.SetModes(game.Modes{Catch: true})
	}

	var cue func()
	if sound {
		var closeSound func()
		cue, closeSound, err = initSound()
		if err != nil {
			logger.Warn().Err(err).Msg("sound unavailable")
		}
		defer closeSound()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	logger.Info().Int("players", len(sim.State.Players)).Bool("sound", cue != nil).Msg("terminal viewer starting")
	newTUI(screen, sim, cue).run(time.Second / time.Duration(fps))
	logger.Info().Int("ticks", sim.Tick()).Msg("terminal viewer closed")
	return nil
}
