package render

import (
	"image/color"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Field-Sense/internal/api"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/remote"
)

// DefaultScale is pixels per yard.
const DefaultScale = 10.0

// maxFrameDT caps the integration step after a stall.
const maxFrameDT = 0.1

// Options configures the viewer.
type Options struct {
	Logger zerolog.Logger
	// Delegator, when set, computes heat maps remotely.
	Delegator *remote.Delegator
	// Clipboard defaults to the system clipboard.
	Clipboard Clipboard
	Scale     float64
	Seed      int64
}

// Game is the ebiten.Game of the viewer.
type Game struct {
	sim    *game.Simulation
	view   View
	width  int
	height int
	fieldW int
	fieldH int

	log       *EventLog
	logger    zerolog.Logger
	delegator *remote.Delegator
	clip      Clipboard
	face      text.Face

	// Local heat map and the state version it was computed for.
	heat        *game.HeatMapData
	heatVersion uint64
	heatDirty   bool

	paused    bool
	showHUD   bool
	inspector Inspector
	dragging  string
	status    string

	training game.TrainingSet
	rng      *rand.Rand

	now       func() time.Time
	lastFrame time.Time
}

// New builds a viewer around a live simulation.
func New(sim *game.Simulation, opts Options) *Game {
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}
	g := &Game{
		sim:       sim,
		view:      NewView(opts.Scale),
		log:       NewEventLog(),
		logger:    opts.Logger,
		delegator: opts.Delegator,
		clip:      opts.Clipboard,
		face:      text.NewGoXFace(basicfont.Face7x13),
		heatDirty: true,
		showHUD:   true,
		rng:       rand.New(rand.NewSource(opts.Seed)), // #nosec G404 -- offender sampling only
		now:       time.Now,
	}
	g.fieldW, g.fieldH = g.view.Size(sim.State.Field)
	g.width = borderWidth + g.fieldW + borderWidth + logPanelWidth
	g.height = borderWidth + g.fieldH + borderWidth
	sim.OnEvent = g.onEvent
	return g
}

func (g *Game) onEvent(e game.Event) {
	g.log.AddEvent(e, g.sim.State)
	g.logger.Debug().Int("tick", e.Tick).Str("kind", string(e.Kind)).Str("player", e.PlayerID).
		Str("detail", e.Detail).Msg("event")
}

// Update handles input, advances the simulation by the wall-clock delta and
// refreshes the heat map when the state changed.
func (g *Game) Update() error {
	g.handleInput()
	g.advance()
	g.refreshHeat()
	return nil
}

// advance steps the simulation by the wall-clock time since the last frame.
func (g *Game) advance() {
	now := g.now()
	dt := 0.0
	if !g.lastFrame.IsZero() {
		dt = now.Sub(g.lastFrame).Seconds()
	}
	g.lastFrame = now
	if dt > maxFrameDT {
		dt = maxFrameDT
	}
	if !g.paused && dt > 0 {
		g.sim.Update(dt)
	}
}

// refreshHeat recomputes, or submits for remote computation, once per state
// version.
func (g *Game) refreshHeat() {
	v := g.sim.Version()
	if !g.heatDirty && v == g.heatVersion {
		return
	}
	g.heatDirty = false
	g.heatVersion = v
	cfg := g.sim.HeatMap
	if !cfg.Modes.Any() {
		g.heat = nil
		return
	}
	if g.delegator != nil {
		g.delegator.Submit(v, api.HeatMapRequest{
			GameState: g.sim.State,
			Modes:     cfg.Modes,
			Normalize: cfg.Normalize,
			GridSize:  cfg.GridSize,
			Params:    &cfg.Params,
		})
		return
	}
	g.heat = g.sim.CalculateHeatMap()
}

// currentHeat is the map to draw, or nil to hide the overlay.
func (g *Game) currentHeat() *game.HeatMapData {
	if !g.sim.HeatMap.Modes.Any() {
		return nil
	}
	if g.delegator != nil {
		data, _ := g.delegator.Latest()
		return data
	}
	return g.heat
}

// Draw renders field, overlay, players, HUD, log and inspector.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	g.drawField(screen)
	g.drawHeat(screen, g.currentHeat())
	g.drawTargets(screen)
	g.drawPlayers(screen)
	g.drawDisc(screen)

	ox, oy := float32(g.view.OffX), float32(g.view.OffY)
	vector.StrokeRect(screen, ox-1, oy-1, float32(g.fieldW)+2, float32(g.fieldH)+2, 2.0,
		color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	g.log.Draw(screen, borderWidth+g.fieldW+borderWidth, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
}

// Layout returns the fixed window size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size is the window size in pixels.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}
