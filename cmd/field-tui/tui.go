package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// statusRows are reserved under the field for the status and key lines.
const statusRows = 2

// heatRamp runs cold to hot.
var heatRamp = [][3]int32{
	{30, 40, 160},
	{20, 170, 200},
	{80, 200, 60},
	{240, 220, 40},
	{230, 60, 30},
}

var (
	styleField   = tcell.StyleDefault.Background(tcell.NewRGBColor(20, 60, 20))
	styleEndZone = tcell.StyleDefault.Background(tcell.NewRGBColor(30, 80, 30))
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type tui struct {
	screen tcell.Screen
	sim    *game.Simulation
	// cue plays on every catch; nil when sound is off.
	cue func()

	heat        *game.HeatMapData
	heatVersion uint64
	heatFresh   bool
	paused      bool
	status      string

	// pollDone closes when the event goroutine of the last run exits.
	pollDone chan struct{}
}

func newTUI(screen tcell.Screen, sim *game.Simulation, cue func()) *tui {
	t := &tui{screen: screen, sim: sim, cue: cue}
	sim.OnEvent = t.onEvent
	return t
}

func (t *tui) onEvent(e game.Event) {
	switch e.Kind {
	case game.EventCatch:
		t.status = fmt.Sprintf("T%d %s caught the disc", e.Tick, e.PlayerID)
		if t.cue != nil {
			t.cue()
		}
	case game.EventDiscStop:
		t.status = fmt.Sprintf("T%d disc down at (%.1f, %.1f)", e.Tick, e.X, e.Y)
	case game.EventThrow:
		t.status = fmt.Sprintf("T%d %s throws", e.Tick, e.PlayerID)
	}
}

// step advances the simulation and recomputes the heat map when the state
// changed.
func (t *tui) step(dt float64) {
	if !t.paused {
		t.sim.Update(dt)
	}
	if v := t.sim.Version(); !t.heatFresh || v != t.heatVersion {
		t.heat = t.sim.CalculateHeatMap()
		t.heatVersion = v
		t.heatFresh = true
	}
}

// fieldSize is the number of terminal cells the field occupies.
func (t *tui) fieldSize() (cols, rows int) {
	w, h := t.screen.Size()
	return w, max(h-statusRows, 1)
}

// toCell maps a field point to a terminal cell.
func (t *tui) toCell(x, y float64) (int, int) {
	cols, rows := t.fieldSize()
	f := t.sim.State.Field
	c := int(x / f.TotalLength * float64(cols))
	r := int(y / f.FieldWidth * float64(rows))
	return min(max(c, 0), cols-1), min(max(r, 0), rows-1)
}

// toField is the field point at the center of a terminal cell.
func (t *tui) toField(c, r int) (float64, float64) {
	cols, rows := t.fieldSize()
	f := t.sim.State.Field
	return (float64(c) + 0.5) / float64(cols) * f.TotalLength, (float64(r) + 0.5) / float64(rows) * f.FieldWidth
}

func (t *tui) draw() {
	t.screen.Clear()
	cols, rows := t.fieldSize()
	f := t.sim.State.Field
	var lo, hi float64
	if t.heat != nil {
		lo, hi = t.heat.Bounds()
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := t.toField(c, r)
			style := styleField
			if x < f.EndZoneDepth || x > f.OwnEndZoneLine() {
				style = styleEndZone
			}
			if v, ok := t.heat.At(x, y); ok {
				style = heatStyle(v, lo, hi)
			}
			t.screen.SetContent(c, r, ' ', nil, style)
		}
	}

	st := t.sim.State
	for i := range st.Players {
		p := &st.Players[i]
		c, r := t.toCell(p.X, p.Y)
		t.screen.SetContent(c, r, playerRune(p), nil, playerStyle(p))
	}
	if st.Disc.InFlight {
		c, r := t.toCell(st.Disc.X, st.Disc.Y)
		t.screen.SetContent(c, r, '*', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	}

	t.drawText(0, rows, t.statusLine())
	t.drawText(0, rows+1, "1-4 layers  n norm  d/o/s place  t throw  p pause  q quit")
	t.screen.Show()
}

func (t *tui) statusLine() string {
	mode := "none"
	if t.heat != nil {
		mode = t.heat.Mode
	}
	state := "running"
	if t.paused {
		state = "paused"
	}
	line := fmt.Sprintf("tick %d %s heat=%s", t.sim.Tick(), state, mode)
	if t.status != "" {
		line += "  " + t.status
	}
	return line
}

func (t *tui) drawText(x, y int, s string) {
	w, _ := t.screen.Size()
	for i, r := range []rune(s) {
		if x+i >= w {
			return
		}
		t.screen.SetContent(x+i, y, r, nil, styleStatus)
	}
}

// handleKey applies a key press; false means quit.
func (t *tui) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}
	switch ev.Rune() {
	case 'q':
		return false
	case '1':
		t.sim.SetModes(t.sim.HeatMap.Modes.Toggle(game.LayerCatch))
	case '2':
		t.sim.SetModes(t.sim.HeatMap.Modes.Toggle(game.LayerDifficulty))
	case '3':
		t.sim.SetModes(t.sim.HeatMap.Modes.Toggle(game.LayerMarkingDifficulty))
	case '4':
		t.sim.SetModes(t.sim.HeatMap.Modes.Toggle(game.LayerCoverage))
	case 'n':
		t.sim.SetNormalize(!t.sim.HeatMap.Normalize)
	case 'p':
		t.paused = !t.paused
	case 'd':
		pt, ok := t.sim.PositionDefender("")
		t.placed("defender", pt, ok)
	case 'o':
		pt, ok := t.sim.PositionOffender("")
		t.placed("offender", pt, ok)
	case 's':
		pt, ok := t.sim.PositionStack()
		t.placed("stack", pt, ok)
	case 't':
		t.throwToOffender()
	}
	return true
}

func (t *tui) placed(kind string, pt game.Point, ok bool) {
	if !ok {
		t.status = kind + " placement unavailable"
		return
	}
	t.status = fmt.Sprintf("%s placed at (%.1f, %.1f)", kind, pt.X, pt.Y)
}

// throwToOffender throws to the first free offender.
func (t *tui) throwToOffender() {
	o := t.sim.State.Offender("")
	if o == nil {
		t.status = "nobody to throw to"
		return
	}
	if !t.sim.ThrowDisc(o.X, o.Y, game.DefaultThrowSpeed) {
		t.status = "nobody holds the disc"
	}
}

// run draws at the given frame interval until a quit key.
func (t *tui) run(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	t.pollDone = make(chan struct{})
	go func(exited chan<- struct{}) {
		defer close(exited)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}(t.pollDone)

	t.step(0)
	t.draw()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !t.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case <-ticker.C:
			t.step(frame.Seconds())
			t.draw()
		}
	}
}

func heatStyle(v, lo, hi float64) tcell.Style {
	f := 0.5
	if hi > lo {
		f = (v - lo) / (hi - lo)
	}
	if math.IsNaN(f) || f < 0 {
		f = 0
	}
	i := int(math.Round(math.Min(f, 1) * float64(len(heatRamp)-1)))
	c := heatRamp[i]
	return tcell.StyleDefault.Background(tcell.NewRGBColor(c[0], c[1], c[2]))
}

func playerRune(p *game.Player) rune {
	switch {
	case p.HasDisc:
		return '@'
	case p.IsMark:
		return 'M'
	case p.Team == game.TeamDefense:
		return 'D'
	}
	return 'O'
}

func playerStyle(p *game.Player) tcell.Style {
	if p.Team == game.TeamDefense {
		return tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 160, 255)).Bold(true)
	}
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 120, 120)).Bold(true)
}
