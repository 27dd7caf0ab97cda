package render

import (
	"encoding/json"
	"fmt"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// Optimizer keys.
const (
	optDefender = "defender"
	optOffender = "offender"
	optStack    = "stack"
	optSample   = "sample"
)

// setStatus shows a one-line message in the HUD and logs it.
func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.log.Add(g.sim.Tick(), "", 0, g.status)
	g.logger.Info().Msg(g.status)
}

func (g *Game) toggleLayer(key string) {
	g.sim.SetModes(g.sim.HeatMap.Modes.Toggle(key))
	g.setStatus("layer %s %s", key, onOff(g.sim.HeatMap.Modes.Enabled(key)))
}

func (g *Game) toggleNormalize() {
	g.sim.SetNormalize(!g.sim.HeatMap.Normalize)
	g.setStatus("normalize %s", onOff(g.sim.HeatMap.Normalize))
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	g.setStatus("simulation %s", map[bool]string{true: "paused", false: "running"}[g.paused])
}

// runOptimizer places a player. The pair follows the selected player's label
// when it has one.
func (g *Game) runOptimizer(kind string) {
	label := ""
	if s := g.sim.Selected(); s != nil {
		label = s.Label
	}
	var (
		pt game.Point
		ok bool
	)
	switch kind {
	case optDefender:
		pt, ok = g.sim.PositionDefender(label)
	case optOffender:
		pt, ok = g.sim.PositionOffender(label)
	case optStack:
		pt, ok = g.sim.PositionStack()
	case optSample:
		pt, ok = g.sim.SampleOffender(label, g.rng)
	}
	if !ok {
		g.setStatus("%s placement unavailable", kind)
		return
	}
	g.setStatus("%s placed at (%.1f, %.1f)", kind, pt.X, pt.Y)
}

func (g *Game) copyState() {
	b, err := json.MarshalIndent(g.sim.State, "", "  ")
	if err != nil {
		g.setStatus("copy failed: %v", err)
		return
	}
	if err := g.clip.WriteAll(string(b)); err != nil {
		g.setStatus("copy failed: %v", err)
		return
	}
	g.setStatus("state copied (%d players)", len(g.sim.State.Players))
}

// pasteState replaces the state with a clipboard snapshot. An invalid
// snapshot leaves the current state alone.
func (g *Game) pasteState() {
	s, err := g.clip.ReadAll()
	if err != nil {
		g.setStatus("paste failed: %v", err)
		return
	}
	var st game.State
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		g.setStatus("paste failed: %v", err)
		return
	}
	if err := g.sim.SetState(&st); err != nil {
		g.setStatus("paste rejected: %v", err)
		return
	}
	g.dragging = ""
	g.setStatus("state pasted (%d players)", len(st.Players))
}

func (g *Game) captureTraining() {
	r, ok := g.training.Capture(g.sim.State)
	if !ok {
		g.setStatus("capture needs an offender and a downfield defender")
		return
	}
	g.setStatus("captured #%d o(%.1f,%.1f) d(%.1f,%.1f)", g.training.Len(), r.OffenseX, r.OffenseY, r.DefenseX, r.DefenseY)
}

func (g *Game) exportTraining() {
	b, err := g.training.ExportJSON()
	if err == nil {
		err = g.clip.WriteAll(string(b))
	}
	if err != nil {
		g.setStatus("export failed: %v", err)
		return
	}
	g.setStatus("exported %d training records", g.training.Len())
}

func (g *Game) importTraining() {
	s, err := g.clip.ReadAll()
	if err == nil {
		err = g.training.ImportJSON([]byte(s))
	}
	if err != nil {
		g.setStatus("import failed: %v", err)
		return
	}
	g.setStatus("imported %d training records", g.training.Len())
}

// pressAt selects the player under a field point and starts dragging it;
// empty space clears the selection.
func (g *Game) pressAt(x, y float64) {
	p := g.sim.PlayerAt(x, y)
	if p == nil {
		_ = g.sim.SelectPlayer("")
		g.dragging = ""
		return
	}
	_ = g.sim.SelectPlayer(p.ID)
	g.dragging = p.ID
}

func (g *Game) dragTo(x, y float64) {
	if g.dragging == "" {
		return
	}
	if err := g.sim.MovePlayerTo(g.dragging, x, y); err != nil {
		g.dragging = ""
	}
}

func (g *Game) release() {
	g.dragging = ""
}

// throwTo throws the disc toward a field point.
func (g *Game) throwTo(x, y float64) {
	if !g.sim.ThrowDisc(x, y, game.DefaultThrowSpeed) {
		g.setStatus("nobody holds the disc")
	}
}

// cutTo sends the selected player running to a field point.
func (g *Game) cutTo(x, y float64) {
	s := g.sim.Selected()
	if s == nil {
		return
	}
	_ = g.sim.SetPlayerTarget(s.ID, x, y)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
