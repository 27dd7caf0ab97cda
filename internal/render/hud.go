package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Field-Sense/internal/game"
)

const (
	hudLineH = 14
	hudCharW = 7
	hudPadX  = 6
	hudPadY  = 4
)

var hudText = color.RGBA{R: 220, G: 235, B: 220, A: 255}

// hudLines is the HUD content: sim status, layer toggles, key legend.
func (g *Game) hudLines() []string {
	state := "running"
	if g.paused {
		state = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("tick %d  %s  v%d  kinematics %s", g.sim.Tick(), state, g.sim.Version(), onOff(g.sim.Kinematic)),
	}
	modes := g.sim.HeatMap.Modes
	for i, lk := range layerKeys {
		mark := " "
		if modes.Enabled(lk.layer) {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("[%d]%s %s", i+1, mark, lk.layer))
	}
	lines = append(lines, fmt.Sprintf("[N] normalize %s", onOff(g.sim.HeatMap.Normalize)))
	if hm := g.currentHeat(); hm != nil {
		lo, hi := hm.Bounds()
		lines = append(lines, fmt.Sprintf("heat %s  %.3f..%.3f", hm.Mode, lo, hi))
	}
	if g.delegator != nil {
		status := "remote ok"
		if !g.delegator.Available() {
			status = "remote UNAVAILABLE"
		}
		lines = append(lines, status)
	}
	lines = append(lines,
		"[D]ef [O]ff [S]tack [X] sample",
		"[C]opy [V] paste  [P]ause [K]inematics",
		fmt.Sprintf("[R] capture [E]xport [I]mport  (%d)", g.training.Len()),
		"drag=move  RMB=throw  shift+RMB=cut",
	)
	if g.status != "" {
		lines = append(lines, g.status)
	}
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := g.hudLines()
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*hudCharW + hudPadX*2)
	boxH := float32(len(lines)*hudLineH + hudPadY*2)
	bx := float32(borderWidth + 4)
	by := float32(g.height) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 200}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+hudPadX, float64(by)+hudPadY+float64(i*hudLineH))
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, line, g.face, op)
	}
}

// heatAt reads the drawn heat map under a field point.
func (g *Game) heatAt(x, y float64) (float64, bool) {
	return g.currentHeat().At(x, y)
}

// catchAt is the catch layer value at a field point, for the inspector.
func (g *Game) catchAt(x, y float64) float64 {
	return game.CatchValue(x, y, g.sim.State.Field, g.sim.State.Disc, g.sim.HeatMap.Params)
}
