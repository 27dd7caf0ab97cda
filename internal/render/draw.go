package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Field-Sense/internal/game"
)

const (
	heatAlpha     = 150
	playerRadius  = 0.8 // yards
	discRadius    = 0.45
	yardLineEvery = 10
)

var (
	grassCol   = color.RGBA{R: 38, G: 92, B: 44, A: 255}
	endZoneCol = color.RGBA{R: 30, G: 74, B: 38, A: 255}
	lineCol    = color.RGBA{R: 230, G: 235, B: 230, A: 220}
	yardCol    = color.RGBA{R: 200, G: 220, B: 200, A: 40}
	selectCol  = color.RGBA{R: 250, G: 220, B: 60, A: 255}
	discCol    = color.RGBA{R: 245, G: 245, B: 245, A: 255}
)

func (g *Game) drawField(screen *ebiten.Image) {
	f := g.sim.State.Field
	x0, y0 := g.view.ToScreen(0, 0)
	x1, y1 := g.view.ToScreen(f.TotalLength, f.FieldWidth)
	ez0, _ := g.view.ToScreen(f.EndZoneDepth, 0)
	ez1, _ := g.view.ToScreen(f.OwnEndZoneLine(), 0)

	vector.FillRect(screen, x0, y0, x1-x0, y1-y0, grassCol, false)
	vector.FillRect(screen, x0, y0, ez0-x0, y1-y0, endZoneCol, false)
	vector.FillRect(screen, ez1, y0, x1-ez1, y1-y0, endZoneCol, false)

	for x := f.EndZoneDepth + yardLineEvery; x < f.OwnEndZoneLine(); x += yardLineEvery {
		sx, _ := g.view.ToScreen(x, 0)
		vector.StrokeLine(screen, sx, y0, sx, y1, 1.0, yardCol, false)
	}
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 2.0, lineCol, false)
	vector.StrokeLine(screen, ez0, y0, ez0, y1, 2.0, lineCol, false)
	vector.StrokeLine(screen, ez1, y0, ez1, y1, 2.0, lineCol, false)
}

func (g *Game) drawHeat(screen *ebiten.Image, hm *game.HeatMapData) {
	if hm == nil || hm.GridSize <= 0 {
		return
	}
	lo, hi := hm.Bounds()
	cs := float32(hm.GridSize * g.view.Scale)
	f := g.sim.State.Field
	for cx, col := range hm.Values {
		for cy, v := range col {
			x, y := g.view.ToScreen(float64(cx)*hm.GridSize, float64(cy)*hm.GridSize)
			w, h := cs, cs
			// Clip the last row and column to the field edge.
			if ex, _ := g.view.ToScreen(f.TotalLength, 0); x+w > ex {
				w = ex - x
			}
			if _, ey := g.view.ToScreen(0, f.FieldWidth); y+h > ey {
				h = ey - y
			}
			if w <= 0 || h <= 0 {
				continue
			}
			vector.FillRect(screen, x, y, w, h, heatColor(v, lo, hi, heatAlpha), false)
		}
	}
	tx, ty := g.view.ToScreen(hm.ThrowerX, hm.ThrowerY)
	vector.StrokeCircle(screen, tx, ty, float32(1.5*g.view.Scale), 1.0, discCol, true)
}

// drawTargets draws each moving player's path to its target.
func (g *Game) drawTargets(screen *ebiten.Image) {
	for i := range g.sim.State.Players {
		p := &g.sim.State.Players[i]
		if p.Target == nil {
			continue
		}
		px, py := g.view.ToScreen(p.X, p.Y)
		tx, ty := g.view.ToScreen(p.Target.X, p.Target.Y)
		c := teamColor(p.Team)
		c.A = 140
		vector.StrokeLine(screen, px, py, tx, ty, 1.0, c, true)
		vector.StrokeRect(screen, tx-3, ty-3, 6, 6, 1.0, c, false)
	}
}

func (g *Game) drawPlayers(screen *ebiten.Image) {
	r := float32(playerRadius * g.view.Scale)
	selected := g.sim.Selected()
	for i := range g.sim.State.Players {
		p := &g.sim.State.Players[i]
		x, y := g.view.ToScreen(p.X, p.Y)
		vector.FillCircle(screen, x, y, r, teamColor(p.Team), true)
		if p.HasDisc {
			vector.StrokeCircle(screen, x, y, r+2, 2.0, discCol, true)
		}
		if p.IsMark {
			vector.StrokeCircle(screen, x, y, r+4, 1.0, color.RGBA{R: 255, G: 150, B: 60, A: 220}, true)
		}
		if selected != nil && selected.ID == p.ID {
			vector.StrokeCircle(screen, x, y, r+6, 2.0, selectCol, true)
		}
		label := p.ID
		if p.Label != "" {
			label += ":" + p.Label
		}
		ebitenutil.DebugPrintAt(screen, label, int(x+r)+2, int(y-r)-14)
	}
}

func (g *Game) drawDisc(screen *ebiten.Image) {
	d := g.sim.State.Disc
	if d.Held() {
		return
	}
	x, y := g.view.ToScreen(d.X, d.Y)
	vector.FillCircle(screen, x, y, float32(discRadius*g.view.Scale), discCol, true)
	if d.InFlight {
		vx, vy := g.view.ToScreen(d.X+d.VX*0.25, d.Y+d.VY*0.25)
		vector.StrokeLine(screen, x, y, vx, vy, 1.0, discCol, true)
	}
}
