package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Field-Sense/internal/game"
)

const (
	inspW     = 250
	inspPad   = 6
	inspLineH = 14
)

// Inspector holds the view toggle of the selected-player panel.
type Inspector struct {
	rawView bool // false = curated, true = JSON dump
}

// inspectorLines describes p, or nil without a selection.
func (g *Game) inspectorLines(p *game.Player) []string {
	if p == nil {
		return nil
	}
	if g.inspector.rawView {
		b, err := json.MarshalIndent(p, "", " ")
		if err != nil {
			return []string{err.Error()}
		}
		return strings.Split(string(b), "\n")
	}
	lines := []string{
		fmt.Sprintf("%s  %s", p.ID, p.Team),
		fmt.Sprintf("pos (%.1f, %.1f)", p.X, p.Y),
		fmt.Sprintf("motion %s  %.1f/%.1f yd/s", p.Motion, p.CurrentSpeed, p.Speed),
	}
	if p.Label != "" {
		lines = append(lines, "label "+p.Label)
	}
	if p.Target != nil {
		lines = append(lines, fmt.Sprintf("target (%.1f, %.1f)", p.Target.X, p.Target.Y))
	}
	var roles []string
	if p.HasDisc {
		roles = append(roles, "thrower")
	}
	if p.IsMark {
		roles = append(roles, "mark")
	} else if p.IsDownfieldDefender() {
		roles = append(roles, "downfield")
	}
	if len(roles) > 0 {
		lines = append(lines, "role "+strings.Join(roles, ", "))
	}
	lines = append(lines, fmt.Sprintf("catch value %.3f", g.catchAt(p.X, p.Y)))
	if v, ok := g.heatAt(p.X, p.Y); ok {
		lines = append(lines, fmt.Sprintf("heat %.3f", v))
	}
	return lines
}

func (g *Game) drawInspector(screen *ebiten.Image) {
	lines := g.inspectorLines(g.sim.Selected())
	if len(lines) == 0 {
		return
	}
	x := float32(borderWidth + g.fieldW - inspW - 4)
	y := float32(borderWidth + 4)
	h := float32(len(lines)*inspLineH + inspPad*2)
	vector.FillRect(screen, x, y, inspW, h, color.RGBA{R: 8, G: 12, B: 8, A: 220}, false)
	vector.StrokeRect(screen, x, y, inspW, h, 1.0, selectCol, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, int(x)+inspPad, int(y)+inspPad+i*inspLineH-2)
	}
}
