// Package render is the ebiten viewer: the field, its players and disc, the
// heat-map overlay, a HUD, an event log panel and a player inspector.
package render

import (
	"image/color"
	"math"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// borderWidth is the pixel gap between the window edge and the field.
const borderWidth = 24

// View maps field yards to screen pixels. The field's x (length) runs left
// to right, so the scoring end zone is on the left.
type View struct {
	OffX, OffY float64 // pixel position of the field origin
	Scale      float64 // pixels per yard
}

// NewView fits a field of the given size at scale pixels per yard.
func NewView(scale float64) View {
	return View{OffX: borderWidth, OffY: borderWidth, Scale: scale}
}

// ToScreen converts a field point to pixels.
func (v View) ToScreen(x, y float64) (float32, float32) {
	return float32(v.OffX + x*v.Scale), float32(v.OffY + y*v.Scale)
}

// ToField converts a pixel position to field yards.
func (v View) ToField(px, py int) (float64, float64) {
	return (float64(px) - v.OffX) / v.Scale, (float64(py) - v.OffY) / v.Scale
}

// Size is the pixel size of a field.
func (v View) Size(f game.Field) (int, int) {
	return int(math.Ceil(f.TotalLength * v.Scale)), int(math.Ceil(f.FieldWidth * v.Scale))
}

// heatStops is a cold-to-hot ramp.
var heatStops = []color.RGBA{
	{R: 30, G: 40, B: 160, A: 255},
	{R: 20, G: 170, B: 200, A: 255},
	{R: 80, G: 200, B: 60, A: 255},
	{R: 240, G: 220, B: 40, A: 255},
	{R: 230, G: 60, B: 30, A: 255},
}

// heatColor maps v within [lo,hi] onto the ramp. A flat map is drawn at the
// middle of the ramp.
func heatColor(v, lo, hi float64, alpha uint8) color.RGBA {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(heatStops)-1)
	i := int(pos)
	if i >= len(heatStops)-1 {
		c := heatStops[len(heatStops)-1]
		c.A = alpha
		return c
	}
	f := pos - float64(i)
	a, b := heatStops[i], heatStops[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: alpha}
}

func teamColor(t game.Team) color.RGBA {
	if t == game.TeamDefense {
		return color.RGBA{R: 70, G: 110, B: 210, A: 255}
	}
	return color.RGBA{R: 210, G: 70, B: 70, A: 255}
}
