package game

import (
	"fmt"
	"math"
)

// CatchBoundary selects the back reference of the catch-value ramp.
type CatchBoundary int

const (
	// BoundaryOwnEndZone ramps to zero at the defended end-zone line.
	BoundaryOwnEndZone CatchBoundary = iota
	// BoundaryDiscPosition ramps to zero at the disc's current x.
	BoundaryDiscPosition
)

func (b CatchBoundary) String() string {
	switch b {
	case BoundaryOwnEndZone:
		return "ownEndZone"
	case BoundaryDiscPosition:
		return "discPosition"
	default:
		return fmt.Sprintf("boundary(%d)", int(b))
	}
}

// ParseCatchBoundary accepts the names produced by String.
func ParseCatchBoundary(s string) (CatchBoundary, error) {
	switch s {
	case "", "ownEndZone":
		return BoundaryOwnEndZone, nil
	case "discPosition":
		return BoundaryDiscPosition, nil
	}
	return BoundaryOwnEndZone, fmt.Errorf("unknown catch boundary %q", s)
}

// LayerParams holds the tunables of the scalar fields. The zero value is not
// useful; start from DefaultLayerParams.
type LayerParams struct {
	CatchBoundary CatchBoundary `json:"catchBoundary"`
	// Center bonus: 1 - SidelineLinear*n - SidelineWeight*n^SidelineExponent,
	// with n the distance from the width centerline over half the width.
	SidelineLinear   float64 `json:"sidelineLinear"`
	SidelineWeight   float64 `json:"sidelineWeight"`
	SidelineExponent float64 `json:"sidelineExponent"`
	// Passes shorter than ShortPassYards ramp from 0; 0 disables the ramp.
	ShortPassYards    float64 `json:"shortPassYards"`
	ShortPassExponent float64 `json:"shortPassExponent"`

	DifficultyScale   float64 `json:"difficultyScale"`
	DifficultyFloor   float64 `json:"difficultyFloor"`
	DifficultyDivisor float64 `json:"difficultyDivisor"`

	// MarkReference is where the mark forces the thrower; nil means the
	// offensive end-zone corner (0, FieldWidth).
	MarkReference     *Point  `json:"markReference,omitempty"`
	MarkCutoff        float64 `json:"markCutoff"` // radians
	MarkDistanceScale float64 `json:"markDistanceScale"`
	MarkStrength      float64 `json:"markStrength"`

	CoverageHandicap float64 `json:"coverageHandicap"` // yards added to defender distance
}

// DefaultLayerParams returns the baseline tuning.
func DefaultLayerParams() LayerParams {
	return LayerParams{
		CatchBoundary:     BoundaryOwnEndZone,
		SidelineLinear:    0.5,
		SidelineWeight:    0.5,
		SidelineExponent:  4,
		ShortPassExponent: 3,
		DifficultyScale:   80,
		DifficultyFloor:   0.2,
		DifficultyDivisor: 1,
		MarkCutoff:        math.Pi / 2,
		MarkDistanceScale: 60,
		MarkStrength:      3,
	}
}

// withDefaults repairs non-positive divisors so no formula divides by zero.
func (p LayerParams) withDefaults() LayerParams {
	d := DefaultLayerParams()
	if p.SidelineExponent <= 0 {
		p.SidelineExponent = d.SidelineExponent
	}
	if p.ShortPassExponent <= 0 {
		p.ShortPassExponent = d.ShortPassExponent
	}
	if p.DifficultyScale <= 0 {
		p.DifficultyScale = d.DifficultyScale
	}
	if p.DifficultyDivisor <= 0 {
		p.DifficultyDivisor = d.DifficultyDivisor
	}
	if p.MarkCutoff <= 0 {
		p.MarkCutoff = d.MarkCutoff
	}
	if p.MarkDistanceScale <= 0 {
		p.MarkDistanceScale = d.MarkDistanceScale
	}
	if p.MarkStrength <= 0 {
		p.MarkStrength = d.MarkStrength
	}
	return p
}

func (p LayerParams) markReference(f Field) Point {
	if p.MarkReference != nil {
		return *p.MarkReference
	}
	return Point{X: 0, Y: f.FieldWidth}
}

// CatchValue is the offense's value of catching at (x,y), in [0,1]: 1 in the
// scoring end zone, 0 at or behind the back boundary, a linear ramp between,
// scaled by the center bonus and the optional short-pass ramp.
func CatchValue(x, y float64, f Field, d Disc, p LayerParams) float64 {
	f = f.normalized()
	if x <= f.EndZoneDepth {
		return 1
	}
	back := f.OwnEndZoneLine()
	if p.CatchBoundary == BoundaryDiscPosition {
		back = d.X
	}
	if x >= back || back <= f.EndZoneDepth {
		return 0
	}
	v := (back - x) / (back - f.EndZoneDepth)
	v *= centerBonus(y, f, p)
	if p.ShortPassYards > 0 {
		r := math.Min(dist(x, y, d.X, d.Y)/p.ShortPassYards, 1)
		v *= math.Pow(r, p.ShortPassExponent)
	}
	return clamp01(v)
}

func centerBonus(y float64, f Field, p LayerParams) float64 {
	half := f.FieldWidth / 2
	if half <= 0 {
		return 1
	}
	n := math.Min(math.Abs(y-half)/half, 1)
	return 1 - p.SidelineLinear*n - p.SidelineWeight*math.Pow(n, p.SidelineExponent)
}

// DifficultyAt is the raw throw difficulty: distance from the disc over the
// difficulty scale. It is unbounded above; the difficulty layer normalizes it.
func DifficultyAt(x, y float64, d Disc, p LayerParams) float64 {
	return dist(x, y, d.X, d.Y) / p.DifficultyScale
}

// EaseAt is 0 for a throw straight along the mark vector, rising linearly with
// the absolute angle off it to 1 at the cutoff.
func EaseAt(thrower, target, ref Point, cutoff float64) float64 {
	mx, my := ref.X-thrower.X, ref.Y-thrower.Y
	ml := math.Hypot(mx, my)
	if ml < 1e-3 {
		return 1
	}
	tx, ty := target.X-thrower.X, target.Y-thrower.Y
	tl := math.Hypot(tx, ty)
	if tl < 1e-3 {
		return 0
	}
	mx, my = mx/ml, my/ml
	tx, ty = tx/tl, ty/tl
	angle := math.Abs(math.Atan2(mx*ty-my*tx, mx*tx+my*ty))
	if angle >= cutoff {
		return 1
	}
	return angle / cutoff
}

// MarkingDifficultyAt folds the mark's angular pressure into a distance
// falloff from the disc: 1 - (1-ease)*distanceFactor, in [0,1].
func MarkingDifficultyAt(thrower, target Point, f Field, d Disc, p LayerParams) float64 {
	ease := EaseAt(thrower, target, p.markReference(f), p.MarkCutoff)
	falloff := math.Max(0, 1-dist(target.X, target.Y, d.X, d.Y)/(p.MarkDistanceScale*p.MarkStrength))
	return clamp01(1 - (1-ease)*falloff)
}

// Coverage cell values.
const (
	CoverageCovered = 0.0
	CoverageSemi    = 0.5
	CoverageOpen    = 1.0
)

// coverageAt classifies one point against the nearest downfield defender and
// nearest offender without the disc. A missing side counts as infinitely far,
// so no defenders leaves free offenders open and an empty field covered.
func coverageAt(x, y float64, offense, defense []Point, d Disc, handicap float64) float64 {
	minOff := math.Inf(1)
	for _, o := range offense {
		minOff = math.Min(minOff, dist(x, y, o.X, o.Y))
	}
	minDef := math.Inf(1)
	for _, q := range defense {
		minDef = math.Min(minDef, dist(x, y, q.X, q.Y))
	}
	minDef += handicap

	fromCloser := CoverageOpen
	if minDef <= minOff {
		fromCloser = CoverageCovered
	}
	fromHalf := CoverageOpen
	if minDef < dist(x, y, d.X, d.Y)/2 {
		fromHalf = CoverageSemi
	}
	return math.Min(fromCloser, fromHalf)
}

// CoverageAt evaluates the coverage test at a single point of a state.
func CoverageAt(x, y float64, st *State, p LayerParams) float64 {
	off, def := coverageSides(st)
	return coverageAt(x, y, off, def, st.Disc, p.CoverageHandicap)
}

// coverageSides splits players into offenders without the disc and
// defenders other than the mark.
func coverageSides(st *State) (offense, defense []Point) {
	for i := range st.Players {
		p := &st.Players[i]
		switch {
		case p.IsOffender():
			offense = append(offense, Point{X: p.X, Y: p.Y})
		case p.IsDownfieldDefender():
			defense = append(defense, Point{X: p.X, Y: p.Y})
		}
	}
	return offense, defense
}
