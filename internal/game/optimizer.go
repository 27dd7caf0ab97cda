package game

import (
	"math"
	"math/rand"
)

// OptimizerParams configures the placement searches.
type OptimizerParams struct {
	GridSize       float64 `json:"gridSize"`
	DefenderRadius float64 `json:"defenderRadius"` // yards around the paired offender
	StackOffset    float64 `json:"stackOffset"`    // yards downfield of the disc
}

// DefaultOptimizerParams returns 1-yard cells, a 5-yard defender radius and
// a stack 20 yards downfield.
func DefaultOptimizerParams() OptimizerParams {
	return OptimizerParams{GridSize: DefaultGridSize, DefenderRadius: 5, StackOffset: 20}
}

// PositionDefenderOptimal searches every cell within DefenderRadius of the
// offender paired with label (the first offender when label is empty) for the
// spot of the paired downfield defender that minimizes CombinedSum. The first
// minimum found wins. ok is false without such a pair or without a thrower.
// The state is not modified.
func PositionDefenderOptimal(st *State, label string, op OptimizerParams, p LayerParams) (Point, bool) {
	off := st.Offender(label)
	def := st.DownfieldDefender(label)
	if off == nil || def == nil {
		return Point{}, false
	}
	p = p.withDefaults()
	g := NewGrid(st.Field, op.GridSize)

	// Moving the defender changes only the coverage layer.
	base, ok := baseLayers(st, g, p)
	if !ok {
		return Point{}, false
	}

	work := st.Clone()
	moved := work.Player(def.ID)
	r2 := op.DefenderRadius * op.DefenderRadius
	best := Point{X: def.X, Y: def.Y}
	bestSum := math.Inf(1)
	for cx := 0; cx < g.CellsX; cx++ {
		for cy := 0; cy < g.CellsY; cy++ {
			x, y := g.Center(cx, cy)
			if sqr(x-off.X)+sqr(y-off.Y) > r2 {
				continue
			}
			x, y = st.Field.Clamp(x, y)
			moved.X, moved.Y = x, y
			if s := sumWithCoverage(base, CoverageLayer(work, g, p)); s < bestSum {
				bestSum = s
				best = Point{X: x, Y: y}
			}
		}
	}
	return best, true
}

// offenderScores is the four-layer pre-normalization product per cell.
func offenderScores(st *State, g Grid, p LayerParams) ([][]float64, bool) {
	base, ok := baseLayers(st, g, p)
	if !ok {
		return nil, false
	}
	cov := CoverageLayer(st, g, p)
	for cx := range base {
		for cy := range base[cx] {
			base[cx][cy] *= cov[cx][cy]
		}
	}
	return base, true
}

// PositionOffenderOptimal returns the cell center with the highest
// four-layer product over the whole field, first maximum winning. ok is false
// without an offender matching label or without a thrower.
func PositionOffenderOptimal(st *State, label string, op OptimizerParams, p LayerParams) (Point, bool) {
	if st.Offender(label) == nil {
		return Point{}, false
	}
	g := NewGrid(st.Field, op.GridSize)
	scores, ok := offenderScores(st, g, p.withDefaults())
	if !ok {
		return Point{}, false
	}
	bestX, bestY := 0, 0
	bestV := math.Inf(-1)
	for cx := range scores {
		for cy := range scores[cx] {
			if v := scores[cx][cy]; v > bestV {
				bestV, bestX, bestY = v, cx, cy
			}
		}
	}
	x, y := st.Field.Clamp(g.Center(bestX, bestY))
	return Point{X: x, Y: y}, true
}

// SampleOffenderPosition picks a cell center with probability proportional
// to its four-layer product. ok is false without an offender, without a
// thrower, or when every cell scores zero.
func SampleOffenderPosition(st *State, label string, op OptimizerParams, p LayerParams, rng *rand.Rand) (Point, bool) {
	if st.Offender(label) == nil {
		return Point{}, false
	}
	g := NewGrid(st.Field, op.GridSize)
	scores, ok := offenderScores(st, g, p.withDefaults())
	if !ok {
		return Point{}, false
	}
	total := 0.0
	for _, col := range scores {
		for _, v := range col {
			total += v
		}
	}
	if !(total > 0) {
		return Point{}, false
	}
	threshold := rng.Float64() * total
	cum := 0.0
	lastX, lastY := 0, 0
	for cx := range scores {
		for cy := range scores[cx] {
			v := scores[cx][cy]
			if v <= 0 {
				continue
			}
			cum += v
			lastX, lastY = cx, cy
			if cum >= threshold {
				x, y := st.Field.Clamp(g.Center(cx, cy))
				return Point{X: x, Y: y}, true
			}
		}
	}
	// Rounding left the threshold past the running total.
	x, y := st.Field.Clamp(g.Center(lastX, lastY))
	return Point{X: x, Y: y}, true
}

// PositionOffenderStack is StackOffset yards downfield of the disc toward the
// scoring end, width-centered and clamped. ok is false without an offender.
func PositionOffenderStack(st *State, label string, op OptimizerParams) (Point, bool) {
	if st.Offender(label) == nil {
		return Point{}, false
	}
	x, y := st.Field.Clamp(st.Disc.X-op.StackOffset, st.Field.CenterY())
	return Point{X: x, Y: y}, true
}
