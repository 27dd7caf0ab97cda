package game

import "math"

// Layer keys, as reported in HeatMapData.Mode.
const (
	LayerCatch             = "catch"
	LayerDifficulty        = "difficulty"
	LayerMarkingDifficulty = "markingDifficulty"
	LayerCoverage          = "coverage"
	LayerCombined          = "combined"
)

// Modes toggles the four heat-map layers independently.
type Modes struct {
	Catch             bool `json:"catch"`
	Difficulty        bool `json:"difficulty"`
	MarkingDifficulty bool `json:"markingDifficulty"`
	Coverage          bool `json:"coverage"`
}

// AllModes enables every layer.
func AllModes() Modes {
	return Modes{Catch: true, Difficulty: true, MarkingDifficulty: true, Coverage: true}
}

// Count returns how many layers are on.
func (m Modes) Count() int {
	n := 0
	for _, on := range []bool{m.Catch, m.Difficulty, m.MarkingDifficulty, m.Coverage} {
		if on {
			n++
		}
	}
	return n
}

// Any reports whether at least one layer is on.
func (m Modes) Any() bool { return m.Count() > 0 }

// Enabled reports whether the layer with the given key is on.
func (m Modes) Enabled(key string) bool {
	switch key {
	case LayerCatch:
		return m.Catch
	case LayerDifficulty:
		return m.Difficulty
	case LayerMarkingDifficulty:
		return m.MarkingDifficulty
	case LayerCoverage:
		return m.Coverage
	}
	return false
}

// Toggle flips the layer with the given key; unknown keys are ignored.
func (m Modes) Toggle(key string) Modes {
	switch key {
	case LayerCatch:
		m.Catch = !m.Catch
	case LayerDifficulty:
		m.Difficulty = !m.Difficulty
	case LayerMarkingDifficulty:
		m.MarkingDifficulty = !m.MarkingDifficulty
	case LayerCoverage:
		m.Coverage = !m.Coverage
	}
	return m
}

// HeatMapConfig is everything the compositor needs besides the state.
type HeatMapConfig struct {
	Modes     Modes       `json:"modes"`
	Normalize bool        `json:"normalize"`
	GridSize  float64     `json:"gridSize"`
	Params    LayerParams `json:"params"`
}

// DefaultHeatMapConfig has every layer off, normalization on and 1-yard cells.
func DefaultHeatMapConfig() HeatMapConfig {
	return HeatMapConfig{
		Normalize: true,
		GridSize:  DefaultGridSize,
		Params:    DefaultLayerParams(),
	}
}

// HeatMapData is one compositor result. Values is indexed [cellX][cellY].
type HeatMapData struct {
	GridSize float64     `json:"gridSize"`
	Values   [][]float64 `json:"values"`
	ThrowerX float64     `json:"throwerX"`
	ThrowerY float64     `json:"throwerY"`
	Mode     string      `json:"mode"`
}

// At returns the value of the cell containing a field point.
func (h *HeatMapData) At(x, y float64) (float64, bool) {
	if h == nil || h.GridSize <= 0 || x < 0 || y < 0 {
		return 0, false
	}
	cx, cy := int(x/h.GridSize), int(y/h.GridSize)
	if cx >= len(h.Values) || cy >= len(h.Values[cx]) {
		return 0, false
	}
	return h.Values[cx][cy], true
}

// Bounds returns the smallest and largest cell values.
func (h *HeatMapData) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, col := range h.Values {
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// CatchLayer evaluates CatchValue at every cell center.
func CatchLayer(st *State, g Grid, p LayerParams) [][]float64 {
	values := g.newLayer()
	for cx := range values {
		for cy := range values[cx] {
			x, y := g.Center(cx, cy)
			values[cx][cy] = CatchValue(x, y, st.Field, st.Disc, p)
		}
	}
	return values
}

// DifficultyLayer evaluates DifficultyAt at every cell, divides by the grid
// maximum, floors and divides. Values are not yet inverted.
func DifficultyLayer(st *State, g Grid, p LayerParams) [][]float64 {
	values := g.newLayer()
	maxV := 0.0
	for cx := range values {
		for cy := range values[cx] {
			x, y := g.Center(cx, cy)
			v := DifficultyAt(x, y, st.Disc, p)
			values[cx][cy] = v
			maxV = math.Max(maxV, v)
		}
	}
	if maxV <= 0 {
		return values
	}
	for cx := range values {
		for cy := range values[cx] {
			values[cx][cy] = math.Max(values[cx][cy]/maxV, p.DifficultyFloor) / p.DifficultyDivisor
		}
	}
	return values
}

// MarkingDifficultyLayer needs a thrower; ok is false without one.
func MarkingDifficultyLayer(st *State, g Grid, p LayerParams) (values [][]float64, thrower Point, ok bool) {
	t := st.Thrower()
	if t == nil {
		return nil, Point{}, false
	}
	thrower = Point{X: t.X, Y: t.Y}
	values = g.newLayer()
	for cx := range values {
		for cy := range values[cx] {
			x, y := g.Center(cx, cy)
			values[cx][cy] = MarkingDifficultyAt(thrower, Point{X: x, Y: y}, st.Field, st.Disc, p)
		}
	}
	return values, thrower, true
}

// CoverageLayer classifies every cell as covered, semi-covered or open.
func CoverageLayer(st *State, g Grid, p LayerParams) [][]float64 {
	off, def := coverageSides(st)
	values := g.newLayer()
	for cx := range values {
		for cy := range values[cx] {
			x, y := g.Center(cx, cy)
			values[cx][cy] = coverageAt(x, y, off, def, st.Disc, p.CoverageHandicap)
		}
	}
	return values
}

type layer struct {
	key    string
	values [][]float64
}

// CalculateHeatMap builds the combined heat map for the enabled layers. It
// returns nil when no layer is on, or when the marking layer is on and nobody
// holds the disc.
func CalculateHeatMap(st *State, cfg HeatMapConfig) *HeatMapData {
	if st == nil || !cfg.Modes.Any() {
		return nil
	}
	p := cfg.Params.withDefaults()
	g := NewGrid(st.Field, cfg.GridSize)

	out := &HeatMapData{GridSize: g.Size, ThrowerX: st.Disc.X, ThrowerY: st.Disc.Y}
	var layers []layer
	if cfg.Modes.Catch {
		layers = append(layers, layer{LayerCatch, CatchLayer(st, g, p)})
	}
	if cfg.Modes.Difficulty {
		layers = append(layers, layer{LayerDifficulty, DifficultyLayer(st, g, p)})
	}
	if cfg.Modes.MarkingDifficulty {
		values, thrower, ok := MarkingDifficultyLayer(st, g, p)
		if !ok {
			return nil
		}
		out.ThrowerX, out.ThrowerY = thrower.X, thrower.Y
		layers = append(layers, layer{LayerMarkingDifficulty, values})
	}
	if cfg.Modes.Coverage {
		layers = append(layers, layer{LayerCoverage, CoverageLayer(st, g, p)})
	}

	out.Mode = layers[0].key
	if len(layers) > 1 {
		out.Mode = LayerCombined
	}
	out.Values = combine(g, layers)
	if cfg.Normalize {
		normalize(out.Values)
	}
	return out
}

// combine multiplies layers cell by cell, inverting difficulty.
func combine(g Grid, layers []layer) [][]float64 {
	values := g.newLayer()
	for cx := range values {
		for cy := range values[cx] {
			product := 1.0
			for _, l := range layers {
				v := l.values[cx][cy]
				if l.key == LayerDifficulty {
					v = 1 - v
				}
				product *= v
			}
			values[cx][cy] = product
		}
	}
	return values
}

// normalize rescales in place to [0,1]; a flat grid is left untouched.
func normalize(values [][]float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, col := range values {
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	if !(span > 0) {
		return
	}
	for _, col := range values {
		for i := range col {
			col[i] = (col[i] - lo) / span
		}
	}
}

// baseLayers is the defender-independent part of the four-layer product:
// catch * (1 - difficulty) * marking, per cell.
func baseLayers(st *State, g Grid, p LayerParams) ([][]float64, bool) {
	mark, _, ok := MarkingDifficultyLayer(st, g, p)
	if !ok {
		return nil, false
	}
	catch := CatchLayer(st, g, p)
	diff := DifficultyLayer(st, g, p)
	base := g.newLayer()
	for cx := range base {
		for cy := range base[cx] {
			base[cx][cy] = catch[cx][cy] * (1 - diff[cx][cy]) * mark[cx][cy]
		}
	}
	return base, true
}

// sumWithCoverage totals base*coverage over the grid.
func sumWithCoverage(base, cov [][]float64) float64 {
	sum := 0.0
	for cx := range base {
		for cy := range base[cx] {
			sum += base[cx][cy] * cov[cx][cy]
		}
	}
	return sum
}

// CombinedSum is the grid total of the pre-normalization four-layer product.
// ok is false without a thrower.
func CombinedSum(st *State, gridSize float64, p LayerParams) (float64, bool) {
	p = p.withDefaults()
	g := NewGrid(st.Field, gridSize)
	base, ok := baseLayers(st, g, p)
	if !ok {
		return 0, false
	}
	return sumWithCoverage(base, CoverageLayer(st, g, p)), true
}
