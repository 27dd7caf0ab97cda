package game

import (
	"errors"
	"fmt"
	"math"
)

// Standard ultimate field in yards.
const (
	DefaultFieldLength  = 70.0
	DefaultFieldWidth   = 40.0
	DefaultEndZoneDepth = 20.0
)

// DefaultGridSize is the heat-map resolution in yards per cell.
const DefaultGridSize = 1.0

// Limits on snapshots accepted from outside the process.
const (
	MinGridSize   = 0.25
	MaxFieldYards = 200.0
	MaxGridCells  = 1_000_000
)

// ErrInvalidGrid is returned for a grid too fine for its field.
var ErrInvalidGrid = errors.New("invalid grid size")

// Field is the immutable playing-area configuration.
//
// x runs along the length, 0..TotalLength, and the offense scores at low x.
// y runs across the width, 0..FieldWidth.
type Field struct {
	FieldLength  float64 `json:"fieldLength"`
	FieldWidth   float64 `json:"fieldWidth"`
	EndZoneDepth float64 `json:"endZoneDepth"`
	TotalLength  float64 `json:"totalLength"`
}

// NewField builds a field, deriving TotalLength from the playing proper and
// both end zones.
func NewField(length, width, endZoneDepth float64) Field {
	return Field{
		FieldLength:  length,
		FieldWidth:   width,
		EndZoneDepth: endZoneDepth,
		TotalLength:  length + 2*endZoneDepth,
	}
}

// DefaultField returns the regulation 70x40 field with 20-yard end zones.
func DefaultField() Field {
	return NewField(DefaultFieldLength, DefaultFieldWidth, DefaultEndZoneDepth)
}

// normalized fills TotalLength for snapshots that omitted it.
func (f Field) normalized() Field {
	if f.TotalLength <= 0 {
		f.TotalLength = f.FieldLength + 2*f.EndZoneDepth
	}
	return f
}

// OwnEndZoneLine is the x where the defended end zone begins.
func (f Field) OwnEndZoneLine() float64 {
	return f.TotalLength - f.EndZoneDepth
}

// CenterY is the width centerline.
func (f Field) CenterY() float64 {
	return f.FieldWidth / 2
}

// Clamp pulls a point into [0,TotalLength] x [0,FieldWidth].
func (f Field) Clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, f.TotalLength), clamp(y, 0, f.FieldWidth)
}

// Contains reports whether the point lies on the field, end zones included.
func (f Field) Contains(x, y float64) bool {
	return x >= 0 && x <= f.TotalLength && y >= 0 && y <= f.FieldWidth
}

// Point is a field position in yards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Grid is the discretisation of a field into square cells of Size yards.
// Cells are indexed [cellX][cellY] and evaluated at their centers.
type Grid struct {
	Size   float64
	CellsX int
	CellsY int
}

// NewGrid covers the whole field; a non-positive size falls back to
// DefaultGridSize.
func NewGrid(f Field, size float64) Grid {
	if size <= 0 || math.IsNaN(size) {
		size = DefaultGridSize
	}
	f = f.normalized()
	return Grid{
		Size:   size,
		CellsX: int(math.Ceil(f.TotalLength / size)),
		CellsY: int(math.Ceil(f.FieldWidth / size)),
	}
}

// ValidateGrid rejects resolutions below MinGridSize and grids over
// MaxGridCells. A non-positive size means DefaultGridSize.
func ValidateGrid(f Field, size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidGrid, size)
	}
	if size > 0 && size < MinGridSize {
		return fmt.Errorf("%w: %g yd is below the %g yd minimum", ErrInvalidGrid, size, MinGridSize)
	}
	if n := NewGrid(f, size).Cells(); n > MaxGridCells || n < 0 {
		return fmt.Errorf("%w: %d cells exceeds %d", ErrInvalidGrid, n, MaxGridCells)
	}
	return nil
}

// Center returns the field coordinates of a cell center.
func (g Grid) Center(cx, cy int) (float64, float64) {
	return float64(cx)*g.Size + g.Size/2, float64(cy)*g.Size + g.Size/2
}

// Cells is the total number of cells.
func (g Grid) Cells() int {
	return g.CellsX * g.CellsY
}

// CellAt maps a field point to its cell; ok is false off-grid.
func (g Grid) CellAt(x, y float64) (cx, cy int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	cx = int(x / g.Size)
	cy = int(y / g.Size)
	if cx >= g.CellsX || cy >= g.CellsY {
		return 0, 0, false
	}
	return cx, cy, true
}

func (g Grid) newLayer() [][]float64 {
	values := make([][]float64, g.CellsX)
	backing := make([]float64, g.CellsX*g.CellsY)
	for x := range values {
		values[x] = backing[x*g.CellsY : (x+1)*g.CellsY : (x+1)*g.CellsY]
	}
	return values
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func dist(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return math.Sqrt(dx*dx + dy*dy)
}

func sqr(v float64) float64 {
	return v * v
}
