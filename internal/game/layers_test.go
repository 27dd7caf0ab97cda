package game

import (
	"math"
	"math/rand"
	"testing"
)

func heldState(holderX, holderY float64) *State {
	st := NewState(DefaultField())
	st.AddPlayer(NewPlayer("o1", TeamOffense, holderX, holderY))
	st.AddPlayer(NewPlayer("d1", TeamDefense, holderX+3, holderY))
	if err := st.CatchDisc("o1"); err != nil {
		panic(err)
	}
	return st
}

func TestCatchValue_ScoringEndZoneIsOne(t *testing.T) {
	f := DefaultField()
	d := Disc{X: 80, Y: 15}
	p := DefaultLayerParams()
	for _, x := range []float64{0, 5, 19.5, 20} {
		for _, y := range []float64{0, 10, 20, 40} {
			if v := CatchValue(x, y, f, d, p); v != 1 {
				t.Fatalf("CatchValue(%.1f,%.1f) = %.3f, want 1", x, y, v)
			}
		}
	}
}

func TestCatchValue_ZeroAtOwnEndZone(t *testing.T) {
	f := DefaultField()
	d := Disc{X: 80, Y: 15}
	p := DefaultLayerParams()
	for _, x := range []float64{90, 95, 110} {
		if v := CatchValue(x, 20, f, d, p); v != 0 {
			t.Fatalf("CatchValue(%.1f,20) = %.3f, want 0", x, v)
		}
	}
}

func TestCatchValue_MonotoneAlongCenterline(t *testing.T) {
	f := DefaultField()
	d := Disc{X: 80, Y: 15}
	p := DefaultLayerParams()
	prev := math.Inf(1)
	for x := 0.0; x <= f.TotalLength; x += 0.25 {
		v := CatchValue(x, f.CenterY(), f, d, p)
		if v > prev {
			t.Fatalf("catch value rose from %.4f to %.4f at x=%.2f", prev, v, x)
		}
		prev = v
	}
}

func TestCatchValue_SidelineIsZero(t *testing.T) {
	f := DefaultField()
	p := DefaultLayerParams()
	d := Disc{X: 80, Y: 15}
	for _, y := range []float64{0, 40} {
		if v := CatchValue(50, y, f, d, p); !approx(v, 0, 1e-12) {
			t.Fatalf("CatchValue(50,%.0f) = %.4f, want 0", y, v)
		}
	}
	center := CatchValue(50, 20, f, d, p)
	quarter := CatchValue(50, 10, f, d, p)
	if quarter >= center {
		t.Fatalf("off-center value %.3f should be below center %.3f", quarter, center)
	}
}

func TestCatchValue_DiscPositionBoundary(t *testing.T) {
	f := DefaultField()
	p := DefaultLayerParams()
	p.CatchBoundary = BoundaryDiscPosition
	d := Disc{X: 60, Y: 20}
	if v := CatchValue(60, 20, f, d, p); v != 0 {
		t.Fatalf("at the disc line: got %.3f, want 0", v)
	}
	if v := CatchValue(75, 20, f, d, p); v != 0 {
		t.Fatalf("behind the disc: got %.3f, want 0", v)
	}
	if v := CatchValue(40, 20, f, d, p); !approx(v, 0.5, 1e-12) {
		t.Fatalf("halfway to the end zone: got %.4f, want 0.5", v)
	}
}

func TestCatchValue_ShortPassRamp(t *testing.T) {
	f := DefaultField()
	p := DefaultLayerParams()
	p.ShortPassYards = 5
	d := Disc{X: 50, Y: 20}
	near := CatchValue(49, 20, f, d, p)
	far := CatchValue(44, 20, f, d, p)
	if near >= far {
		t.Fatalf("short pass %.4f should be worth less than a 6-yard pass %.4f", near, far)
	}
	if v := CatchValue(50, 20, f, d, p); v != 0 {
		t.Fatalf("zero-length pass: got %.4f, want 0", v)
	}
}

func TestCatchValue_ScenarioThrowerAt80(t *testing.T) {
	st := heldState(80, 15)
	p := DefaultLayerParams()
	deep := CatchValue(20, 20, st.Field, st.Disc, p)
	if deep < 0.8 {
		t.Fatalf("deep target value %.3f, want upper range", deep)
	}
	back := CatchValue(105, 15, st.Field, st.Disc, p)
	if back > 0.05 {
		t.Fatalf("own end zone value %.3f, want near 0", back)
	}
}

func TestDifficultyAt_Linear(t *testing.T) {
	p := DefaultLayerParams()
	d := Disc{X: 10, Y: 10}
	cases := []struct {
		x, y, want float64
	}{
		{10, 10, 0},
		{50, 10, 0.5},
		{90, 10, 1},
		{10, 50, 0.5},
	}
	for _, c := range cases {
		if got := DifficultyAt(c.x, c.y, d, p); !approx(got, c.want, 1e-12) {
			t.Errorf("DifficultyAt(%.0f,%.0f) = %.4f, want %.4f", c.x, c.y, got, c.want)
		}
	}
}

func TestEaseAt_AlongMarkRayIsZero(t *testing.T) {
	thrower := Point{X: 50, Y: 20}
	ref := Point{X: 0, Y: 40}
	for _, frac := range []float64{0.1, 0.5, 1, 1.5} {
		target := Point{X: thrower.X + frac*(ref.X-thrower.X), Y: thrower.Y + frac*(ref.Y-thrower.Y)}
		if e := EaseAt(thrower, target, ref, math.Pi/2); !approx(e, 0, 1e-9) {
			t.Fatalf("ease on the mark ray (frac %.1f) = %.6f, want 0", frac, e)
		}
	}
}

func TestEaseAt_BeyondCutoffIsOne(t *testing.T) {
	thrower := Point{X: 50, Y: 20}
	ref := Point{X: 0, Y: 40}
	// Opposite the mark, and well off to the side.
	for _, target := range []Point{{X: 100, Y: 0}, {X: 80, Y: 40}, {X: 60, Y: 0}} {
		if e := EaseAt(thrower, target, ref, math.Pi/2); e != 1 {
			t.Fatalf("ease at (%.0f,%.0f) = %.4f, want 1", target.X, target.Y, e)
		}
	}
}

func TestEaseAt_LinearRamp(t *testing.T) {
	thrower := Point{X: 50, Y: 20}
	ref := Point{X: 0, Y: 20}
	// 45 degrees off a mark pointing at -x.
	target := Point{X: 40, Y: 30}
	if e := EaseAt(thrower, target, ref, math.Pi/2); !approx(e, 0.5, 1e-9) {
		t.Fatalf("ease at 45deg with 90deg cutoff = %.6f, want 0.5", e)
	}
	if e := EaseAt(thrower, target, ref, math.Pi/4); !approx(e, 1, 1e-9) {
		t.Fatalf("ease at 45deg with 45deg cutoff = %.6f, want 1", e)
	}
}

func TestEaseAt_DegenerateVectors(t *testing.T) {
	ref := Point{X: 0, Y: 40}
	if e := EaseAt(ref, Point{X: 30, Y: 10}, ref, math.Pi/2); e != 1 {
		t.Fatalf("thrower on the reference point: ease %.3f, want 1", e)
	}
	thrower := Point{X: 50, Y: 20}
	if e := EaseAt(thrower, thrower, ref, math.Pi/2); e != 0 {
		t.Fatalf("target on the thrower: ease %.3f, want 0", e)
	}
}

func TestMarkingDifficultyAt_DistanceFalloff(t *testing.T) {
	f := DefaultField()
	p := DefaultLayerParams()
	thrower := Point{X: 100, Y: 0}
	d := Disc{X: thrower.X, Y: thrower.Y}
	// Straight along the mark ray toward (0,40): hard near, free past 180 yards.
	near := MarkingDifficultyAt(thrower, Point{X: 90, Y: 4}, f, d, p)
	if near > 0.1 {
		t.Fatalf("near throw into the mark = %.3f, want close to 0", near)
	}
	far := MarkingDifficultyAt(thrower, Point{X: 0, Y: 40}, f, d, p)
	if far <= near {
		t.Fatalf("far throw %.3f should be easier than near %.3f", far, near)
	}
}

func TestScalarFields_InUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := DefaultField()
	p := DefaultLayerParams()
	for i := 0; i < 500; i++ {
		d := Disc{X: rng.Float64() * f.TotalLength, Y: rng.Float64() * f.FieldWidth}
		thrower := Point{X: d.X, Y: d.Y}
		x, y := rng.Float64()*f.TotalLength, rng.Float64()*f.FieldWidth
		target := Point{X: x, Y: y}
		for name, v := range map[string]float64{
			"catch":   CatchValue(x, y, f, d, p),
			"ease":    EaseAt(thrower, target, p.markReference(f), p.MarkCutoff),
			"marking": MarkingDifficultyAt(thrower, target, f, d, p),
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("%s at (%.2f,%.2f) = %v, outside [0,1]", name, x, y, v)
			}
		}
		if v := DifficultyAt(x, y, d, p); v < 0 || v > math.Hypot(f.TotalLength, f.FieldWidth)/80 {
			t.Fatalf("difficulty %v outside its raw range", v)
		}
	}
}

func TestCoverageAt_DefenderOnCell(t *testing.T) {
	st := heldState(80, 15)
	st.AddPlayer(NewPlayer("o2", TeamOffense, 10, 5))
	st.AddPlayer(NewPlayer("d2", TeamDefense, 50.5, 20.5))
	if v := CoverageAt(50.5, 20.5, st, DefaultLayerParams()); v != CoverageCovered {
		t.Fatalf("coverage under a defender = %.1f, want 0", v)
	}
}

func TestCoverageAt_NoDefendersIsOpen(t *testing.T) {
	st := NewState(DefaultField())
	st.AddPlayer(NewPlayer("o1", TeamOffense, 50, 20))
	if v := CoverageAt(60, 20, st, DefaultLayerParams()); v != CoverageOpen {
		t.Fatalf("coverage without defenders = %.1f, want 1", v)
	}
}

func TestCoverageAt_NobodyDownfieldIsCovered(t *testing.T) {
	// Only the thrower and its mark: neither counts, both distances are infinite.
	st := heldState(80, 15)
	if v := CoverageAt(60, 20, st, DefaultLayerParams()); v != CoverageCovered {
		t.Fatalf("coverage with nobody downfield = %.1f, want 0", v)
	}
	st2 := NewState(DefaultField())
	if v := CoverageAt(10, 10, st2, DefaultLayerParams()); v != CoverageCovered {
		t.Fatalf("coverage on an empty field = %.1f, want 0", v)
	}
}

func TestCoverageAt_Handicap(t *testing.T) {
	st := NewState(DefaultField())
	st.Disc = Disc{X: 100, Y: 20}
	st.AddPlayer(NewPlayer("o1", TeamOffense, 52, 20))
	st.AddPlayer(NewPlayer("d1", TeamDefense, 49, 20))
	p := DefaultLayerParams()
	if v := CoverageAt(50, 20, st, p); v != CoverageCovered {
		t.Fatalf("without handicap: %.1f, want 0", v)
	}
	p.CoverageHandicap = 2
	// Defender now reads 3 yards away: offender closer, but within half the throw.
	if v := CoverageAt(50, 20, st, p); v != CoverageSemi {
		t.Fatalf("with handicap: %.1f, want 0.5", v)
	}
}

func TestCoverageLayer_ValuesAreDiscrete(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	st := heldState(70, 20)
	for i := 0; i < 6; i++ {
		team := TeamOffense
		if i%2 == 1 {
			team = TeamDefense
		}
		st.AddPlayer(NewPlayer(string(rune('a'+i)), team, rng.Float64()*110, rng.Float64()*40))
	}
	g := NewGrid(st.Field, 1)
	for _, col := range CoverageLayer(st, g, DefaultLayerParams()) {
		for _, v := range col {
			if v != 0 && v != 0.5 && v != 1 {
				t.Fatalf("coverage value %v not in {0, 0.5, 1}", v)
			}
		}
	}
}

func TestParseCatchBoundary(t *testing.T) {
	for _, b := range []CatchBoundary{BoundaryOwnEndZone, BoundaryDiscPosition} {
		got, err := ParseCatchBoundary(b.String())
		if err != nil || got != b {
			t.Fatalf("ParseCatchBoundary(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseCatchBoundary("midfield"); err == nil {
		t.Fatal("expected error for unknown boundary")
	}
}
