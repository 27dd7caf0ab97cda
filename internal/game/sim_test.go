package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSimulation_PlayerAtScansTopmostFirst(t *testing.T) {
	st := NewState(DefaultField())
	st.AddPlayer(NewPlayer("under", TeamOffense, 50, 20))
	st.AddPlayer(NewPlayer("over", TeamDefense, 51, 20))
	sim := NewSimulation(st)

	if p := sim.PlayerAt(50.5, 20); p == nil || p.ID != "over" {
		t.Fatalf("PlayerAt overlap = %v, want the last-drawn player", p)
	}
	if p := sim.PlayerAt(48.2, 20); p == nil || p.ID != "under" {
		t.Fatalf("PlayerAt near first = %v, want under", p)
	}
	if p := sim.PlayerAt(10, 10); p != nil {
		t.Fatalf("PlayerAt empty space = %v, want nil", p)
	}
}

func TestSimulation_SelectPlayer(t *testing.T) {
	sim := NewSimulation(playState())
	if err := sim.SelectPlayer("o2"); err != nil {
		t.Fatal(err)
	}
	if s := sim.Selected(); s == nil || s.ID != "o2" {
		t.Fatalf("selected %v, want o2", s)
	}
	if err := sim.SelectPlayer("nope"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("got %v, want ErrUnknownPlayer", err)
	}
	if err := sim.SelectPlayer(""); err != nil || sim.Selected() != nil {
		t.Fatal("empty id should clear the selection")
	}
}

func TestSimulation_VersionTracksChanges(t *testing.T) {
	sim := NewSimulation(playState())
	v0 := sim.Version()
	sim.Update(testDT) // nothing moving
	if sim.Version() != v0 {
		t.Fatal("an idle tick must not bump the version")
	}
	if err := sim.MovePlayerTo("o2", 40, 10); err != nil {
		t.Fatal(err)
	}
	v1 := sim.Version()
	if v1 <= v0 {
		t.Fatal("a move must bump the version")
	}
	sim.SetModes(Modes{Catch: true})
	if sim.Version() <= v1 {
		t.Fatal("a mode change must bump the version")
	}
	v2 := sim.Version()
	sim.ThrowDisc(40, 20, DefaultThrowSpeed)
	sim.Update(testDT)
	if sim.Version() <= v2+1 {
		t.Fatal("throw plus a flight tick should bump the version twice")
	}
}

func TestSimulation_EventsStamped(t *testing.T) {
	sim := NewSimulation(playState())
	var events []Event
	sim.OnEvent = func(e Event) { events = append(events, e) }
	sim.Update(testDT)
	sim.Update(testDT)
	if !sim.ThrowDisc(60, 20, DefaultThrowSpeed) {
		t.Fatal("throw failed")
	}
	if len(events) != 1 || events[0].Kind != EventThrow || events[0].Tick != 2 || events[0].PlayerID != "o1" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestSimulation_OptimizersMovePlayers(t *testing.T) {
	sim := NewSimulation(playState())
	pt, ok := sim.PositionStack()
	if !ok {
		t.Fatal("stack unavailable")
	}
	if o := sim.State.Player("o2"); o.X != pt.X || o.Y != pt.Y {
		t.Fatalf("offender at (%.1f,%.1f), want stack (%.1f,%.1f)", o.X, o.Y, pt.X, pt.Y)
	}

	pt, ok = sim.PositionDefender("1")
	if !ok {
		t.Fatal("defender placement unavailable")
	}
	if d := sim.State.Player("d2"); d.X != pt.X || d.Y != pt.Y {
		t.Fatalf("defender at (%.1f,%.1f), want (%.1f,%.1f)", d.X, d.Y, pt.X, pt.Y)
	}

	pt, ok = sim.SampleOffender("", rand.New(rand.NewSource(5)))
	if !ok {
		t.Fatal("sampling unavailable")
	}
	if o := sim.State.Player("o2"); o.X != pt.X || o.Y != pt.Y {
		t.Fatal("sampled position not applied")
	}
}

func TestSimulation_SetStateRejectsInvalid(t *testing.T) {
	sim := NewSimulation(playState())
	bad := playState()
	bad.Players[1].HasDisc = true
	if err := sim.SetState(bad); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
	if sim.State.Players[1].HasDisc {
		t.Fatal("rejected state must not be applied")
	}
}

func TestSimulation_CalculateHeatMapUsesConfig(t *testing.T) {
	sim := NewSimulation(playState())
	if sim.CalculateHeatMap() != nil {
		t.Fatal("default config has no layers")
	}
	sim.SetModes(AllModes())
	sim.SetNormalize(false)
	hm := sim.CalculateHeatMap()
	if hm == nil || hm.Mode != LayerCombined {
		t.Fatalf("expected a combined map, got %+v", hm)
	}
	sum, _ := CombinedSum(sim.State, 1, DefaultLayerParams())
	total := 0.0
	for _, col := range hm.Values {
		for _, v := range col {
			total += v
		}
	}
	if !approx(sum, total, 1e-9) {
		t.Fatalf("unnormalized map total %.4f, sum %.4f", total, sum)
	}
}
