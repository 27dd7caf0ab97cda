package main

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Field-Sense/internal/game"
)

func newTestTUI(t *testing.T) (*tui, tcell.SimulationScreen, *int) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(110, 42)
	cues := 0
	sim := game.NewSimulation(game.VerticalStack(game.DefaultField(), 3, 20))
	return newTUI(screen, sim, func() { cues++ }), screen, &cues
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestTUI_DrawsPlayers(t *testing.T) {
	ui, screen, _ := newTestTUI(t)
	ui.step(0)
	ui.draw()

	holder := ui.sim.State.Holder()
	c, r := ui.toCell(holder.X, holder.Y)
	if got := runeAt(screen, c, r); got != '@' {
		t.Fatalf("holder cell shows %q, want '@'", got)
	}
	m := ui.sim.State.Mark()
	c, r = ui.toCell(m.X, m.Y)
	if got := runeAt(screen, c, r); got != 'M' {
		t.Fatalf("mark cell shows %q, want 'M'", got)
	}
	if got := runeAt(screen, 0, 40); got != 't' {
		t.Fatalf("status line starts with %q, want 't'", got)
	}
}

func TestTUI_CellMapping(t *testing.T) {
	ui, _, _ := newTestTUI(t)
	// 110 columns over 110 yards, 40 field rows over 40 yards.
	if c, r := ui.toCell(55.2, 20.7); c != 55 || r != 20 {
		t.Fatalf("toCell = (%d,%d), want (55,20)", c, r)
	}
	if c, r := ui.toCell(500, -3); c != 109 || r != 0 {
		t.Fatalf("out-of-field point should clamp, got (%d,%d)", c, r)
	}
	if x, y := ui.toField(55, 20); math.Abs(x-55.5) > 1e-9 || math.Abs(y-20.5) > 1e-9 {
		t.Fatalf("toField = (%v,%v), want (55.5,20.5)", x, y)
	}
}

func TestTUI_KeysToggleLayersAndQuit(t *testing.T) {
	ui, _, _ := newTestTUI(t)
	ui.step(0)
	if ui.heat != nil {
		t.Fatal("no layers, no heat")
	}
	if !ui.handleKey(tcell.NewEventKey(tcell.KeyRune, '1', tcell.ModNone)) {
		t.Fatal("layer key should not quit")
	}
	ui.step(0)
	if ui.heat == nil || ui.heat.Mode != game.LayerCatch {
		t.Fatalf("expected a catch map, got %+v", ui.heat)
	}
	ui.handleKey(tcell.NewEventKey(tcell.KeyRune, '4', tcell.ModNone))
	ui.step(0)
	if ui.heat.Mode != game.LayerCombined {
		t.Fatalf("two layers should combine, got %s", ui.heat.Mode)
	}
	ui.handleKey(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	if !ui.paused {
		t.Fatal("p should pause")
	}
	if ui.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q should quit")
	}
	if ui.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("escape should quit")
	}
}

func TestTUI_ThrowCompletesWithCue(t *testing.T) {
	ui, _, cues := newTestTUI(t)
	ui.handleKey(tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone))
	if !ui.sim.State.Disc.InFlight {
		t.Fatal("t should throw to the stack")
	}
	for i := 0; i < 600 && ui.sim.State.Disc.InFlight; i++ {
		ui.step(game.DefaultTickDT)
	}
	if h := ui.sim.State.Holder(); h == nil || h.ID != "o2" {
		t.Fatalf("holder after the throw = %v, want o2", h)
	}
	if *cues != 1 {
		t.Fatalf("cues = %d, want 1", *cues)
	}
}

func TestHeatStyle_Ends(t *testing.T) {
	bg := func(s tcell.Style) tcell.Color {
		_, b, _ := s.Decompose()
		return b
	}
	if bg(heatStyle(0, 0, 1)) != tcell.NewRGBColor(30, 40, 160) {
		t.Fatal("low end should be the coldest color")
	}
	if bg(heatStyle(9, 0, 1)) != tcell.NewRGBColor(230, 60, 30) {
		t.Fatal("values above the range should clamp to the hottest color")
	}
	if bg(heatStyle(2, 2, 2)) != tcell.NewRGBColor(80, 200, 60) {
		t.Fatal("a flat map should sit mid-ramp")
	}
}

func TestTUI_RunStopsPollerAfterQuit(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(110, 42)
	ui := newTUI(screen, game.NewSimulation(game.VerticalStack(game.DefaultField(), 3, 20)), nil)

	returned := make(chan struct{})
	go func() {
		ui.run(time.Millisecond)
		close(returned)
	}()
	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return on q")
	}

	// More events than the loop's buffer holds arrive after the loop is gone.
	for i := 0; i < 150; i++ {
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	}
	time.Sleep(20 * time.Millisecond)
	screen.Fini()
	select {
	case <-ui.pollDone:
	case <-time.After(2 * time.Second):
		t.Fatal("event goroutine still blocked after the loop exited")
	}
}
