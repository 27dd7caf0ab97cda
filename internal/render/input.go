package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/Field-Sense/internal/game"
)

// layerKeys maps 1-4 to the heat-map layers.
var layerKeys = []struct {
	key   ebiten.Key
	layer string
}{
	{ebiten.Key1, game.LayerCatch},
	{ebiten.Key2, game.LayerDifficulty},
	{ebiten.Key3, game.LayerMarkingDifficulty},
	{ebiten.Key4, game.LayerCoverage},
}

// keyActions are the single-press bindings besides the layer keys.
func (g *Game) keyActions() map[ebiten.Key]func() {
	return map[ebiten.Key]func(){
		ebiten.KeyN:   g.toggleNormalize,
		ebiten.KeyP:   g.togglePause,
		ebiten.KeyH:   func() { g.showHUD = !g.showHUD },
		ebiten.KeyD:   func() { g.runOptimizer(optDefender) },
		ebiten.KeyO:   func() { g.runOptimizer(optOffender) },
		ebiten.KeyS:   func() { g.runOptimizer(optStack) },
		ebiten.KeyX:   func() { g.runOptimizer(optSample) },
		ebiten.KeyC:   g.copyState,
		ebiten.KeyV:   g.pasteState,
		ebiten.KeyR:   g.captureTraining,
		ebiten.KeyE:   g.exportTraining,
		ebiten.KeyI:   g.importTraining,
		ebiten.KeyK:   func() { g.sim.Kinematic = !g.sim.Kinematic; g.setStatus("kinematics %s", onOff(g.sim.Kinematic)) },
		ebiten.KeyTab: func() { g.inspector.rawView = !g.inspector.rawView },
	}
}

func (g *Game) handleInput() {
	for _, lk := range layerKeys {
		if inpututil.IsKeyJustPressed(lk.key) {
			g.toggleLayer(lk.layer)
		}
	}
	for k, fn := range g.keyActions() {
		if inpututil.IsKeyJustPressed(k) {
			fn()
		}
	}

	mx, my := ebiten.CursorPosition()
	fx, fy := g.view.ToField(mx, my)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pressAt(fx, fy)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.dragTo(fx, fy)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.release()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			g.cutTo(fx, fy)
		} else {
			g.throwTo(fx, fy)
		}
	}
}
