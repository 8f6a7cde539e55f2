package liquidglass

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsWidget shows the current FPS and TPS in the top-left corner. The text
// is redrawn about every 0.5 seconds.
type fpsWidget struct {
	img        *ebiten.Image
	lastUpdate float64
	dirty      bool
}

func newFPSWidget() *fpsWidget {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsWidget{img: ebiten.NewImage(100, 32), dirty: true}
}

func (w *fpsWidget) update(dt float64) {
	if w == nil {
		return
	}
	w.lastUpdate += dt
	if w.lastUpdate >= 0.5 {
		w.lastUpdate = 0
		w.dirty = true
	}
}

func (w *fpsWidget) draw(screen *ebiten.Image) {
	if w == nil {
		return
	}
	if w.dirty {
		w.dirty = false
		w.img.Clear()
		w.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(w.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(w.img, nil)
}
