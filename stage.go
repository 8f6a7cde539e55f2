package liquidglass

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// BackdropFunc draws the scene behind the glass into dst.
type BackdropFunc func(dst *ebiten.Image)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Stage owns a backdrop and the interactive components drawn over it:
// glass panels and sliders. It routes pointer input and advances animations.
type Stage struct {
	// ClearColor fills the screen before the backdrop. Transparent skips it.
	ClearColor Color
	// Backdrop is drawn every frame. Ignored when BackdropFunc is set.
	Backdrop *ebiten.Image
	// BackdropFunc renders the backdrop into a cached texture. It runs on
	// the first frame, after InvalidateBackdrop and when the screen resizes.
	BackdropFunc BackdropFunc
	// ScreenshotDir is where Screenshot writes PNGs.
	ScreenshotDir string

	components    []Interactive
	sorted        bool
	backdrop      *RenderTexture
	backdropDirty bool
	updateFunc    func() error
	debug         bool
	fps           *fpsWidget
	imgOp         ebiten.DrawImageOptions

	// Input state
	captured     [maxPointers]Interactive
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	pollDevices  bool
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID

	// Scripted runs
	testRunner      *TestRunner
	injectQueue     []syntheticPointerEvent
	screenshotQueue []string
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{
		ScreenshotDir: "screenshots",
		dragDeadZone:  defaultDragDeadZone,
		pollDevices:   true,
		backdropDirty: true,
	}
}

// Add appends a component. Components with equal ZIndex draw in the order
// they were added.
func (s *Stage) Add(c Interactive) {
	if c == nil {
		panic("liquidglass: cannot add nil component")
	}
	for _, existing := range s.components {
		if existing == c {
			panic("liquidglass: component already on stage")
		}
	}
	s.components = append(s.components, c)
	s.sorted = false
}

// Remove detaches c. Pointer state referring to it is cleared.
func (s *Stage) Remove(c Interactive) {
	for i, existing := range s.components {
		if existing != c {
			continue
		}
		s.components = append(s.components[:i], s.components[i+1:]...)
		for p := range s.pointers {
			ps := &s.pointers[p]
			if ps.hit == c {
				ps.hit = nil
				ps.dragging = false
			}
			if ps.hover == c {
				ps.hover = nil
			}
			if s.captured[p] == c {
				s.captured[p] = nil
			}
		}
		return
	}
}

// Components returns the stage's components in draw order. The returned
// slice MUST NOT be mutated.
func (s *Stage) Components() []Interactive {
	s.sortComponents()
	return s.components
}

// Panels returns the glass panels on the stage in draw order.
func (s *Stage) Panels() []*Panel {
	s.sortComponents()
	var out []*Panel
	for _, c := range s.components {
		if p, ok := c.(*Panel); ok {
			out = append(out, p)
		}
	}
	return out
}

// PanelByName returns the first panel with the given name, or nil.
func (s *Stage) PanelByName(name string) *Panel {
	for _, c := range s.components {
		if p, ok := c.(*Panel); ok && p.Name == name {
			return p
		}
	}
	return nil
}

// SetUpdateFunc sets a callback run at the start of every Update. A non-nil
// error stops Run.
func (s *Stage) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// InvalidateBackdrop makes the next Draw re-run BackdropFunc.
func (s *Stage) InvalidateBackdrop() {
	s.backdropDirty = true
}

// SetDebugMode enables or disables debug logging of per-frame timings,
// pointer events and component counts.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Update advances the stage by one tick at the current TPS.
func (s *Stage) Update() {
	s.step(TickDuration(ebiten.TPS()))
}

// step runs one frame with a fixed dt. Split out from Update so tests can
// drive the stage without a running game loop.
func (s *Stage) step(dt float64) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()

	s.sortComponents()
	for _, c := range s.components {
		c.Update(dt)
	}
	s.pruneClosedPanels()
	s.fps.update(dt)

	if s.debug {
		s.debugLogUpdate(time.Since(t0))
	}
}

// pruneClosedPanels removes panels whose exit animation has finished.
func (s *Stage) pruneClosedPanels() {
	for i := 0; i < len(s.components); i++ {
		p, ok := s.components[i].(*Panel)
		if !ok || !p.Removable() {
			continue
		}
		s.Remove(p)
		p.Dispose()
		i--
	}
}

func (s *Stage) renderBackdrop(w, h int) *ebiten.Image {
	if s.backdrop == nil {
		s.backdrop = NewRenderTexture(w, h)
		s.backdropDirty = true
	} else if s.backdrop.Width() != w || s.backdrop.Height() != h {
		s.backdrop.Resize(w, h)
		s.backdropDirty = true
	}
	if s.backdropDirty {
		s.backdrop.Clear()
		s.BackdropFunc(s.backdrop.Image())
		s.backdropDirty = false
	}
	return s.backdrop.Image()
}

// Draw renders the backdrop and then every component in ZIndex order. Each
// glass panel refracts everything drawn before it.
func (s *Stage) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.RGBA())
	}

	var bg *ebiten.Image
	if s.BackdropFunc != nil {
		b := screen.Bounds()
		bg = s.renderBackdrop(b.Dx(), b.Dy())
	} else {
		bg = s.Backdrop
	}
	if bg != nil {
		s.imgOp.GeoM.Reset()
		s.imgOp.ColorScale.Reset()
		screen.DrawImage(bg, &s.imgOp)
	}

	s.sortComponents()
	for _, c := range s.components {
		c.Draw(screen, screen)
	}

	s.fps.draw(screen)

	if s.debug {
		s.debugLogDraw(time.Since(t0))
	}
	s.flushScreenshots(screen)
}

// Dispose releases the backdrop texture and every component's GPU resources.
func (s *Stage) Dispose() {
	if s.backdrop != nil {
		s.backdrop.Dispose()
		s.backdrop = nil
	}
	for _, c := range s.components {
		if d, ok := c.(interface{ Dispose() }); ok {
			d.Dispose()
		}
	}
}

// game adapts a Stage to ebiten.Game.
type game struct {
	stage *Stage
	w, h  int
}

func (g *game) Update() error {
	if g.stage.updateFunc != nil {
		if err := g.stage.updateFunc(); err != nil {
			return err
		}
	}
	g.stage.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) { g.stage.Draw(screen) }

func (g *game) Layout(int, int) (int, int) { return g.w, g.h }

// Run opens a window and runs stage until the window closes or the update
// func returns an error.
func Run(stage *Stage, cfg RunConfig) error {
	w, h := max(cfg.Width, 1), max(cfg.Height, 1)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.ShowFPS {
		stage.fps = newFPSWidget()
	}
	return ebiten.RunGame(&game{stage: stage, w: w, h: h})
}
