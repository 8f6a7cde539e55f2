package liquidglass

import (
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// Panel stacking order.
const (
	ZIndexDraggable = 100
	ZIndexStatic    = 10
)

// dragElastic is how much of an out-of-bounds drag the panel follows.
const dragElastic = 0.1

// panelIDCounter is a plain counter; panels are created on the game goroutine.
var panelIDCounter uint64

func nextPanelID() string {
	panelIDCounter++
	return "liquid-glass-filter-" + strconv.FormatUint(panelIDCounter, 10)
}

// Bool returns a pointer to v, for optional option fields.
func Bool(v bool) *bool { return &v }

// PanelOptions configures a new Panel.
type PanelOptions struct {
	// Name identifies the panel in test scripts. Optional.
	Name string
	// Draggable lets the pointer move the panel and enables the hover scale.
	Draggable bool
	// DragAnimation enables the elastic scale while dragging. nil means true.
	DragAnimation *bool
	// X and Y place the panel's top-left corner.
	X, Y float64
	// Bounds constrains dragging. Drags past the edge follow at 10% and
	// spring back on release. nil means unconstrained.
	Bounds *Rect
	// Enter animates the panel in from the exit state instead of appearing
	// at full size.
	Enter bool
}

// InteractionState is a snapshot of a panel's pointer state.
type InteractionState struct {
	Draggable     bool
	DragAnimation bool
	Direction     DragDirection
	Hovered       bool
	Dragging      bool
}

// Panel is one liquid glass instance: a rounded rect that refracts whatever
// is drawn behind it.
type Panel struct {
	Name   string
	X, Y   float64
	Bounds *Rect

	// OnDirectionChange is called when a drag locks onto an axis and again
	// with DirectionNone when the drag ends.
	OnDirectionChange func(DragDirection)

	// Filters run on the glass result before it is drawn, e.g. a tint.
	Filters []Filter

	id            string
	params        Params
	graph         Graph
	filter        *GlassFilter
	draggable     bool
	dragAnimation bool
	hovered       bool
	tracker       DragTracker
	originX       float64
	originY       float64
	snapX, snapY  *Spring
	scale         *Spring
	opacity       *Spring
	closed        bool

	region *ebiten.Image
	result *ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewPanel creates a panel rendering p.
func NewPanel(p Params, opts PanelOptions) *Panel {
	g := Synthesize(p)
	pn := &Panel{
		Name:          opts.Name,
		X:             opts.X,
		Y:             opts.Y,
		Bounds:        opts.Bounds,
		id:            nextPanelID(),
		params:        p,
		graph:         g,
		filter:        NewGlassFilter(g),
		draggable:     opts.Draggable,
		dragAnimation: opts.DragAnimation == nil || *opts.DragAnimation,
		scale:         NewSpring(EnterSpring, 1),
		opacity:       NewSpring(EnterSpring, 1),
	}
	if opts.Enter {
		pn.scale.Set(ExitScale)
		pn.scale.SetTarget(1)
		pn.opacity.Set(0)
		pn.opacity.SetTarget(1)
	}
	pn.tracker.OnDirectionLocked = func(d DragDirection) {
		if pn.OnDirectionChange != nil {
			pn.OnDirectionChange(d)
		}
	}
	return pn
}

// ID returns the panel's unique filter id.
func (p *Panel) ID() string { return p.id }

// Params returns the current parameters.
func (p *Panel) Params() Params { return p.params }

// SetParams replaces the parameters and regenerates the graph.
func (p *Panel) SetParams(params Params) {
	p.params = params
	p.graph = Synthesize(params)
	p.filter.SetGraph(p.graph)
}

// SetParam changes a single parameter.
func (p *Panel) SetParam(param Param, v float64) {
	p.SetParams(p.params.Set(param, v))
}

// Graph returns the current filter graph.
func (p *Panel) Graph() Graph { return p.graph }

// Width returns the panel width.
func (p *Panel) Width() float64 { return p.params.Width }

// Height returns the panel height.
func (p *Panel) Height() float64 { return p.params.Height }

// Draggable reports whether the pointer can move the panel.
func (p *Panel) Draggable() bool { return p.draggable }

// SetDraggable enables or disables dragging. Disabling it mid-drag ends
// the drag.
func (p *Panel) SetDraggable(v bool) {
	if !v && p.tracker.Dragging() {
		p.DragEnd()
	}
	p.draggable = v
}

// ZIndex returns the stacking order: draggable panels sit above static ones.
func (p *Panel) ZIndex() int {
	if p.draggable {
		return ZIndexDraggable
	}
	return ZIndexStatic
}

// Scale returns the current animated scale.
func (p *Panel) Scale() float64 { return p.scale.Value() }

// Opacity returns the current animated opacity.
func (p *Panel) Opacity() float64 { return p.opacity.Value() }

// State returns a snapshot of the interaction state.
func (p *Panel) State() InteractionState {
	return InteractionState{
		Draggable:     p.draggable,
		DragAnimation: p.dragAnimation,
		Direction:     p.tracker.Direction(),
		Hovered:       p.hovered,
		Dragging:      p.tracker.Dragging(),
	}
}

// PointerEnter marks the panel hovered.
func (p *Panel) PointerEnter() { p.hovered = true }

// PointerLeave clears the hover state.
func (p *Panel) PointerLeave() { p.hovered = false }

// DragStart begins a drag. Ignored unless the panel is draggable.
func (p *Panel) DragStart() {
	if !p.draggable || p.closed {
		return
	}
	p.snapX, p.snapY = nil, nil
	p.originX, p.originY = p.X, p.Y
	p.tracker.Start()
}

// Drag moves the panel by the cumulative offset from the drag start. The
// per-event delta is accepted for symmetry with pointer events; the position
// is derived from the offset so no drift accumulates.
func (p *Panel) Drag(offsetX, offsetY, deltaX, deltaY float64) {
	if !p.draggable || !p.tracker.Dragging() {
		return
	}
	p.tracker.Move(offsetX, offsetY)
	p.X, p.Y = p.constrain(p.originX+offsetX, p.originY+offsetY, dragElastic)
}

// DragEnd finishes a drag. A panel left outside its Bounds springs back.
func (p *Panel) DragEnd() {
	if !p.tracker.Dragging() {
		return
	}
	wasLocked := p.tracker.Direction() != DirectionNone
	p.tracker.End()
	if wasLocked && p.OnDirectionChange != nil {
		p.OnDirectionChange(DirectionNone)
	}
	tx, ty := p.constrain(p.X, p.Y, 0)
	if tx != p.X || ty != p.Y {
		p.snapX = NewSpring(DefaultSpring, p.X)
		p.snapX.SetTarget(tx)
		p.snapY = NewSpring(DefaultSpring, p.Y)
		p.snapY.SetTarget(ty)
	}
}

// constrain applies Bounds to a top-left position. Overshoot past an edge is
// scaled by elastic; 0 clamps.
func (p *Panel) constrain(x, y, elastic float64) (float64, float64) {
	b := p.Bounds
	if b == nil {
		return x, y
	}
	return elasticClamp(x, b.X, b.X+b.Width-p.params.Width, elastic),
		elasticClamp(y, b.Y, b.Y+b.Height-p.params.Height, elastic)
}

func elasticClamp(v, lo, hi, elastic float64) float64 {
	if hi < lo {
		hi = lo
	}
	switch {
	case v < lo:
		return lo + (v-lo)*elastic
	case v > hi:
		return hi + (v-hi)*elastic
	}
	return v
}

// HandlePointer routes a Stage pointer event to the panel hooks.
func (p *Panel) HandlePointer(e PointerEvent) {
	switch e.Type {
	case EventPointerEnter:
		p.PointerEnter()
	case EventPointerLeave:
		p.PointerLeave()
	case EventDragStart:
		p.DragStart()
	case EventDrag:
		p.Drag(e.OffsetX, e.OffsetY, e.DeltaX, e.DeltaY)
	case EventDragEnd:
		p.DragEnd()
	}
}

// scaleTransition picks the scale target for the current state. Drag wins
// over hover; both only apply to draggable panels.
func (p *Panel) scaleTransition() Transition {
	switch {
	case p.closed:
		return Transition{Scale: ExitScale, Spring: ExitSpring}
	case p.tracker.Dragging() && p.dragAnimation:
		return DragTransition(p.tracker.Direction())
	case p.draggable && p.hovered:
		return Transition{Scale: HoverScale, Spring: HoverSpring}
	}
	return Transition{Scale: 1, Spring: EnterSpring}
}

// Update advances the panel's springs by dt seconds.
func (p *Panel) Update(dt float64) {
	p.scale.Animate(p.scaleTransition())
	p.scale.Update(dt)

	if p.closed {
		p.opacity.Animate(Transition{Scale: 0, Spring: ExitSpring})
	} else {
		p.opacity.Animate(Transition{Scale: 1, Spring: EnterSpring})
	}
	p.opacity.Update(dt)

	if p.snapX != nil {
		p.X = p.snapX.Update(dt)
		p.Y = p.snapY.Update(dt)
		if p.snapX.Settled() && p.snapY.Settled() {
			p.snapX, p.snapY = nil, nil
		}
	}
}

// Close starts the exit animation. The panel stops taking input.
func (p *Panel) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.hovered = false
	if p.tracker.Dragging() {
		p.tracker.End()
	}
}

// Closed reports whether Close was called.
func (p *Panel) Closed() bool { return p.closed }

// Removable reports whether a closed panel has finished fading out.
func (p *Panel) Removable() bool {
	return p.closed && p.opacity.Settled() && p.opacity.Value() == 0
}

// localPoint maps a screen point into the panel box, undoing the scale about
// the centre.
func (p *Panel) localPoint(x, y float64) (float64, float64) {
	w, h := p.params.Width, p.params.Height
	s := p.scale.Value()
	if s == 0 {
		return -1, -1
	}
	cx, cy := p.X+w/2, p.Y+h/2
	return (x-cx)/s + w/2, (y-cy)/s + h/2
}

// HitTest reports whether (x, y) lies on the panel's rounded silhouette.
func (p *Panel) HitTest(x, y float64) bool {
	if p.closed {
		return false
	}
	lx, ly := p.localPoint(x, y)
	return HitRoundedRect{
		Width:  p.params.Width,
		Height: p.params.Height,
		Radius: p.params.CornerRadius,
	}.Contains(lx, ly)
}

// ensureImage returns img if it already has size w x h, otherwise a new one.
func ensureImage(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

// Draw refracts the part of backdrop behind the panel and draws the result
// into dst, scaled about the panel centre. backdrop and dst may be the same
// image. A nil backdrop or dst draws nothing.
func (p *Panel) Draw(backdrop, dst *ebiten.Image) {
	if backdrop == nil || dst == nil {
		return
	}
	alpha := p.opacity.Value()
	if alpha <= 0 {
		return
	}
	w, h := p.graph.RegionSize()
	if w <= 0 || h <= 0 || p.graph.Width() <= 0 || p.graph.Height() <= 0 {
		return
	}
	db := dst.Bounds()
	box := Rect{X: p.X - Margin, Y: p.Y - Margin, Width: float64(w), Height: float64(h)}
	if !box.Intersects(Rect{X: float64(db.Min.X), Y: float64(db.Min.Y), Width: float64(db.Dx()), Height: float64(db.Dy())}) {
		return
	}

	p.region = ensureImage(p.region, w, h)
	p.result = ensureImage(p.result, w, h)

	op := &p.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(-(p.X - Margin), -(p.Y - Margin))
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	p.region.Clear()
	p.region.DrawImage(backdrop, op)

	p.result.Clear()
	p.filter.Apply(p.region, p.result)
	out := p.result
	if len(p.Filters) > 0 {
		if pad := filterChainPadding(p.Filters); pad > Margin {
			Logger().Debug("panel filters clipped", "panel", p.id, "padding", pad)
		}
		out = applyFilters(p.Filters, p.result, &p.filter.pool)
		defer p.filter.pool.Release(out)
	}

	pw, ph := p.params.Width, p.params.Height
	s := p.scale.Value()
	op.GeoM.Reset()
	op.GeoM.Translate(-Margin-pw/2, -Margin-ph/2)
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(p.X+pw/2, p.Y+ph/2)
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(out, op)
}

// FilterSVG returns the panel's filter as SVG markup under its own id.
func (p *Panel) FilterSVG() string { return p.graph.FilterSVG(p.id) }

// Dispose releases the panel's GPU resources.
func (p *Panel) Dispose() {
	p.filter.Dispose()
	for _, img := range []*ebiten.Image{p.region, p.result} {
		if img != nil {
			img.Deallocate()
		}
	}
	p.region, p.result = nil, nil
}
