package liquidglass

import (
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Hit shapes ---

// HitShape tests whether a point lies inside an interactive area.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitRoundedRect is a rounded rectangle at the origin, the silhouette of a
// glass panel. Radius is clamped to half the shorter side.
type HitRoundedRect struct {
	Width, Height, Radius float64
}

// Contains reports whether (x, y) lies inside the rounded rectangle.
func (r HitRoundedRect) Contains(x, y float64) bool {
	if x < 0 || y < 0 || x > r.Width || y > r.Height {
		return false
	}
	rad := math.Max(0, math.Min(r.Radius, math.Min(r.Width, r.Height)/2))
	// Nearest corner centre; points between the corner centres are inside.
	cx := math.Min(math.Max(x, rad), r.Width-rad)
	cy := math.Min(math.Max(y, rad), r.Height-rad)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= rad*rad
}

// --- Components ---

// PointerEvent is delivered to an Interactive component. Offsets are
// cumulative from the press point; deltas are since the previous event.
type PointerEvent struct {
	Type      EventType
	X, Y      float64
	StartX    float64
	StartY    float64
	OffsetX   float64
	OffsetY   float64
	DeltaX    float64
	DeltaY    float64
	PointerID int
}

// Interactive is a component the Stage routes pointer input to and draws.
// Components with a higher ZIndex are hit first and drawn last.
type Interactive interface {
	HitTest(x, y float64) bool
	ZIndex() int
	HandlePointer(e PointerEvent)
	Update(dt float64)
	Draw(backdrop, dst *ebiten.Image)
}

// globalReleaser is implemented by components that need every pointer
// release, wherever it lands.
type globalReleaser interface {
	GlobalPointerUp()
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hit      Interactive
	hover    Interactive
	dragging bool
}

// CapturePointer routes all events for pointerID to c until release.
func (s *Stage) CapturePointer(pointerID int, c Interactive) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = c
	}
}

// ReleasePointer stops routing events for pointerID to a captured component.
func (s *Stage) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Stage) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// sortComponents orders components by ZIndex, keeping insertion order for
// equal values.
func (s *Stage) sortComponents() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.components, func(i, j int) bool {
		return s.components[i].ZIndex() < s.components[j].ZIndex()
	})
	s.sorted = true
}

// hitTest finds the topmost component at (x, y), or nil.
func (s *Stage) hitTest(x, y float64) Interactive {
	s.sortComponents()
	for i := len(s.components) - 1; i >= 0; i-- {
		if c := s.components[i]; c.HitTest(x, y) {
			return c
		}
	}
	return nil
}

// --- Input processing ---

// processInput is called from Stage.Update to handle mouse and touch input.
// A queued synthetic event replaces real mouse input for the frame.
func (s *Stage) processInput() {
	if s.processInjectedInput() || !s.pollDevices {
		return
	}
	s.processMousePointer()
	s.processTouchPointers()
}

func (s *Stage) processMousePointer() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.processPointer(0, float64(mx), float64(my), pressed)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Stage) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true)
	}

	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Stage) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Stage) processPointer(pointerID int, x, y float64, pressed bool) {
	ps := &s.pointers[pointerID]

	target := s.captured[pointerID]
	if target == nil {
		target = s.hitTest(x, y)
	}

	if target != ps.hover {
		if ps.hover != nil {
			s.fire(ps.hover, EventPointerLeave, pointerID, x, y, ps)
		}
		if target != nil {
			s.fire(target, EventPointerEnter, pointerID, x, y, ps)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hit = target
		ps.dragging = false
		if target != nil {
			s.captured[pointerID] = target
		}
		s.fire(target, EventPointerDown, pointerID, x, y, ps)

	case !pressed && ps.down:
		if ps.dragging {
			s.fire(ps.hit, EventDragEnd, pointerID, x, y, ps)
		}
		s.fire(target, EventPointerUp, pointerID, x, y, ps)
		s.broadcastPointerUp()

		s.captured[pointerID] = nil
		ps.down = false
		ps.hit = nil
		ps.dragging = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx, dy := x-ps.startX, y-ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.fire(ps.hit, EventDragStart, pointerID, x, y, ps)
				}
			}
			if ps.dragging {
				s.fire(ps.hit, EventDrag, pointerID, x, y, ps)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		if x != ps.lastX || y != ps.lastY {
			s.fire(target, EventPointerMove, pointerID, x, y, ps)
			ps.lastX, ps.lastY = x, y
		}
	}
}

// fire delivers one event to c. A nil component drops the event.
func (s *Stage) fire(c Interactive, typ EventType, pointerID int, x, y float64, ps *pointerState) {
	if c == nil {
		return
	}
	e := PointerEvent{
		Type:      typ,
		X:         x,
		Y:         y,
		StartX:    ps.startX,
		StartY:    ps.startY,
		OffsetX:   x - ps.startX,
		OffsetY:   y - ps.startY,
		DeltaX:    x - ps.lastX,
		DeltaY:    y - ps.lastY,
		PointerID: pointerID,
	}
	c.HandlePointer(e)
	if s.debug {
		Logger().Debug("pointer event", "type", int(typ), "pointer", pointerID, "x", x, "y", y)
	}
}

func (s *Stage) broadcastPointerUp() {
	for _, c := range s.components {
		if r, ok := c.(globalReleaser); ok {
			r.GlobalPointerUp()
		}
	}
}
