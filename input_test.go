package liquidglass

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// newTestStage returns a stage that only sees injected input.
func newTestStage() *Stage {
	s := NewStage()
	s.pollDevices = false
	return s
}

// fakeComponent is a rectangular Interactive that records its events.
type fakeComponent struct {
	rect     HitRect
	z        int
	events   []PointerEvent
	released int
	updates  int
}

func (f *fakeComponent) HitTest(x, y float64) bool        { return f.rect.Contains(x, y) }
func (f *fakeComponent) ZIndex() int                      { return f.z }
func (f *fakeComponent) HandlePointer(e PointerEvent)     { f.events = append(f.events, e) }
func (f *fakeComponent) Update(float64)                   { f.updates++ }
func (f *fakeComponent) Draw(backdrop, dst *ebiten.Image) {}
func (f *fakeComponent) GlobalPointerUp()                 { f.released++ }

func (f *fakeComponent) types() []EventType {
	out := make([]EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func (f *fakeComponent) count(typ EventType) int {
	n := 0
	for _, e := range f.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// --- HitShape tests ---

func TestHitRectContains(t *testing.T) {
	r := HitRect{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 5, 40, false},
		{"outside right", 115, 40, false},
		{"outside top", 50, 15, false},
		{"outside bottom", 50, 75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("HitRect.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitRoundedRectContains(t *testing.T) {
	r := HitRoundedRect{Width: 100, Height: 60, Radius: 20}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 30, true},
		{"top edge middle", 50, 0, true},
		{"left edge middle", 0, 30, true},
		{"corner cut", 1, 1, false},
		{"inside corner arc", 6, 6, true},
		{"far corner cut", 99, 59, false},
		{"outside right", 101, 30, false},
		{"negative", -1, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("HitRoundedRect.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitRoundedRectRadiusClamped(t *testing.T) {
	// Radius larger than half the height behaves as a pill.
	r := HitRoundedRect{Width: 100, Height: 20, Radius: 500}
	if !r.Contains(50, 10) {
		t.Error("centre should be inside")
	}
	if !r.Contains(10, 10) {
		t.Error("end cap centre should be inside")
	}
	if r.Contains(1, 1) {
		t.Error("end cap corner should be outside")
	}
}

// --- Hit testing ---

func TestHitTestTopmostByZIndex(t *testing.T) {
	s := newTestStage()
	high := &fakeComponent{rect: HitRect{Width: 100, Height: 100}, z: 100}
	low := &fakeComponent{rect: HitRect{Width: 100, Height: 100}, z: 10}
	s.Add(high)
	s.Add(low)

	if got := s.hitTest(50, 50); got != high {
		t.Errorf("hitTest = %v, want the higher ZIndex", got)
	}
	if got := s.hitTest(150, 50); got != nil {
		t.Errorf("hitTest outside = %v, want nil", got)
	}
}

func TestHitTestEqualZIndexLastAddedWins(t *testing.T) {
	s := newTestStage()
	a := &fakeComponent{rect: HitRect{Width: 100, Height: 100}}
	b := &fakeComponent{rect: HitRect{Width: 100, Height: 100}}
	s.Add(a)
	s.Add(b)
	if got := s.hitTest(10, 10); got != b {
		t.Error("the later component should be hit first")
	}
}

// --- Pointer state machine ---

func TestPointerDownUpOnComponent(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 100, Height: 100}}
	s.Add(c)

	s.processPointer(0, 50, 50, true)
	s.processPointer(0, 50, 50, false)

	want := []EventType{EventPointerEnter, EventPointerDown, EventPointerUp}
	got := c.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if c.released != 1 {
		t.Errorf("GlobalPointerUp calls = %d, want 1", c.released)
	}
}

func TestPointerHoverEnterLeave(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 100, Height: 100}}
	s.Add(c)

	s.processPointer(0, 50, 50, false)
	s.processPointer(0, 60, 50, false)
	s.processPointer(0, 200, 50, false)

	if n := c.count(EventPointerEnter); n != 1 {
		t.Errorf("enter count = %d, want 1", n)
	}
	if n := c.count(EventPointerLeave); n != 1 {
		t.Errorf("leave count = %d, want 1", n)
	}
	if n := c.count(EventPointerMove); n != 2 {
		t.Errorf("move count = %d, want 2 (both moves inside)", n)
	}
}

func TestDragDeadZone(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 200, Height: 200}}
	s.Add(c)

	s.processPointer(0, 50, 50, true)
	s.processPointer(0, 53, 50, true) // within 4px
	if n := c.count(EventDragStart); n != 0 {
		t.Fatalf("drag started inside the dead zone")
	}
	s.processPointer(0, 60, 50, true)
	if n := c.count(EventDragStart); n != 1 {
		t.Fatalf("DragStart count = %d, want 1", n)
	}
	if n := c.count(EventDrag); n != 1 {
		t.Fatalf("Drag count = %d, want 1", n)
	}
	s.processPointer(0, 70, 55, true)
	s.processPointer(0, 70, 55, false)
	if n := c.count(EventDragEnd); n != 1 {
		t.Errorf("DragEnd count = %d, want 1", n)
	}
}

func TestSetDragDeadZone(t *testing.T) {
	s := newTestStage()
	s.SetDragDeadZone(20)
	c := &fakeComponent{rect: HitRect{Width: 200, Height: 200}}
	s.Add(c)

	s.processPointer(0, 50, 50, true)
	s.processPointer(0, 60, 50, true)
	if c.count(EventDragStart) != 0 {
		t.Error("10px move should not start a drag with a 20px dead zone")
	}
	s.processPointer(0, 80, 50, true)
	if c.count(EventDragStart) != 1 {
		t.Error("30px move should start a drag")
	}
}

func TestDragOffsetsAndDeltas(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 200, Height: 200}}
	s.Add(c)

	s.processPointer(0, 10, 10, true)
	s.processPointer(0, 30, 10, true)
	s.processPointer(0, 35, 20, true)

	var last PointerEvent
	for _, e := range c.events {
		if e.Type == EventDrag {
			last = e
		}
	}
	if last.OffsetX != 25 || last.OffsetY != 10 {
		t.Errorf("offset = (%v, %v), want (25, 10)", last.OffsetX, last.OffsetY)
	}
	if last.DeltaX != 5 || last.DeltaY != 10 {
		t.Errorf("delta = (%v, %v), want (5, 10)", last.DeltaX, last.DeltaY)
	}
	if last.StartX != 10 || last.StartY != 10 {
		t.Errorf("start = (%v, %v), want (10, 10)", last.StartX, last.StartY)
	}
}

func TestPressCapturesTarget(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 50, Height: 50}}
	s.Add(c)

	s.processPointer(0, 25, 25, true)
	// Leaving the component while held keeps routing to it.
	s.processPointer(0, 300, 300, true)
	if c.count(EventDrag) != 1 {
		t.Error("captured component should receive the drag outside its bounds")
	}
	if c.count(EventPointerLeave) != 0 {
		t.Error("captured component should not get a leave while held")
	}
	s.processPointer(0, 300, 300, false)
	if c.count(EventDragEnd) != 1 {
		t.Error("captured component should receive DragEnd")
	}
	if s.captured[0] != nil {
		t.Error("capture should be released")
	}
}

func TestCaptureAndReleasePointer(t *testing.T) {
	s := newTestStage()
	a := &fakeComponent{rect: HitRect{Width: 50, Height: 50}}
	b := &fakeComponent{rect: HitRect{X: 100, Width: 50, Height: 50}}
	s.Add(a)
	s.Add(b)

	s.CapturePointer(0, a)
	s.processPointer(0, 120, 20, false)
	if b.count(EventPointerEnter) != 0 {
		t.Error("captured pointer should not hit b")
	}
	s.ReleasePointer(0)
	s.processPointer(0, 121, 20, false)
	if b.count(EventPointerEnter) != 1 {
		t.Error("released pointer should hit b")
	}

	// Out-of-range ids are ignored.
	s.CapturePointer(-1, a)
	s.CapturePointer(maxPointers, a)
	s.ReleasePointer(maxPointers)
}

func TestReleaseBroadcastsToAll(t *testing.T) {
	s := newTestStage()
	a := &fakeComponent{rect: HitRect{Width: 50, Height: 50}}
	b := &fakeComponent{rect: HitRect{X: 100, Width: 50, Height: 50}}
	s.Add(a)
	s.Add(b)

	s.processPointer(0, 25, 25, true)
	s.processPointer(0, 500, 500, false)
	if a.released != 1 || b.released != 1 {
		t.Errorf("GlobalPointerUp = (%d, %d), want (1, 1)", a.released, b.released)
	}
}

func TestPressOnEmptySpace(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 50, Height: 50}}
	s.Add(c)

	s.processPointer(0, 200, 200, true)
	s.processPointer(0, 300, 300, true)
	s.processPointer(0, 300, 300, false)
	if len(c.events) != 0 {
		t.Errorf("component got %v, want no events", c.types())
	}
	if c.released != 1 {
		t.Error("GlobalPointerUp should still broadcast")
	}
}

func TestTouchSlotAllocation(t *testing.T) {
	s := newTestStage()
	a := s.touchSlot(ebiten.TouchID(7))
	b := s.touchSlot(ebiten.TouchID(9))
	if a != 1 || b != 2 {
		t.Errorf("slots = (%d, %d), want (1, 2)", a, b)
	}
	if again := s.touchSlot(ebiten.TouchID(7)); again != a {
		t.Errorf("existing touch slot = %d, want %d", again, a)
	}
	for i := 0; i < maxPointers; i++ {
		s.touchSlot(ebiten.TouchID(100 + i))
	}
	if full := s.touchSlot(ebiten.TouchID(999)); full != -1 {
		t.Errorf("full slot table = %d, want -1", full)
	}
}

func TestRemoveClearsPointerState(t *testing.T) {
	s := newTestStage()
	c := &fakeComponent{rect: HitRect{Width: 50, Height: 50}}
	s.Add(c)
	s.processPointer(0, 25, 25, true)
	s.Remove(c)
	if s.captured[0] != nil || s.pointers[0].hit != nil || s.pointers[0].hover != nil {
		t.Error("Remove should clear pointer references")
	}
	// Further input must not reach the removed component.
	n := len(c.events)
	s.processPointer(0, 40, 40, true)
	s.processPointer(0, 40, 40, false)
	if len(c.events) != n {
		t.Error("removed component received events")
	}
}
