package liquidglass

import "math"

// DirectionLockThreshold is the per-move distance, in pixels, either axis must
// exceed before a drag locks onto a direction.
const DirectionLockThreshold = 5

// DragPhase is the lifecycle stage of a drag gesture.
type DragPhase uint8

const (
	DragIdle     DragPhase = iota // no drag in progress
	DragStarted                   // Start called, no movement yet
	DragDragging                  // at least one Move since Start
)

// DragTracker infers the dominant axis of a drag gesture. Feed it cumulative
// offsets from the drag start; the first move whose delta from the previous
// offset exceeds DirectionLockThreshold on either axis locks the direction
// until End.
type DragTracker struct {
	phase     DragPhase
	direction DragDirection
	lastX     float64
	lastY     float64

	// OnDirectionLocked is called once per gesture, when the direction locks.
	OnDirectionLocked func(DragDirection)
}

// Start begins a gesture: the last offset resets to (0, 0) and the direction
// to DirectionNone.
func (t *DragTracker) Start() {
	t.phase = DragStarted
	t.direction = DirectionNone
	t.lastX, t.lastY = 0, 0
}

// Move records the cumulative offset from the drag start. Equal deltas lock
// vertically.
func (t *DragTracker) Move(offsetX, offsetY float64) {
	if t.phase == DragIdle {
		t.Start()
	}
	t.phase = DragDragging
	dx := math.Abs(offsetX - t.lastX)
	dy := math.Abs(offsetY - t.lastY)
	if t.direction == DirectionNone && (dx > DirectionLockThreshold || dy > DirectionLockThreshold) {
		if dx > dy {
			t.direction = DirectionHorizontal
		} else {
			t.direction = DirectionVertical
		}
		if t.OnDirectionLocked != nil {
			t.OnDirectionLocked(t.direction)
		}
	}
	t.lastX, t.lastY = offsetX, offsetY
}

// End finishes the gesture and resets the direction to DirectionNone.
func (t *DragTracker) End() {
	t.phase = DragIdle
	t.direction = DirectionNone
}

// Phase returns the current gesture stage.
func (t *DragTracker) Phase() DragPhase { return t.phase }

// Direction returns the locked direction, or DirectionNone.
func (t *DragTracker) Direction() DragDirection { return t.direction }

// Dragging reports whether a gesture is in progress.
func (t *DragTracker) Dragging() bool { return t.phase != DragIdle }

// LastOffset returns the most recent offset passed to Move.
func (t *DragTracker) LastOffset() (float64, float64) { return t.lastX, t.lastY }
