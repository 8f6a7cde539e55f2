package liquidglass

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenTarget is one field animated by a TweenGroup.
type TweenTarget struct {
	Field *float64
	To    float64
}

// TweenGroup animates up to 4 float64 fields simultaneously over a fixed
// duration. Call Update(dt) each frame; values are written back to the
// fields as they change.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

// NewTweenGroup creates a group animating each target from its current value.
// Targets beyond the fourth and targets with a nil Field are ignored.
func NewTweenGroup(duration float32, fn ease.TweenFunc, targets ...TweenTarget) *TweenGroup {
	g := &TweenGroup{}
	for _, t := range targets {
		if g.count == len(g.tweens) {
			break
		}
		if t.Field == nil {
			continue
		}
		g.tweens[g.count] = gween.New(float32(*t.Field), float32(t.To), duration, fn)
		g.fields[g.count] = t.Field
		g.count++
	}
	g.Done = g.count == 0
	return g
}

// Update advances all tweens by dt seconds and writes values to the fields.
func (g *TweenGroup) Update(dt float32) {
	if g == nil || g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenAlpha creates a TweenGroup that animates *alpha to the target value.
func TweenAlpha(alpha *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn, TweenTarget{Field: alpha, To: to})
}

// TweenColor creates a TweenGroup that animates all four components of *c.
func TweenColor(c *Color, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn,
		TweenTarget{Field: &c.R, To: to.R},
		TweenTarget{Field: &c.G, To: to.G},
		TweenTarget{Field: &c.B, To: to.B},
		TweenTarget{Field: &c.A, To: to.A},
	)
}
