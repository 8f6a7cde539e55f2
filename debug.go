package liquidglass

import (
	"time"
)

// debugMaxPanels is the number of glass panels above which a frame is
// likely to be fill-rate bound; each panel runs about twenty GPU passes.
const debugMaxPanels = 16

// debugLogUpdate logs the update time and component counts. Only called in
// debug mode.
func (s *Stage) debugLogUpdate(elapsed time.Duration) {
	panels := 0
	for _, c := range s.components {
		if _, ok := c.(*Panel); ok {
			panels++
		}
	}
	Logger().Debug("stage update",
		"elapsed", elapsed,
		"components", len(s.components),
		"panels", panels,
		"injected", len(s.injectQueue))
	if panels > debugMaxPanels {
		Logger().Warn("many glass panels on stage", "panels", panels, "threshold", debugMaxPanels)
	}
}

// debugLogDraw logs the draw time and the number of graph rebuilds so far.
func (s *Stage) debugLogDraw(elapsed time.Duration) {
	rebuilds := 0
	for _, c := range s.components {
		if p, ok := c.(*Panel); ok {
			rebuilds += p.filter.Rebuilds
		}
	}
	Logger().Debug("stage draw", "elapsed", elapsed, "rebuilds", rebuilds)
}
