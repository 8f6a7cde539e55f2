// Package liquidglass renders "liquid glass" panels for [Ebitengine]: rounded
// rectangles that refract, tint and highlight whatever is drawn behind them.
//
// A panel is described by [Params]. [Synthesize] turns them into a [Graph],
// the same filter graph a browser would run as an SVG backdrop filter: four
// rasterized layers (shadow, highlight, mask and displacement map) feeding a
// chain of blur, per-channel displacement, blend and composite primitives.
// [Graph.FilterSVG] emits that graph as markup; [GlassFilter] runs it on the
// GPU and [RenderPanel] runs it on the CPU for offline rendering.
//
// # Quick start
//
// [Run] opens a window and drives a [Stage]:
//
//	stage := liquidglass.NewStage()
//	stage.BackdropFunc = drawWallpaper
//	stage.Add(liquidglass.NewPanel(liquidglass.DefaultParams(), liquidglass.PanelOptions{
//		Draggable: true, X: 170, Y: 140,
//	}))
//	liquidglass.Run(stage, liquidglass.RunConfig{
//		Title: "Liquid Glass", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call [Stage.Update]
// and [Stage.Draw] directly.
//
// # Interaction
//
// Draggable panels scale up on hover and stretch while dragged, using
// spring transitions ([Spring]). A drag locks onto the axis of its first
// large move ([DragTracker]). [Slider] is a value slider whose thumb turns
// into a small glass bubble while held.
//
// # Scripted runs
//
// [LoadTestScript] reads a JSON script of clicks, drags, parameter changes
// and screenshots; attach it with [Stage.SetTestRunner] to record visual
// regressions without a human at the mouse.
//
// [Ebitengine]: https://ebitengine.org
package liquidglass
