package liquidglass

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func uniformBackdrop(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// neutralParams turns off every effect except the silhouette mask, with a
// displacement map that is flat gray (no movement).
func neutralParams() Params {
	return Params{
		Width: 100, Height: 80, CornerRadius: 20,
		DarknessOpacity: 0, DarknessBlur: 0,
		LightnessOpacity: 0, LightnessBlur: 0,
		CenterDistortion: 0, CenterSize: 20,
		PreBlur: 0, PostBlur: 0, Iridescence: 0,
	}
}

func TestRenderRegionSize(t *testing.T) {
	g := Synthesize(DefaultParams())
	out := Render(g, uniformBackdrop(143, 143, color.RGBA{10, 20, 30, 255}))
	if out.Rect.Dx() != 143 || out.Rect.Dy() != 143 {
		t.Errorf("size = %v, want 143x143", out.Rect.Size())
	}
	w, h := Synthesize(scenarioParams()).RegionSize()
	if w != 343 || h != 243 {
		t.Errorf("RegionSize() = %dx%d, want 343x243", w, h)
	}
}

func TestRenderNeutralPassesBackdropThrough(t *testing.T) {
	g := Synthesize(neutralParams())
	bg := color.RGBA{200, 100, 50, 255}
	out := Render(g, uniformBackdrop(143, 123, bg))

	// The silhouette lands Margin pixels down and right of the region origin.
	assertPixel(t, "panel centre", rgbaAt(out, Margin+50, Margin+40), [4]int{200, 100, 50, 255}, 1)
	assertPixel(t, "above panel", rgbaAt(out, 20, 20), [4]int{0, 0, 0, 0}, 0)
	assertPixel(t, "rounded corner", rgbaAt(out, Margin, Margin), [4]int{0, 0, 0, 0}, 0)
}

func TestRenderShadowDarkens(t *testing.T) {
	p := neutralParams()
	p.DarknessOpacity = 100
	p.DarknessBlur = 10
	out := Render(Synthesize(p), uniformBackdrop(143, 123, color.RGBA{200, 200, 200, 255}))

	centre := rgbaAt(out, Margin+50, Margin+40)
	edge := rgbaAt(out, Margin+1, Margin+40)
	if edge[0] >= centre[0] {
		t.Errorf("edge red %d should be darker than centre red %d", edge[0], centre[0])
	}
}

func TestRenderHighlightBrightens(t *testing.T) {
	p := neutralParams()
	p.LightnessOpacity = 255
	out := Render(Synthesize(p), uniformBackdrop(143, 123, color.RGBA{40, 40, 40, 255}))
	got := rgbaAt(out, Margin+50, Margin+40)
	assertPixel(t, "centre", got, [4]int{255, 255, 255, 255}, 1)
}

func TestRenderDeterministic(t *testing.T) {
	g := Synthesize(scenarioParams())
	bg := stripedBackdropForTest(400, 300)
	a := RenderPanel(g, bg, image.Pt(60, 60))
	b := RenderPanel(g, bg, image.Pt(60, 60))
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repeated renders differ")
	}
}

func TestRenderNilBackdrop(t *testing.T) {
	g := Synthesize(neutralParams())
	out := Render(g, nil)
	if out.Rect.Dx() != 143 || out.Rect.Dy() != 123 {
		t.Fatalf("size = %v, want 143x123", out.Rect.Size())
	}
	assertPixel(t, "outside silhouette", rgbaAt(out, 10, 10), [4]int{0, 0, 0, 0}, 0)
}

func TestRenderPanelLeavesOutsideUntouched(t *testing.T) {
	g := Synthesize(neutralParams())
	bg := stripedBackdropForTest(300, 300)
	out := RenderPanel(g, bg, image.Pt(100, 100))
	if out.Rect != bg.Rect {
		t.Fatalf("bounds = %v, want %v", out.Rect, bg.Rect)
	}
	for _, pt := range []image.Point{{5, 5}, {290, 290}, {250, 120}} {
		if rgbaAt(out, pt.X, pt.Y) != rgbaAt(bg, pt.X, pt.Y) {
			t.Errorf("pixel %v changed outside the panel", pt)
		}
	}
}

func TestRenderPanelNearBackdropEdge(t *testing.T) {
	g := Synthesize(neutralParams())
	bg := uniformBackdrop(120, 100, color.RGBA{0, 0, 255, 255})
	// The region starts off-canvas; missing backdrop reads as transparent.
	out := RenderPanel(g, bg, image.Pt(0, 0))
	if out.Rect != bg.Rect {
		t.Fatalf("bounds = %v, want %v", out.Rect, bg.Rect)
	}
}

func TestBlurTransparentSpreadsAndFades(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 21, 21))
	img.SetRGBA(10, 10, color.RGBA{255, 255, 255, 255})
	out := blurTransparent(img, 1.5)

	centre := rgbaAt(out, 10, 10)[3]
	near := rgbaAt(out, 11, 10)[3]
	far := rgbaAt(out, 0, 0)[3]
	if centre >= 255 || centre == 0 {
		t.Errorf("centre alpha = %d, want partial", centre)
	}
	if near == 0 || near > centre {
		t.Errorf("neighbour alpha = %d, want between 0 and centre %d", near, centre)
	}
	if far != 0 {
		t.Errorf("far corner alpha = %d, want 0", far)
	}

	same := blurTransparent(img, 0)
	if !bytes.Equal(same.Pix, img.Pix) {
		t.Error("sigma 0 should copy")
	}
}

func TestExecutorOffsetAndDisplace(t *testing.T) {
	e := &executor{w: 4, h: 4}
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})

	moved := e.offset(src, 2, 1)
	assertPixel(t, "moved", rgbaAt(moved, 2, 1), [4]int{255, 0, 0, 255}, 0)
	assertPixel(t, "vacated", rgbaAt(moved, 0, 0), [4]int{0, 0, 0, 0}, 0)

	// A map with blue = 1 shifts sampling by scale/2 along x.
	m := uniformBackdrop(4, 4, color.RGBA{0, 128, 255, 255})
	p := Primitive{Scale: -2, XChannel: 'B', YChannel: 'G'}
	out := e.displace(src, m, p)
	// Pixel (1, 0) samples x = 1 - 1 = 0.
	assertPixel(t, "displaced", rgbaAt(out, 1, 0), [4]int{255, 0, 0, 255}, 0)
	// Pixel (0, 0) samples x = -1.
	assertPixel(t, "out of bounds", rgbaAt(out, 0, 0), [4]int{0, 0, 0, 0}, 0)
}

func stripedBackdropForTest(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255}
			if (x/20+y/20)%2 == 0 {
				c = color.RGBA{240, 240, 240, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
