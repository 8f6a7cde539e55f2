package liquidglass

import (
	"image"
	"math"
	"testing"
)

func rgbaAt(img *image.RGBA, x, y int) [4]int {
	i := img.PixOffset(x, y)
	return [4]int{int(img.Pix[i]), int(img.Pix[i+1]), int(img.Pix[i+2]), int(img.Pix[i+3])}
}

func assertPixel(t *testing.T, name string, got [4]int, want [4]int, tol int) {
	t.Helper()
	for c := range got {
		d := got[c] - want[c]
		if d < -tol || d > tol {
			t.Errorf("%s = %v, want %v ± %d", name, got, want, tol)
			return
		}
	}
}

func TestRasterizeMaskLayer(t *testing.T) {
	g := Synthesize(DefaultParams())
	img := RasterizeLayer(g.Layers[LayerMask])
	if img.Rect.Dx() != 100 || img.Rect.Dy() != 100 {
		t.Fatalf("size = %v, want 100x100", img.Rect.Size())
	}
	assertPixel(t, "centre", rgbaAt(img, 50, 50), [4]int{0, 0, 0, 255}, 0)
	assertPixel(t, "corner", rgbaAt(img, 0, 0), [4]int{0, 0, 0, 0}, 0)
	assertPixel(t, "edge midpoint", rgbaAt(img, 0, 50), [4]int{0, 0, 0, 255}, 1)
}

func TestRasterizeTransparentHighlight(t *testing.T) {
	g := Synthesize(scenarioParams())
	img := RasterizeLayer(g.Layers[LayerHighlight])
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("pixel %d alpha = %d, want 0 with lightnessOpacity 0", i/4, img.Pix[i])
		}
	}
}

func TestRasterizeNeutralShadow(t *testing.T) {
	p := DefaultParams().Set(ParamDarknessOpacity, 0).Set(ParamDarknessBlur, 0)
	img := RasterizeLayer(Synthesize(p).Layers[LayerShadow])
	for _, pt := range []image.Point{{50, 50}, {10, 50}, {50, 90}} {
		assertPixel(t, "interior", rgbaAt(img, pt.X, pt.Y), [4]int{255, 255, 255, 255}, 0)
	}
	// Multiplying by opaque white leaves the destination unchanged.
	top := pixel{0.2, 0.4, 0.6, 1}
	got := blendPixel(BlendMultiply, pixel{1, 1, 1, 1}, top)
	for c := range got {
		assertNear(t, "multiply by white", got[c], top[c])
	}
}

func TestRasterizeDisplacementGradients(t *testing.T) {
	p := DefaultParams().Set(ParamCenterDistortion, 255)
	img := RasterizeLayer(Synthesize(p).Layers[LayerDisplacement])

	centre := rgbaAt(img, 50, 50)
	assertPixel(t, "centre", centre, [4]int{0, 129, 129, 255}, 2)

	right := rgbaAt(img, 95, 50)
	if right[2] < 235 {
		t.Errorf("blue near right edge = %d, want > 235", right[2])
	}
	bottom := rgbaAt(img, 50, 95)
	if bottom[1] < 235 {
		t.Errorf("green near bottom edge = %d, want > 235", bottom[1])
	}
}

func TestRasterizeDisplacementFullyMasked(t *testing.T) {
	p := DefaultParams().Set(ParamCenterDistortion, 0).Set(ParamCenterSize, 20)
	img := RasterizeLayer(Synthesize(p).Layers[LayerDisplacement])
	assertPixel(t, "centre", rgbaAt(img, 50, 50), [4]int{127, 127, 127, 255}, 1)
	assertPixel(t, "off-centre", rgbaAt(img, 80, 30), [4]int{127, 127, 127, 255}, 1)
}

func TestRasterizeNegativeBlurIsSharp(t *testing.T) {
	sharp := Synthesize(DefaultParams().Set(ParamLightnessBlur, 0).Set(ParamLightnessOpacity, 100))
	neg := Synthesize(DefaultParams().Set(ParamLightnessBlur, -8).Set(ParamLightnessOpacity, 100))
	a := RasterizeLayer(sharp.Layers[LayerHighlight])
	b := RasterizeLayer(neg.Layers[LayerHighlight])
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestRasterizeBlurSoftensEdge(t *testing.T) {
	p := DefaultParams().Set(ParamLightnessOpacity, 100).Set(ParamLightnessBlur, 10)
	img := RasterizeLayer(Synthesize(p).Layers[LayerHighlight])
	edge := rgbaAt(img, 0, 50)[3]
	inner := rgbaAt(img, 50, 50)[3]
	if edge >= inner {
		t.Errorf("edge alpha %d should be below centre alpha %d", edge, inner)
	}
	// The edge pixel sits on the shape boundary, so the blur leaves it at
	// about half the interior alpha.
	if d := edge - inner/2; d < -inner/8 || d > inner/8 {
		t.Errorf("edge alpha = %d, want about %d (half of centre)", edge, inner/2)
	}
}

func TestRasterizeEmptyLayer(t *testing.T) {
	img := RasterizeLayer(Layer{Width: 0, Height: -5})
	if !img.Rect.Empty() {
		t.Errorf("size = %v, want empty", img.Rect)
	}
}

func TestRoundedRectMaskClampsRadius(t *testing.T) {
	m := roundedRectMask(40, 20, 0, 0, 40, 20, 1000)
	if a := m.AlphaAt(20, 10).A; a != 255 {
		t.Errorf("centre coverage = %d, want 255", a)
	}
	if a := m.AlphaAt(0, 0).A; a != 0 {
		t.Errorf("corner coverage = %d, want 0", a)
	}
	if a := m.AlphaAt(20, 0).A; a < 200 {
		t.Errorf("top midpoint coverage = %d, want near full", a)
	}
}

func TestGradientColor(t *testing.T) {
	g := LinearGradient{X2: 100, Stops: []GradientStop{{Offset: 0}, {Offset: 100, B: 255}}}
	tests := []struct {
		t, b float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		r, gr, b := gradientColor(g, tt.t)
		if r != 0 || gr != 0 {
			t.Errorf("gradientColor(%v) red/green = %v, %v; want 0", tt.t, r, gr)
		}
		assertNear(t, "blue", b, tt.b)
	}
	assertNear(t, "gradientT horizontal", gradientT(g, 0.3, 0.9), 0.3)
	v := LinearGradient{Y2: 100}
	assertNear(t, "gradientT vertical", gradientT(v, 0.3, 0.9), 0.9)
}

func TestGaussianBlurKernel(t *testing.T) {
	k := GaussianBlurKernel(1)
	if len(k.Matrix) != 9 {
		t.Fatalf("kernel length = %d, want 9", len(k.Matrix))
	}
	for i := 0; i < 4; i++ {
		assertNear(t, "symmetry", k.Matrix[i], k.Matrix[8-i])
	}
	assertNear(t, "peak", k.Matrix[4], 1)
	assertNear(t, "one sigma", k.Matrix[5], math.Exp(-0.5))
}

func TestBlendPixel(t *testing.T) {
	half := pixel{0.5, 0.5, 0.5, 0.5}
	white := pixel{1, 1, 1, 1}
	clear := pixel{}

	tests := []struct {
		name        string
		mode        BlendMode
		top, bottom pixel
		want        pixel
	}{
		{"screen with white", BlendScreen, white, half, white},
		{"screen with clear", BlendScreen, clear, half, half},
		{"normal over clear", BlendNormal, half, clear, half},
		{"multiply over clear", BlendMultiply, half, clear, half},
		{"in opaque mask", BlendMaskIn, half, white, half},
		{"in clear mask", BlendMaskIn, half, clear, clear},
		{"copy", BlendNone, clear, white, clear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := blendPixel(tt.mode, tt.top, tt.bottom)
			for c := range got {
				assertNear(t, "component", got[c], tt.want[c])
			}
		})
	}
}

// feBlendReference spells out the premultiplied feBlend and feComposite
// formulas channel by channel.
func feBlendReference(mode BlendMode, top, bottom pixel) pixel {
	ta, ba := top[3], bottom[3]
	var out pixel
	for c := 0; c < 3; c++ {
		t, b := top[c], bottom[c]
		switch mode {
		case BlendScreen:
			out[c] = t + b - t*b
		case BlendMultiply:
			out[c] = t*(1-ba) + b*(1-ta) + t*b
		case BlendMaskIn:
			out[c] = t * ba
		default:
			out[c] = t + b*(1-ta)
		}
	}
	if mode == BlendMaskIn {
		out[3] = ta * ba
	} else {
		out[3] = ta + ba - ta*ba
	}
	return out
}

func TestBlendWeightsMatchFormulas(t *testing.T) {
	samples := []pixel{
		{},
		{0.5, 0.5, 0.5, 0.5},
		{0.1, 0.2, 0.3, 0.4},
		{0.537, 0.537, 0.537, 0.537},
		{0.2, 0.4, 0.8, 1},
		{1, 1, 1, 1},
	}
	modes := []BlendMode{BlendNormal, BlendScreen, BlendMultiply, BlendMaskIn}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			for _, top := range samples {
				for _, bottom := range samples {
					got := blendPixel(mode, top, bottom)
					want := feBlendReference(mode, top, bottom)
					for c := range got {
						assertNear(t, "component", got[c], want[c])
					}
				}
			}
		})
	}
}

func TestMultiplyTranslucentWhiteShadowKeepsBackdrop(t *testing.T) {
	p := DefaultParams().Set(ParamDarknessOpacity, 0)
	shadow := RasterizeLayer(Synthesize(p).Layers[LayerShadow])
	rim := pixelAt(shadow, 0, 50)
	if rim[3] <= 0 || rim[3] >= 1 {
		t.Fatalf("rim alpha = %v, want a partially covered pixel", rim[3])
	}
	backdrop := pixel{0.2, 0.4, 0.8, 1}
	got := blendPixel(BlendMultiply, rim, backdrop)
	for c := range got {
		assertNear(t, "multiply", got[c], backdrop[c])
	}
}
