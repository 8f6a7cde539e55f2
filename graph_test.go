package liquidglass

import (
	"reflect"
	"testing"
)

func scenarioParams() Params {
	return Params{
		Width: 300, Height: 200, CornerRadius: 25,
		DarknessOpacity: 17, DarknessBlur: 0,
		LightnessOpacity: 0, LightnessBlur: 15,
		CenterDistortion: 68, CenterSize: 15,
		PreBlur: 7, PostBlur: 0, Iridescence: 20,
	}
}

func TestSynthesizeScenario(t *testing.T) {
	g := Synthesize(scenarioParams())

	assertWithin(t, "ShadowAlpha", g.ShadowAlpha(), 6.67, 0.005)
	assertNear(t, "HighlightAlpha", g.HighlightAlpha(), 0)
	assertNear(t, "FalloffBlur", g.FalloffBlur(), 5)
	assertNear(t, "PreBlur", g.PreBlur(), 0.7)
	assertNear(t, "PostBlur", g.PostBlur(), 0)

	scales := g.ChannelScales()
	want := [3]float64{-148, -150, -152}
	for i := range scales {
		assertNear(t, "scale", scales[i], want[i])
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	for _, p := range []Params{DefaultParams(), scenarioParams(), DefaultParams().Set(ParamDarknessBlur, -3)} {
		a, b := Synthesize(p), Synthesize(p)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Synthesize(%+v) is not deterministic", p)
		}
		for i := range a.Layers {
			if a.Layers[i].SVG() != b.Layers[i].SVG() {
				t.Errorf("layer %d SVG differs between runs", i)
			}
		}
		if a.FilterSVG("x") != b.FilterSVG("x") {
			t.Error("FilterSVG differs between runs")
		}
		if !a.Equal(b) {
			t.Error("Equal() = false for identical inputs")
		}
	}
}

func TestSynthesizeIridescenceZero(t *testing.T) {
	g := Synthesize(DefaultParams().Set(ParamIridescence, 0))
	for _, s := range g.ChannelScales() {
		assertNear(t, "scale", s, -150)
	}
	var got []float64
	for _, p := range g.Primitives {
		if p.Kind == PrimDisplacementMap {
			got = append(got, p.Scale)
		}
	}
	if len(got) != 3 {
		t.Fatalf("found %d displacement primitives, want 3", len(got))
	}
	for _, s := range got {
		assertNear(t, "primitive scale", s, -150)
	}
}

func TestSynthesizeCenterDistortion(t *testing.T) {
	tests := []struct {
		distortion float64
		alpha      float64
	}{
		{255, 0},
		{0, 100},
		{68, 187 / 2.55},
	}
	for _, tt := range tests {
		g := Synthesize(DefaultParams().Set(ParamCenterDistortion, tt.distortion))
		assertNear(t, "DistortionAlpha", g.DistortionAlpha(), tt.alpha)
		shapes := g.Layers[LayerDisplacement].Shapes
		overlay := shapes[len(shapes)-1]
		assertNear(t, "overlay fill alpha", overlay.Fill.Alpha, tt.alpha)
	}
}

func TestSynthesizeLayerStructure(t *testing.T) {
	p := DefaultParams()
	g := Synthesize(p)

	shadow := g.Layers[LayerShadow].Shapes
	if len(shadow) != 2 {
		t.Fatalf("shadow shapes = %d, want 2", len(shadow))
	}
	if shadow[0].Fill.Kind != FillRGBA || shadow[0].Fill.R != 0 || shadow[0].Blurred {
		t.Errorf("shadow[0] = %+v, want unblurred translucent black", shadow[0])
	}
	if shadow[1].Fill.Kind != FillHex || shadow[1].Fill.R != 255 || !shadow[1].Blurred || shadow[1].Blur != 5 {
		t.Errorf("shadow[1] = %+v, want white blurred 5px", shadow[1])
	}

	hl := g.Layers[LayerHighlight].Shapes
	if len(hl) != 1 || hl[0].Fill.R != 255 || hl[0].Blur != 15 {
		t.Errorf("highlight = %+v", hl)
	}

	disp := g.Layers[LayerDisplacement]
	if len(disp.Shapes) != 5 || len(disp.Gradients) != 2 {
		t.Fatalf("displacement has %d shapes and %d gradients, want 5 and 2",
			len(disp.Shapes), len(disp.Gradients))
	}
	if disp.Shapes[2].Blend != BlendScreen || disp.Shapes[3].Blend != BlendScreen {
		t.Error("gradient shapes should screen-blend")
	}
	for i, l := range g.Layers {
		for _, s := range l.Shapes {
			if s.Width != p.Width || s.Height != p.Height || s.RX != p.CornerRadius || s.X != 0 || s.Y != 0 {
				t.Errorf("layer %d shape geometry = %+v, want panel rect", i, s)
			}
		}
	}
}

func TestSynthesizeChainOrder(t *testing.T) {
	g := Synthesize(DefaultParams())
	kinds := []PrimitiveKind{
		PrimImage, PrimImage, PrimImage, PrimImage,
		PrimGaussianBlur,
		PrimDisplacementMap, PrimColorMatrix,
		PrimDisplacementMap, PrimColorMatrix,
		PrimDisplacementMap, PrimColorMatrix,
		PrimBlend, PrimBlend,
		PrimGaussianBlur,
		PrimBlend, PrimBlend,
		PrimComposite,
		PrimOffset,
	}
	if len(g.Primitives) != len(kinds) {
		t.Fatalf("chain length = %d, want %d", len(g.Primitives), len(kinds))
	}
	for i, k := range kinds {
		if g.Primitives[i].Kind != k {
			t.Errorf("primitive %d kind = %d, want %d", i, g.Primitives[i].Kind, k)
		}
	}

	tail := g.Primitives[11:]
	checks := []struct {
		in2  string
		mode BlendMode
	}{
		{"disp2", BlendScreen},
		{"disp1", BlendScreen},
		{"", BlendNormal},
		{"highlight", BlendScreen},
		{"shadow", BlendMultiply},
		{"mask", BlendMaskIn},
	}
	for i, c := range checks {
		if tail[i].In2 != c.in2 || tail[i].Mode != c.mode {
			t.Errorf("tail[%d] = in2 %q mode %v, want %q %v", i, tail[i].In2, tail[i].Mode, c.in2, c.mode)
		}
	}
	off := g.Primitives[len(g.Primitives)-1]
	if off.Dx != Margin || off.Dy != Margin {
		t.Errorf("offset = (%v, %v), want (%d, %d)", off.Dx, off.Dy, Margin, Margin)
	}

	pre, ok := g.Primitive("preblur")
	if !ok || pre.In != InputSourceGraphic {
		t.Errorf("preblur = %+v, %v", pre, ok)
	}
	for _, name := range []string{"disp1", "disp2", "disp3"} {
		if _, ok := g.Primitive(name); !ok {
			t.Errorf("missing result %q", name)
		}
	}
}

func TestChannelMatrix(t *testing.T) {
	tests := []struct {
		ch   Channel
		keep int
	}{
		{ChannelR, 0},
		{ChannelG, 6},
		{ChannelB, 12},
	}
	for _, tt := range tests {
		m := ChannelMatrix(tt.ch)
		for i, v := range m {
			want := 0.0
			if i == tt.keep || i == 18 {
				want = 1
			}
			if v != want {
				t.Errorf("channel %d matrix[%d] = %v, want %v", tt.ch, i, v, want)
			}
		}
	}
}

func TestSynthesizePassesThroughOutOfRange(t *testing.T) {
	p := DefaultParams().
		Set(ParamDarknessOpacity, 300).
		Set(ParamLightnessBlur, -4).
		Set(ParamCenterSize, 40)
	g := Synthesize(p)
	assertNear(t, "ShadowAlpha", g.ShadowAlpha(), 300/2.55)
	assertNear(t, "highlight blur", g.Layers[LayerHighlight].Shapes[0].Blur, -4)
	assertNear(t, "FalloffBlur", g.FalloffBlur(), -20)
}

func TestGraphEqual(t *testing.T) {
	a := Synthesize(DefaultParams())
	b := Synthesize(DefaultParams().Set(ParamWidth, 101))
	if a.Equal(b) {
		t.Error("graphs with different widths should differ")
	}
}
