package liquidglass

// Margin is the fixed offset, in pixels, applied at the end of the filter
// chain. The backdrop region extends this far above and left of the panel so
// blurs can sample outside the nominal box without clipping.
const Margin = 43

// displacementBase is the scale of the reference (green) channel.
const displacementBase = -150

// Layer indices into Graph.Layers.
const (
	LayerShadow       = iota // dark contact shadow, multiplied in
	LayerHighlight           // bright highlight, screened in
	LayerMask                // opaque silhouette for composite "in"
	LayerDisplacement        // x/y displacement vectors in B/G

	layerCount
)

// layerNames are also the primitive result names of the feImage steps.
var layerNames = [layerCount]string{"shadow", "highlight", "mask", "displacement"}

// FillKind distinguishes how a Shape is painted.
type FillKind uint8

const (
	FillHex      FillKind = iota // opaque color, written as #RGB / #RRGGBB
	FillRGBA                     // rgb(r g b / a%) with a percentage alpha
	FillGradient                 // url(#id) reference to a LinearGradient
)

// Fill is the paint of one shape. Alpha is a percentage and is not clamped.
type Fill struct {
	Kind     FillKind
	R, G, B  uint8
	Alpha    float64
	Gradient string // gradient ID for FillGradient
}

// GradientStop is one color stop. Offset is a percentage along the axis.
type GradientStop struct {
	Offset  float64
	R, G, B uint8
}

// LinearGradient runs from (X1, Y1) to (X2, Y2), given as percentages of the
// shape's bounding box.
type LinearGradient struct {
	ID             string
	X1, Y1, X2, Y2 float64
	Stops          []GradientStop
}

// Shape is a rounded rectangle with a fill, an optional CSS blur and a
// mix-blend mode (BlendNormal or BlendScreen).
type Shape struct {
	X, Y, Width, Height float64
	RX                  float64
	Fill                Fill
	Blurred             bool
	Blur                float64
	Blend               BlendMode
}

// Layer is one auxiliary raster image of the graph: a Width x Height canvas
// holding shapes painted in order.
type Layer struct {
	Name          string
	Width, Height float64
	Gradients     []LinearGradient
	Shapes        []Shape
}

// PrimitiveKind identifies a filter primitive.
type PrimitiveKind uint8

const (
	PrimImage           PrimitiveKind = iota // feImage
	PrimGaussianBlur                         // feGaussianBlur
	PrimDisplacementMap                      // feDisplacementMap
	PrimColorMatrix                          // feColorMatrix type="matrix"
	PrimBlend                                // feBlend
	PrimComposite                            // feComposite
	PrimOffset                               // feOffset
)

// Input names with special meaning. An empty In means "the previous result".
const (
	InputSourceGraphic = "SourceGraphic"
	InputPrevious      = ""
)

// Primitive is one step of the filter chain. Only the fields relevant to
// Kind are set.
type Primitive struct {
	Kind   PrimitiveKind
	In     string
	In2    string
	Result string

	Layer        int         // PrimImage
	StdDeviation float64     // PrimGaussianBlur
	Scale        float64     // PrimDisplacementMap
	XChannel     byte        // PrimDisplacementMap: 'R', 'G', 'B' or 'A'
	YChannel     byte        // PrimDisplacementMap
	Matrix       [20]float64 // PrimColorMatrix, row-major 4x5
	Mode         BlendMode   // PrimBlend, PrimComposite (BlendMaskIn)
	Dx, Dy       float64     // PrimOffset
}

// Channel selects one color channel of the fringing split.
type Channel uint8

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

// ChannelMatrix returns the 4x5 color matrix that keeps ch and alpha and
// zeroes the other color channels.
func ChannelMatrix(ch Channel) [20]float64 {
	var m [20]float64
	switch ch {
	case ChannelR:
		m[0] = 1
	case ChannelG:
		m[6] = 1
	case ChannelB:
		m[12] = 1
	}
	m[18] = 1
	return m
}

// Graph is the synthesized description of the glass filter. It is a value:
// Synthesize builds a new one each time and nothing mutates it afterwards.
// The slices inside MUST NOT be mutated by callers.
type Graph struct {
	Params     Params
	Layers     [layerCount]Layer
	Primitives []Primitive
}

// Synthesize builds the filter graph for p. It is pure: identical inputs
// produce identical graphs.
func Synthesize(p Params) Graph {
	g := Graph{Params: p}
	g.Layers[LayerShadow] = shadowLayer(p)
	g.Layers[LayerHighlight] = highlightLayer(p)
	g.Layers[LayerMask] = maskLayer(p)
	g.Layers[LayerDisplacement] = displacementLayer(p)
	g.Primitives = buildChain(p)
	return g
}

func panelShape(p Params, fill Fill) Shape {
	return Shape{Width: p.Width, Height: p.Height, RX: p.CornerRadius, Fill: fill}
}

func rgbaFill(r, g, b uint8, alphaPct float64) Fill {
	return Fill{Kind: FillRGBA, R: r, G: g, B: b, Alpha: alphaPct}
}

func hexFill(r, g, b uint8) Fill {
	return Fill{Kind: FillHex, R: r, G: g, B: b, Alpha: 100}
}

func newLayer(name string, p Params) Layer {
	return Layer{Name: name, Width: p.Width, Height: p.Height}
}

// shadowLayer paints a translucent black rect and a blurred white rect on
// top. Multiplied into the result, the white interior is neutral and only
// the blurred rim darkens.
func shadowLayer(p Params) Layer {
	l := newLayer(layerNames[LayerShadow], p)
	dark := panelShape(p, rgbaFill(0, 0, 0, p.DarknessOpacity/2.55))
	white := panelShape(p, hexFill(0xFF, 0xFF, 0xFF))
	white.Blurred = true
	white.Blur = p.DarknessBlur
	l.Shapes = []Shape{dark, white}
	return l
}

func highlightLayer(p Params) Layer {
	l := newLayer(layerNames[LayerHighlight], p)
	s := panelShape(p, rgbaFill(255, 255, 255, p.LightnessOpacity/2.55))
	s.Blurred = true
	s.Blur = p.LightnessBlur
	l.Shapes = []Shape{s}
	return l
}

func maskLayer(p Params) Layer {
	l := newLayer(layerNames[LayerMask], p)
	l.Shapes = []Shape{panelShape(p, hexFill(0, 0, 0))}
	return l
}

// displacementLayer encodes x offsets in blue and y offsets in green. The
// blurred gray overlay pulls the centre toward 0.5 (no displacement), so the
// refraction is strongest at the rim.
func displacementLayer(p Params) Layer {
	l := newLayer(layerNames[LayerDisplacement], p)
	l.Gradients = []LinearGradient{
		{ID: "gradient1", X1: 0, Y1: 0, X2: 100, Y2: 0, Stops: []GradientStop{
			{Offset: 0}, {Offset: 100, B: 0xFF},
		}},
		{ID: "gradient2", X1: 0, Y1: 0, X2: 0, Y2: 100, Stops: []GradientStop{
			{Offset: 0}, {Offset: 100, G: 0xFF},
		}},
	}
	base := panelShape(p, hexFill(0x7F, 0x7F, 0x7F))
	black := panelShape(p, hexFill(0, 0, 0))
	gx := panelShape(p, Fill{Kind: FillGradient, Alpha: 100, Gradient: "gradient1"})
	gx.Blend = BlendScreen
	gy := panelShape(p, Fill{Kind: FillGradient, Alpha: 100, Gradient: "gradient2"})
	gy.Blend = BlendScreen
	falloff := panelShape(p, rgbaFill(127, 127, 127, (255-p.CenterDistortion)/2.55))
	falloff.Blurred = true
	falloff.Blur = 20 - p.CenterSize
	l.Shapes = []Shape{base, black, gx, gy, falloff}
	return l
}

func buildChain(p Params) []Primitive {
	chain := make([]Primitive, 0, 18)
	for i := 0; i < layerCount; i++ {
		chain = append(chain, Primitive{Kind: PrimImage, Layer: i, Result: layerNames[i]})
	}
	chain = append(chain, Primitive{
		Kind:         PrimGaussianBlur,
		In:           InputSourceGraphic,
		StdDeviation: p.PreBlur / 10,
		Result:       "preblur",
	})
	scales := channelScales(p.Iridescence)
	for ch := ChannelR; ch <= ChannelB; ch++ {
		chain = append(chain,
			Primitive{
				Kind:     PrimDisplacementMap,
				In:       "preblur",
				In2:      layerNames[LayerDisplacement],
				Scale:    scales[ch],
				XChannel: 'B',
				YChannel: 'G',
			},
			Primitive{
				Kind:   PrimColorMatrix,
				Matrix: ChannelMatrix(ch),
				Result: channelResult(ch),
			},
		)
	}
	chain = append(chain,
		Primitive{Kind: PrimBlend, In2: channelResult(ChannelG), Mode: BlendScreen},
		Primitive{Kind: PrimBlend, In2: channelResult(ChannelR), Mode: BlendScreen},
		Primitive{Kind: PrimGaussianBlur, StdDeviation: p.PostBlur / 10},
		Primitive{Kind: PrimBlend, In2: layerNames[LayerHighlight], Mode: BlendScreen},
		Primitive{Kind: PrimBlend, In2: layerNames[LayerShadow], Mode: BlendMultiply},
		Primitive{Kind: PrimComposite, In2: layerNames[LayerMask], Mode: BlendMaskIn},
		Primitive{Kind: PrimOffset, Dx: Margin, Dy: Margin},
	)
	return chain
}

func channelResult(ch Channel) string {
	return [...]string{"disp1", "disp2", "disp3"}[ch]
}

func channelScales(iridescence float64) [3]float64 {
	return [3]float64{
		displacementBase + iridescence/10,
		displacementBase,
		displacementBase - iridescence/10,
	}
}

// Width returns the panel width in pixels.
func (g Graph) Width() float64 { return g.Params.Width }

// Height returns the panel height in pixels.
func (g Graph) Height() float64 { return g.Params.Height }

// CornerRadius returns the rounded-rect radius shared by every layer shape.
func (g Graph) CornerRadius() float64 { return g.Params.CornerRadius }

// PreBlur returns the stdDeviation applied to the backdrop before displacement.
func (g Graph) PreBlur() float64 { return g.Params.PreBlur / 10 }

// PostBlur returns the stdDeviation applied after the channels recombine.
func (g Graph) PostBlur() float64 { return g.Params.PostBlur / 10 }

// ChannelScales returns the displacement scales for the R, G and B copies.
func (g Graph) ChannelScales() [3]float64 { return channelScales(g.Params.Iridescence) }

// ShadowAlpha returns the shadow layer's alpha percentage.
func (g Graph) ShadowAlpha() float64 { return g.Params.DarknessOpacity / 2.55 }

// HighlightAlpha returns the highlight layer's alpha percentage.
func (g Graph) HighlightAlpha() float64 { return g.Params.LightnessOpacity / 2.55 }

// DistortionAlpha returns the alpha percentage of the gray overlay that
// masks distortion toward the centre.
func (g Graph) DistortionAlpha() float64 { return (255 - g.Params.CenterDistortion) / 2.55 }

// FalloffBlur returns the blur radius of the centre overlay in pixels.
func (g Graph) FalloffBlur() float64 { return 20 - g.Params.CenterSize }

// Equal reports whether g and other describe the same filter. Synthesize is
// pure, so equal inputs mean equal graphs.
func (g Graph) Equal(other Graph) bool {
	return g.Params == other.Params
}

// Primitive returns the first primitive producing result, if any.
func (g Graph) Primitive(result string) (Primitive, bool) {
	for _, p := range g.Primitives {
		if p.Result == result {
			return p, true
		}
	}
	return Primitive{}, false
}
