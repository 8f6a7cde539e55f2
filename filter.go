package liquidglass

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for visual effects applied to an offscreen image.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius, offset). Zero means no padding.
	Padding() int
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply output where needed.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	// 4x5 row-major, offsets in elements 4, 9, 14, 19.
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

const displacementShaderSrc = `//kage:unit pixels
package main

var Scale float
var XSelect vec4
var YSelect vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	m := imageSrc1At(src - imageSrc0Origin() + imageSrc1Origin())
	if m.a > 0 {
		m.rgb /= m.a
	} else {
		m = vec4(0)
	}
	d := vec2(dot(m, XSelect), dot(m, YSelect)) - 0.5
	p := src + Scale*d
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	if p.x < origin.x || p.y < origin.y || p.x >= origin.x+size.x || p.y >= origin.y+size.y {
		return vec4(0)
	}
	return imageSrc0At(p)
}
`

// blendShaderSrc evaluates the premultiplied blend formula given by
// blendWeights: Src0 is the top input, Src1 the bottom.
const blendShaderSrc = `//kage:unit pixels
package main

var Weights [5]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	t := imageSrc0At(src)
	b := imageSrc1At(src - imageSrc0Origin() + imageSrc1Origin())
	o := Weights[0]*t + Weights[1]*b + Weights[2]*t*b + Weights[3]*t*b.a + Weights[4]*b*t.a
	o = clamp(o, 0, 1)
	return vec4(min(o.rgb, vec3(o.a)), o.a)
}
`

// --- Lazy shader compilation (no sync.Once; drawing is single-threaded) ---

var (
	colorMatrixShader  *ebiten.Shader
	displacementShader *ebiten.Shader
	blendShader        *ebiten.Shader
)

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("liquidglass: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

func ensureDisplacementShader() *ebiten.Shader {
	if displacementShader == nil {
		s, err := ebiten.NewShader([]byte(displacementShaderSrc))
		if err != nil {
			panic("liquidglass: failed to compile displacement shader: " + err.Error())
		}
		displacementShader = s
	}
	return displacementShader
}

func ensureBlendShader() *ebiten.Shader {
	if blendShader == nil {
		s, err := ebiten.NewShader([]byte(blendShaderSrc))
		if err != nil {
			panic("liquidglass: failed to compile blend shader: " + err.Error())
		}
		blendShader = s
	}
	return blendShader
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32 // persistent buffer to avoid per-frame slice escape
	matrixSlice []float32   // persistent slice header pointing into matrixF32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		uniforms: make(map[string]any, 1),
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Matrix[0] = 1
	f.Matrix[6] = 1
	f.Matrix[12] = 1
	f.Matrix[18] = 1
	return f
}

// NewChannelSelectFilter creates a color matrix filter that keeps one color
// channel and alpha.
func NewChannelSelectFilter(ch Channel) *ColorMatrixFilter {
	f := NewColorMatrixFilter()
	f.Matrix = ChannelMatrix(ch)
	return f
}

// NewTintFilter creates a color matrix filter that mixes amount of c into
// every pixel, weighted by the pixel's alpha.
func NewTintFilter(c Color, amount float64) *ColorMatrixFilter {
	f := NewColorMatrixFilter()
	keep := 1 - amount
	f.Matrix = [20]float64{
		keep, 0, 0, c.R * amount, 0,
		0, keep, 0, c.G * amount, 0,
		0, 0, keep, c.B * amount, 0,
		0, 0, 0, 1, 0,
	}
	return f
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	if src == nil || dst == nil {
		return
	}
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// Padding returns 0; color matrix transforms don't expand the image bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// --- DisplacementFilter ---

// DisplacementFilter moves each pixel of the source by a vector read from
// Map: offset = Scale * (channel - 0.5), with the channels chosen by
// XChannel and YChannel ('R', 'G', 'B' or 'A'). Map must have the same size
// as the source.
type DisplacementFilter struct {
	Map      *ebiten.Image
	Scale    float64
	XChannel byte
	YChannel byte
	uniforms map[string]any
	xSel     [4]float32
	ySel     [4]float32
	shaderOp ebiten.DrawRectShaderOptions
}

// NewDisplacementFilter creates a displacement filter reading x from blue
// and y from green.
func NewDisplacementFilter(m *ebiten.Image, scale float64) *DisplacementFilter {
	f := &DisplacementFilter{
		Map:      m,
		Scale:    scale,
		XChannel: 'B',
		YChannel: 'G',
		uniforms: make(map[string]any, 3),
	}
	f.uniforms["XSelect"] = f.xSel[:]
	f.uniforms["YSelect"] = f.ySel[:]
	return f
}

func selector(dst *[4]float32, ch byte) {
	*dst = [4]float32{}
	dst[channelIndex(ch)] = 1
}

// Apply renders the displaced source into dst. A nil Map is a plain copy.
func (f *DisplacementFilter) Apply(src, dst *ebiten.Image) {
	if src == nil || dst == nil {
		return
	}
	if f.Map == nil {
		dst.DrawImage(src, nil)
		return
	}
	selector(&f.xSel, f.XChannel)
	selector(&f.ySel, f.YChannel)
	f.uniforms["Scale"] = float32(f.Scale)
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Images[1] = f.Map
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), ensureDisplacementShader(), &f.shaderOp)
}

// Padding returns half the displacement scale, the farthest a pixel can move.
func (f *DisplacementFilter) Padding() int {
	return int(math.Ceil(math.Abs(f.Scale) / 2))
}

// --- BlendFilter ---

// BlendFilter blends the source over Bottom with Mode, using the same
// premultiplied formulas as the CPU executor. Bottom must have the same size
// as the source.
type BlendFilter struct {
	Bottom   *ebiten.Image
	Mode     BlendMode
	uniforms map[string]any
	weights  [5]float32
	shaderOp ebiten.DrawRectShaderOptions
}

// NewBlendFilter creates a blend filter over bottom.
func NewBlendFilter(bottom *ebiten.Image, mode BlendMode) *BlendFilter {
	f := &BlendFilter{Bottom: bottom, Mode: mode, uniforms: make(map[string]any, 1)}
	f.uniforms["Weights"] = f.weights[:]
	return f
}

// shaderWeights converts blendWeights for a shader uniform.
func shaderWeights(mode BlendMode) [5]float32 {
	var out [5]float32
	for i, w := range blendWeights(mode) {
		out[i] = float32(w)
	}
	return out
}

// Apply renders the blend of src over Bottom into dst. A nil Bottom blends
// over transparent black.
func (f *BlendFilter) Apply(src, dst *ebiten.Image) {
	if src == nil || dst == nil {
		return
	}
	bounds := src.Bounds()
	bottom := f.Bottom
	if bottom == nil {
		bottom = ebiten.NewImage(bounds.Dx(), bounds.Dy())
		defer bottom.Deallocate()
	}
	f.weights = shaderWeights(f.Mode)
	f.shaderOp.Images[0] = src
	f.shaderOp.Images[1] = bottom
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), ensureBlendShader(), &f.shaderOp)
}

// Padding returns 0.
func (f *BlendFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// No Kage shader needed: bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	return &BlurFilter{Radius: max(radius, 0)}
}

// BlurRadius converts a Gaussian standard deviation into the radius a
// BlurFilter needs for a visually similar result. Non-positive sigma is 0.
func BlurRadius(sigma float64) int {
	if !(sigma > 0) {
		return 0
	}
	return int(math.Ceil(2 * sigma))
}

// drawScaled draws src stretched over the whole of dst with linear filtering.
func (f *BlurFilter) drawScaled(src, dst *ebiten.Image) {
	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// ensureTemp returns the i-th scratch image at size (w, h), reallocating on
// size changes and clearing otherwise.
func (f *BlurFilter) ensureTemp(i, w, h int) *ebiten.Image {
	t := f.temps[i]
	if t != nil && t.Bounds().Dx() == w && t.Bounds().Dy() == h {
		t.Clear()
		return t
	}
	if t != nil {
		t.Deallocate()
	}
	f.temps[i] = ebiten.NewImage(w, h)
	return f.temps[i]
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	if src == nil || dst == nil {
		return
	}
	if f.Radius <= 0 {
		f.imgOp.GeoM.Reset()
		f.imgOp.ColorScale.Reset()
		f.imgOp.Filter = ebiten.FilterNearest
		dst.DrawImage(src, &f.imgOp)
		return
	}

	passes := max(int(math.Ceil(math.Log2(float64(f.Radius)))), 1)
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	current := src
	for i := 0; i < passes; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		t := f.ensureTemp(i, w, h)
		f.drawScaled(current, t)
		current = t
	}
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		f.drawScaled(current, f.temps[i])
		current = f.temps[i]
	}
	f.drawScaled(current, dst)
}

// Padding returns the blur radius; the offscreen buffer is expanded to avoid clipping.
func (f *BlurFilter) Padding() int { return f.Radius }

// Dispose releases the scratch images.
func (f *BlurFilter) Dispose() {
	for i, t := range f.temps {
		if t != nil {
			t.Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:0]
}

// --- GlassFilter ---

// GlassFilter runs a synthesized Graph on the GPU. The source passed to Apply
// is the backdrop region (see Graph.RegionSize); the result is drawn into dst
// at the same origin.
type GlassFilter struct {
	graph       Graph
	layers      [layerCount]*ebiten.Image
	layersDirty bool

	pool     renderTexturePool
	blurs    []*BlurFilter
	matrix   *ColorMatrixFilter
	displace *DisplacementFilter
	blend    *BlendFilter
	imgOp    ebiten.DrawImageOptions

	// Rebuilds counts layer uploads; exposed for debug stats.
	Rebuilds int
}

// NewGlassFilter creates a filter for g. Layer textures are uploaded lazily
// on the first Apply.
func NewGlassFilter(g Graph) *GlassFilter {
	return &GlassFilter{
		graph:       g,
		layersDirty: true,
		matrix:      NewColorMatrixFilter(),
		displace:    NewDisplacementFilter(nil, 0),
		blend:       NewBlendFilter(nil, BlendNormal),
	}
}

// Graph returns the graph the filter renders.
func (f *GlassFilter) Graph() Graph { return f.graph }

// SetGraph replaces the graph. Equal graphs are ignored so the layer
// textures are only rebuilt when something changed.
func (f *GlassFilter) SetGraph(g Graph) {
	if f.graph.Equal(g) {
		return
	}
	f.graph = g
	f.layersDirty = true
}

// Padding returns Margin: the filter reads that far above and left of the panel.
func (f *GlassFilter) Padding() int { return Margin }

func (f *GlassFilter) uploadLayers() {
	for i := range f.layers {
		if f.layers[i] != nil {
			f.layers[i].Deallocate()
			f.layers[i] = nil
		}
	}
	w, h := layerSize(f.graph.Width(), f.graph.Height())
	if w > 0 && h > 0 {
		for i, img := range RasterizeLayers(f.graph) {
			f.layers[i] = ebiten.NewImageFromImage(img)
		}
	}
	f.layersDirty = false
	f.Rebuilds++
	Logger().Debug("glass layers rebuilt", "width", w, "height", h, "rebuilds", f.Rebuilds)
}

// glassRun holds the per-Apply state: acquired images and named results.
type glassRun struct {
	f        *GlassFilter
	w, h     int
	source   *ebiten.Image
	prev     *ebiten.Image
	results  map[string]*ebiten.Image
	acquired []*ebiten.Image
	blurIdx  int
}

func (r *glassRun) newImage() *ebiten.Image {
	img := r.f.pool.Acquire(r.w, r.h)
	r.acquired = append(r.acquired, img)
	return img
}

func (r *glassRun) input(name string) *ebiten.Image {
	switch name {
	case InputPrevious:
		if r.prev != nil {
			return r.prev
		}
		return r.source
	case InputSourceGraphic:
		return r.source
	}
	if img, ok := r.results[name]; ok {
		return img
	}
	panic("liquidglass: unknown filter input " + name)
}

func (r *glassRun) blur() *BlurFilter {
	f := r.f
	if r.blurIdx == len(f.blurs) {
		f.blurs = append(f.blurs, NewBlurFilter(0))
	}
	b := f.blurs[r.blurIdx]
	r.blurIdx++
	return b
}

func (r *glassRun) copyInto(dst, src *ebiten.Image, blend BlendMode, dx, dy float64) {
	op := &r.f.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(dx, dy)
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterNearest
	op.Blend = blend.EbitenBlend()
	dst.DrawImage(src, op)
}

func (r *glassRun) run(p Primitive) *ebiten.Image {
	out := r.newImage()
	switch p.Kind {
	case PrimImage:
		if l := r.f.layers[p.Layer]; l != nil {
			r.copyInto(out, l, BlendNone, 0, 0)
		}
	case PrimGaussianBlur:
		b := r.blur()
		b.Radius = BlurRadius(p.StdDeviation)
		b.Apply(r.input(p.In), out)
	case PrimDisplacementMap:
		d := r.f.displace
		d.Map = r.input(p.In2)
		d.Scale = p.Scale
		d.XChannel, d.YChannel = p.XChannel, p.YChannel
		d.Apply(r.input(p.In), out)
	case PrimColorMatrix:
		r.f.matrix.Matrix = p.Matrix
		r.f.matrix.Apply(r.input(p.In), out)
	case PrimBlend, PrimComposite:
		b := r.f.blend
		b.Bottom = r.input(p.In2)
		b.Mode = p.Mode
		b.Apply(r.input(p.In), out)
	case PrimOffset:
		r.copyInto(out, r.input(p.In), BlendNone, p.Dx, p.Dy)
	}
	return out
}

// Apply runs the graph on src and draws the result over dst. Missing images
// or an empty graph leave dst untouched.
func (f *GlassFilter) Apply(src, dst *ebiten.Image) {
	if src == nil || dst == nil {
		return
	}
	w, h := f.graph.RegionSize()
	if f.graph.Width() <= 0 || f.graph.Height() <= 0 || w <= 0 || h <= 0 {
		return
	}
	if f.layersDirty {
		f.uploadLayers()
	}

	r := glassRun{f: f, w: w, h: h, results: make(map[string]*ebiten.Image, 12)}
	r.source = r.newImage()
	sb := src.Bounds()
	f.imgOp.GeoM.Reset()
	f.imgOp.GeoM.Translate(float64(-sb.Min.X), float64(-sb.Min.Y))
	f.imgOp.ColorScale.Reset()
	f.imgOp.Blend = ebiten.BlendCopy
	r.source.DrawImage(src, &f.imgOp)

	for _, p := range f.graph.Primitives {
		out := r.run(p)
		if p.Result != "" {
			r.results[p.Result] = out
		}
		r.prev = out
	}

	if r.prev != nil {
		db := dst.Bounds()
		r.copyInto(dst, r.prev, BlendNormal, float64(db.Min.X), float64(db.Min.Y))
	}
	for _, img := range r.acquired {
		f.pool.Release(img)
	}
}

// Dispose releases GPU resources held by the filter.
func (f *GlassFilter) Dispose() {
	for i := range f.layers {
		if f.layers[i] != nil {
			f.layers[i].Deallocate()
			f.layers[i] = nil
		}
	}
	for _, b := range f.blurs {
		b.Dispose()
	}
	f.pool.Dispose()
	f.layersDirty = true
}

// --- Filter chain helpers ---

// filterChainPadding returns the cumulative padding required by a slice of
// filters: each filter may grow the image by its own padding.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// applyFilters runs a filter chain on src, ping-ponging between two pooled
// images. src itself is never written. Returns src when filters is empty,
// otherwise a pooled image the caller must release.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var spare *ebiten.Image
	for _, f := range filters {
		out := spare
		if out == nil {
			out = pool.Acquire(w, h)
		} else {
			out.Clear()
		}
		f.Apply(current, out)
		spare = nil
		if current != src {
			spare = current
		}
		current = out
	}
	if spare != nil {
		pool.Release(spare)
	}
	return current
}
