package liquidglass

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/convolution"
	"golang.org/x/image/vector"
)

// kappa is the cubic Bézier handle length for a quarter circle.
const kappa = 0.5522847498

// pixel is one premultiplied RGBA sample with components in [0, 1].
type pixel [4]float64

func pixelAt(img *image.RGBA, x, y int) pixel {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return pixel{}
	}
	i := img.PixOffset(x, y)
	s := img.Pix[i : i+4 : i+4]
	return pixel{
		float64(s[0]) / 255,
		float64(s[1]) / 255,
		float64(s[2]) / 255,
		float64(s[3]) / 255,
	}
}

func setPixel(img *image.RGBA, x, y int, p pixel) {
	i := img.PixOffset(x, y)
	s := img.Pix[i : i+4 : i+4]
	a := clamp01(p[3])
	for c := 0; c < 3; c++ {
		// Premultiplied color may not exceed alpha.
		s[c] = uint8(math.Min(clamp01(p[c]), a)*255 + 0.5)
	}
	s[3] = uint8(a*255 + 0.5)
}

// blendWeights returns the premultiplied feBlend and feComposite formula for
// mode as weights on the terms t, b, t*b, t*ba and b*ta, where t is the top
// sample, b the bottom sample and ta, ba their alphas. The same weights
// apply to all four channels. The CPU executor and the GPU blend shader both
// read them.
func blendWeights(mode BlendMode) [5]float64 {
	switch mode {
	case BlendScreen:
		return [5]float64{1, 1, -1, 0, 0}
	case BlendMultiply:
		return [5]float64{1, 1, 1, -1, -1}
	case BlendMaskIn:
		return [5]float64{0, 0, 0, 1, 0}
	case BlendNone:
		return [5]float64{1, 0, 0, 0, 0}
	default:
		return [5]float64{1, 1, 0, 0, -1}
	}
}

// blendPixel composites top over bottom with the given mode.
func blendPixel(mode BlendMode, top, bottom pixel) pixel {
	w := blendWeights(mode)
	ta, ba := top[3], bottom[3]
	var out pixel
	for c := 0; c < 4; c++ {
		t, b := top[c], bottom[c]
		out[c] = w[0]*t + w[1]*b + w[2]*t*b + w[3]*t*ba + w[4]*b*ta
	}
	return out
}

// GaussianBlurKernel returns a 1D Gaussian kernel for sigma with a radius of
// ceil(4*sigma).
func GaussianBlurKernel(sigma float64) *convolution.Kernel {
	sfactor := -0.5 / (sigma * sigma)
	radius := math.Ceil(4 * sigma)
	length := 2*int(radius) + 1

	k := convolution.NewKernel(length, 1)
	for i, x := 0, -radius; i < length; i, x = i+1, x+1 {
		k.Matrix[i] = math.Exp(sfactor * (x * x))
	}
	return k
}

// gaussianBlur blurs premultiplied img with a separable Gaussian. sigma <= 0
// returns a copy. Samples beyond the edge repeat the edge pixel, so callers
// that need transparent surroundings pad the image first.
func gaussianBlur(img image.Image, sigma float64) *image.RGBA {
	if !(sigma > 0) {
		return clone.AsRGBA(img)
	}
	k := GaussianBlurKernel(sigma).Normalized()
	opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}
	out := convolution.Convolve(img, k, &opts)
	return convolution.Convolve(out, k.Transposed(), &opts)
}

// blurPadding is how far a blurred shape is allowed to bleed.
func blurPadding(sigma float64) int {
	if !(sigma > 0) {
		return 0
	}
	return int(math.Ceil(3 * sigma))
}

// roundedRectMask rasterizes a rounded rect into an alpha coverage mask of
// size w x h. The radius is clamped to half the shorter side.
func roundedRectMask(w, h int, x, y, rw, rh, rx float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 || rw <= 0 || rh <= 0 {
		return mask
	}
	r := math.Max(0, math.Min(rx, math.Min(rw, rh)/2))
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+rw), float32(y+rh)
	rr := float32(r)
	c := float32(r * (1 - kappa))

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	z.MoveTo(x0+rr, y0)
	z.LineTo(x1-rr, y0)
	if rr > 0 {
		z.CubeTo(x1-c, y0, x1, y0+c, x1, y0+rr)
	}
	z.LineTo(x1, y1-rr)
	if rr > 0 {
		z.CubeTo(x1, y1-c, x1-c, y1, x1-rr, y1)
	}
	z.LineTo(x0+rr, y1)
	if rr > 0 {
		z.CubeTo(x0+c, y1, x0, y1-c, x0, y1-rr)
	}
	z.LineTo(x0, y0+rr)
	if rr > 0 {
		z.CubeTo(x0, y0+c, x0+c, y0, x0+rr, y0)
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// gradientColor samples g at t in [0, 1], returning straight RGB in [0, 1].
// Values outside the stops take the nearest stop's color.
func gradientColor(g LinearGradient, t float64) (r, gr, b float64) {
	if len(g.Stops) == 0 {
		return 0, 0, 0
	}
	rgb := func(s GradientStop) (float64, float64, float64) {
		return float64(s.R) / 255, float64(s.G) / 255, float64(s.B) / 255
	}
	pct := t * 100
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if pct <= first.Offset {
		return rgb(first)
	}
	if pct >= last.Offset {
		return rgb(last)
	}
	for i := 1; i < len(g.Stops); i++ {
		a, z := g.Stops[i-1], g.Stops[i]
		if pct > z.Offset {
			continue
		}
		span := z.Offset - a.Offset
		f := 0.0
		if span > 0 {
			f = (pct - a.Offset) / span
		}
		ar, ag, ab := rgb(a)
		zr, zg, zb := rgb(z)
		return ar + (zr-ar)*f, ag + (zg-ag)*f, ab + (zb-ab)*f
	}
	return rgb(last)
}

// gradientT projects a point, given in shape-relative fractions, onto the
// gradient axis.
func gradientT(g LinearGradient, fx, fy float64) float64 {
	dx := (g.X2 - g.X1) / 100
	dy := (g.Y2 - g.Y1) / 100
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0
	}
	return ((fx-g.X1/100)*dx + (fy-g.Y1/100)*dy) / l2
}

// paintShape draws s into a fresh canvas of size w x h with the shape
// translated by (ox, oy).
func paintShape(s Shape, grads map[string]LinearGradient, w, h int, ox, oy float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	mask := roundedRectMask(w, h, s.X+ox, s.Y+oy, s.Width, s.Height, s.RX)
	alpha := clamp01(s.Fill.Alpha / 100)
	grad, isGrad := grads[s.Fill.Gradient]
	isGrad = isGrad && s.Fill.Kind == FillGradient

	fr, fg, fb := float64(s.Fill.R)/255, float64(s.Fill.G)/255, float64(s.Fill.B)/255
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := float64(mask.AlphaAt(x, y).A) / 255
			if cov == 0 {
				continue
			}
			r, g, b := fr, fg, fb
			if isGrad {
				fx := (float64(x) + 0.5 - s.X - ox) / s.Width
				fy := (float64(y) + 0.5 - s.Y - oy) / s.Height
				r, g, b = gradientColor(grad, gradientT(grad, fx, fy))
			}
			a := alpha * cov
			setPixel(out, x, y, pixel{r * a, g * a, b * a, a})
		}
	}
	return out
}

// layerSize returns the pixel size of a layer, rounding fractional sizes up.
func layerSize(width, height float64) (int, int) {
	w := int(math.Ceil(width))
	h := int(math.Ceil(height))
	return max(w, 0), max(h, 0)
}

// RasterizeLayer renders l to a premultiplied RGBA image of its own size.
// Shapes are painted in order; blurred shapes bleed into a padded scratch
// canvas first so the blur sees transparent surroundings.
func RasterizeLayer(l Layer) *image.RGBA {
	w, h := layerSize(l.Width, l.Height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	grads := make(map[string]LinearGradient, len(l.Gradients))
	for _, g := range l.Gradients {
		grads[g.ID] = g
	}
	for _, s := range l.Shapes {
		sigma := 0.0
		if s.Blurred {
			sigma = s.Blur
		}
		pad := blurPadding(sigma)
		src := paintShape(s, grads, w+2*pad, h+2*pad, float64(pad), float64(pad))
		if pad > 0 {
			src = gaussianBlur(src, sigma)
		}
		mode := BlendNormal
		if s.Blend == BlendScreen {
			mode = BlendScreen
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				top := pixelAt(src, x+pad, y+pad)
				if top[3] == 0 && mode == BlendNormal {
					continue
				}
				setPixel(dst, x, y, blendPixel(mode, top, pixelAt(dst, x, y)))
			}
		}
	}
	return dst
}

// RasterizeLayers renders all four layers of g.
func RasterizeLayers(g Graph) [layerCount]*image.RGBA {
	var out [layerCount]*image.RGBA
	for i, l := range g.Layers {
		out[i] = RasterizeLayer(l)
	}
	return out
}
