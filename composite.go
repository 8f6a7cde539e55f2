package liquidglass

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/clone"
)

// RegionSize returns the pixel size of the backdrop region the filter reads:
// the panel box grown by Margin above and to the left.
func (g Graph) RegionSize() (int, int) {
	return layerSize(g.Width()+Margin, g.Height()+Margin)
}

// executor runs a primitive chain on premultiplied RGBA images of one size.
type executor struct {
	g       Graph
	w, h    int
	source  *image.RGBA
	layers  [layerCount]*image.RGBA
	results map[string]*image.RGBA
	prev    *image.RGBA
}

// Render runs the filter chain on the CPU. backdrop is the region behind the
// panel starting Margin pixels above and left of it; its top-left corner is
// backdrop.Bounds().Min. Anything outside backdrop reads as transparent.
// The result has the size returned by g.RegionSize.
func Render(g Graph, backdrop image.Image) *image.RGBA {
	w, h := g.RegionSize()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	if backdrop != nil {
		draw.Draw(src, src.Rect, backdrop, backdrop.Bounds().Min, draw.Src)
	}
	return renderWithLayers(g, src, RasterizeLayers(g))
}

func renderWithLayers(g Graph, src *image.RGBA, layers [layerCount]*image.RGBA) *image.RGBA {
	e := &executor{
		g:       g,
		w:       src.Rect.Dx(),
		h:       src.Rect.Dy(),
		source:  src,
		layers:  layers,
		results: make(map[string]*image.RGBA, 12),
	}
	for _, p := range g.Primitives {
		out := e.run(p)
		if p.Result != "" {
			e.results[p.Result] = out
		}
		e.prev = out
	}
	if e.prev == nil {
		return image.NewRGBA(src.Rect)
	}
	return e.prev
}

// RenderPanel renders the glass panel whose top-left corner sits at origin in
// backdrop, and returns a copy of backdrop with the filtered region drawn
// over it.
func RenderPanel(g Graph, backdrop image.Image, origin image.Point) *image.RGBA {
	out := clone.AsRGBA(backdrop)
	regionMin := origin.Sub(image.Pt(Margin, Margin))
	w, h := g.RegionSize()
	region := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(region, region.Rect, backdrop, regionMin, draw.Src)
	res := Render(g, region)
	draw.Draw(out, image.Rectangle{Min: regionMin, Max: regionMin.Add(res.Rect.Size())},
		res, image.Point{}, draw.Over)
	return out
}

func (e *executor) input(name string) *image.RGBA {
	switch name {
	case InputPrevious:
		if e.prev != nil {
			return e.prev
		}
		return e.source
	case InputSourceGraphic:
		return e.source
	}
	if img, ok := e.results[name]; ok {
		return img
	}
	panic(fmt.Sprintf("liquidglass: unknown filter input %q", name))
}

func (e *executor) newImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, e.w, e.h))
}

func (e *executor) run(p Primitive) *image.RGBA {
	switch p.Kind {
	case PrimImage:
		out := e.newImage()
		if l := e.layers[p.Layer]; l != nil {
			draw.Draw(out, l.Rect, l, image.Point{}, draw.Src)
		}
		return out
	case PrimGaussianBlur:
		return blurTransparent(e.input(p.In), p.StdDeviation)
	case PrimDisplacementMap:
		return e.displace(e.input(p.In), e.input(p.In2), p)
	case PrimColorMatrix:
		return e.colorMatrix(e.input(p.In), p.Matrix)
	case PrimBlend, PrimComposite:
		return e.blend(e.input(p.In), e.input(p.In2), p.Mode)
	case PrimOffset:
		return e.offset(e.input(p.In), p.Dx, p.Dy)
	}
	panic(fmt.Sprintf("liquidglass: unknown primitive kind %d", p.Kind))
}

// blurTransparent blurs img as if it were surrounded by transparent pixels.
func blurTransparent(img *image.RGBA, sigma float64) *image.RGBA {
	pad := blurPadding(sigma)
	if pad == 0 {
		return clone.AsRGBA(img)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	padded := image.NewRGBA(image.Rect(0, 0, w+2*pad, h+2*pad))
	draw.Draw(padded, image.Rect(pad, pad, pad+w, pad+h), img, img.Rect.Min, draw.Src)
	blurred := gaussianBlur(padded, sigma)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Rect, blurred, image.Pt(pad, pad), draw.Src)
	return out
}

func channelIndex(c byte) int {
	switch c {
	case 'R':
		return 0
	case 'G':
		return 1
	case 'B':
		return 2
	}
	return 3
}

// unpremultiply returns straight-alpha components.
func unpremultiply(p pixel) pixel {
	if p[3] == 0 {
		return pixel{}
	}
	return pixel{p[0] / p[3], p[1] / p[3], p[2] / p[3], p[3]}
}

// displace samples in at (x + s*(XC-0.5), y + s*(YC-0.5)), reading the map
// unpremultiplied. Samples outside in are transparent.
func (e *executor) displace(in, m *image.RGBA, p Primitive) *image.RGBA {
	out := e.newImage()
	xc, yc := channelIndex(p.XChannel), channelIndex(p.YChannel)
	for y := 0; y < e.h; y++ {
		for x := 0; x < e.w; x++ {
			mp := unpremultiply(pixelAt(m, x, y))
			sx := int(math.Floor(float64(x) + 0.5 + p.Scale*(mp[xc]-0.5)))
			sy := int(math.Floor(float64(y) + 0.5 + p.Scale*(mp[yc]-0.5)))
			setPixel(out, x, y, pixelAt(in, sx, sy))
		}
	}
	return out
}

func (e *executor) colorMatrix(in *image.RGBA, m [20]float64) *image.RGBA {
	out := e.newImage()
	for y := 0; y < e.h; y++ {
		for x := 0; x < e.w; x++ {
			c := unpremultiply(pixelAt(in, x, y))
			var r pixel
			for row := 0; row < 4; row++ {
				o := row * 5
				r[row] = clamp01(m[o]*c[0] + m[o+1]*c[1] + m[o+2]*c[2] + m[o+3]*c[3] + m[o+4])
			}
			setPixel(out, x, y, pixel{r[0] * r[3], r[1] * r[3], r[2] * r[3], r[3]})
		}
	}
	return out
}

func (e *executor) blend(top, bottom *image.RGBA, mode BlendMode) *image.RGBA {
	out := e.newImage()
	for y := 0; y < e.h; y++ {
		for x := 0; x < e.w; x++ {
			setPixel(out, x, y, blendPixel(mode, pixelAt(top, x, y), pixelAt(bottom, x, y)))
		}
	}
	return out
}

func (e *executor) offset(in *image.RGBA, dx, dy float64) *image.RGBA {
	out := e.newImage()
	ox, oy := int(math.Round(dx)), int(math.Round(dy))
	draw.Draw(out, out.Rect.Add(image.Pt(ox, oy)), in, image.Point{}, draw.Src)
	return out
}
