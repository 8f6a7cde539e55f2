package liquidglass

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Font wraps Ebitengine's text/v2 for TrueType label rendering.
type Font struct {
	face *text.GoTextFace
	size float64
	lh   float64 // cached line height
	op   text.DrawOptions
}

// LoadFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadFont(ttfData []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("liquidglass: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{
		face: face,
		size: size,
		lh:   m.HAscent + m.HDescent + m.HLineGap,
	}, nil
}

var defaultFonts = map[float64]*Font{}

// DefaultFont returns Go Regular at the given size. Fonts are cached per size.
func DefaultFont(size float64) *Font {
	if f, ok := defaultFonts[size]; ok {
		return f
	}
	f, err := LoadFont(goregular.TTF, size)
	if err != nil {
		panic("liquidglass: failed to load Go Regular: " + err.Error())
	}
	defaultFonts[size] = f
	return f
}

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 { return f.lh }

// Size returns the font size in pixels.
func (f *Font) Size() float64 { return f.size }

// Draw renders s with its top-left corner at (x, y).
func (f *Font) Draw(dst *ebiten.Image, s string, x, y float64, c Color) {
	if dst == nil || s == "" {
		return
	}
	op := &f.op
	op.GeoM.Reset()
	op.GeoM.Translate(x, y)
	op.ColorScale.Reset()
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	op.LineSpacing = f.lh
	text.Draw(dst, s, f.face, op)
}
