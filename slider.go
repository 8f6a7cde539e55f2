package liquidglass

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Slider geometry. The root is as tall as the thumb; the track is centred
// in it.
const (
	sliderRootHeight  = 16
	sliderTrackHeight = 8
	thumbWidth        = 32
	thumbHeight       = 16
	thumbShadowPad    = 6

	bubbleWidth     = bubbleDragW
	bubbleBuffer    = -10
	bubbleTopFactor = -1.6

	thumbFadeDuration = 0.2
	sliderLabelGap    = 6
	sliderLabelSize   = 14
	sliderZIndex      = 0
)

var (
	// SliderRangeColor fills the track up to the thumb.
	SliderRangeColor = Color{R: 0x34 / 255.0, G: 0xC8 / 255.0, B: 0x5A / 255.0, A: 1}
	// SliderTrackColor is the empty track.
	SliderTrackColor = Color{R: 0xE5 / 255.0, G: 0xE7 / 255.0, B: 0xEB / 255.0, A: 1}
)

// Slider is a horizontal value slider whose dragged thumb turns into a small
// liquid glass bubble.
type Slider struct {
	X, Y           float64
	Min, Max, Step float64
	Width          float64

	// Label is drawn above the track.
	Label      string
	LabelColor Color
	Font       *Font

	// OnValueChange is called whenever the value changes.
	OnValueChange func(float64)

	value      float64
	dragging   bool
	thumbAlpha float64
	thumbFade  *TweenGroup

	bubble  *Panel
	bubbleW *Spring
	bubbleH *Spring

	trackImg *ebiten.Image
	rangeImg *ebiten.Image
	thumbImg *ebiten.Image
	imgW     int
	imgOp    ebiten.DrawImageOptions
}

// NewSlider creates a slider over [lo, hi] with the given step and track
// width, starting at lo.
func NewSlider(label string, lo, hi, step, width float64) *Slider {
	return &Slider{
		Min:        lo,
		Max:        hi,
		Step:       step,
		Width:      width,
		Label:      label,
		LabelColor: ColorWhite,
		value:      lo,
		thumbAlpha: 1,
		bubbleW:    NewSpring(BubbleSpring, bubbleRestW),
		bubbleH:    NewSpring(BubbleSpring, bubbleRestH),
	}
}

// NewParamSlider creates a slider for one glass parameter using its range
// and label.
func NewParamSlider(p Param, width float64) *Slider {
	info := p.Info()
	return NewSlider(info.Label, info.Min, info.Max, info.Step, width)
}

// Value returns the current value.
func (s *Slider) Value() float64 { return s.value }

// SetValue snaps v to the step, clamps it to [Min, Max] and stores it.
// OnValueChange fires only if the stored value changed.
func (s *Slider) SetValue(v float64) {
	v = s.snap(v)
	if v == s.value {
		return
	}
	s.value = v
	if s.OnValueChange != nil {
		s.OnValueChange(v)
	}
}

func (s *Slider) snap(v float64) float64 {
	if s.Step > 0 {
		v = math.Round((v-s.Min)/s.Step)*s.Step + s.Min
		p := math.Pow10(stepDecimals(s.Step))
		v = math.Round(v*p) / p
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// stepDecimals returns the number of decimal places in step.
func stepDecimals(step float64) int {
	str := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(str, '.'); i >= 0 {
		return len(str) - i - 1
	}
	return 0
}

// Percent returns the value's position in [0, 1]. An empty range is 0.
func (s *Slider) Percent() float64 {
	span := s.Max - s.Min
	if span == 0 {
		return 0
	}
	return (s.value - s.Min) / span
}

// ThumbPosition returns the thumb's offset along the track.
func (s *Slider) ThumbPosition() float64 {
	return s.Percent() * s.Width
}

// ThumbCenter returns where the thumb is drawn. It is pulled inward near the
// ends so the thumb never overhangs the track.
func (s *Slider) ThumbCenter() float64 {
	half := thumbWidth / 2.0
	return s.ThumbPosition() + half*(1-2*s.Percent())
}

// BubbleLeft returns the bubble's left edge relative to the slider, kept
// within the track plus a small overhang.
func (s *Slider) BubbleLeft() float64 {
	ideal := s.ThumbPosition() - bubbleWidth/2.0
	lo := float64(bubbleBuffer)
	hi := s.Width - bubbleWidth - bubbleBuffer
	return math.Max(lo, math.Min(hi, ideal))
}

// Dragging reports whether the thumb is held.
func (s *Slider) Dragging() bool { return s.dragging }

// Bubble returns the mounted bubble panel, or nil.
func (s *Slider) Bubble() *Panel { return s.bubble }

// ZIndex places sliders below glass panels.
func (s *Slider) ZIndex() int { return sliderZIndex }

// HitTest reports whether (x, y) is on the slider root.
func (s *Slider) HitTest(x, y float64) bool {
	return HitRect{X: s.X, Y: s.Y, Width: s.Width, Height: sliderRootHeight}.Contains(x, y)
}

func (s *Slider) setValueFromPointer(x float64) {
	if s.Width <= 0 {
		return
	}
	pct := (x - s.X) / s.Width
	s.SetValue(s.Min + pct*(s.Max-s.Min))
}

// HandlePointer routes a Stage pointer event.
func (s *Slider) HandlePointer(e PointerEvent) {
	switch e.Type {
	case EventPointerDown:
		s.startDrag()
		s.setValueFromPointer(e.X)
	case EventDragStart, EventDrag:
		if s.dragging {
			s.setValueFromPointer(e.X)
		}
	case EventPointerUp:
		s.endDrag()
	}
}

// GlobalPointerUp ends a drag wherever the pointer was released.
func (s *Slider) GlobalPointerUp() { s.endDrag() }

func (s *Slider) startDrag() {
	if s.dragging {
		return
	}
	s.dragging = true
	s.thumbFade = TweenAlpha(&s.thumbAlpha, 0, thumbFadeDuration, ease.OutQuad)

	if s.bubble != nil {
		s.bubble.Dispose()
	}
	p, _ := Preset(PresetSliderBubble)
	p.Width, p.Height = math.Round(s.bubbleW.Value()), math.Round(s.bubbleH.Value())
	s.bubble = NewPanel(p, PanelOptions{Enter: true})
	s.placeBubble()
	s.bubbleW.SetTarget(bubbleDragW)
	s.bubbleH.SetTarget(bubbleDragH)
}

func (s *Slider) endDrag() {
	if !s.dragging {
		return
	}
	s.dragging = false
	s.thumbFade = TweenAlpha(&s.thumbAlpha, 1, thumbFadeDuration, ease.OutQuad)
	if s.bubble != nil {
		s.bubble.Close()
	}
	s.bubbleW.SetTarget(bubbleRestW)
	s.bubbleH.SetTarget(bubbleRestH)
}

func (s *Slider) placeBubble() {
	s.bubble.X = s.X + s.BubbleLeft()
	s.bubble.Y = s.Y + bubbleTopFactor*sliderRootHeight
}

// Update advances the thumb fade, the bubble size springs and the bubble.
func (s *Slider) Update(dt float64) {
	s.thumbFade.Update(float32(dt))
	s.bubbleW.Update(dt)
	s.bubbleH.Update(dt)

	b := s.bubble
	if b == nil {
		return
	}
	w, h := math.Round(s.bubbleW.Value()), math.Round(s.bubbleH.Value())
	if p := b.Params(); p.Width != w || p.Height != h {
		p.Width, p.Height = w, h
		b.SetParams(p)
	}
	s.placeBubble()
	b.Update(dt)
	if b.Removable() {
		b.Dispose()
		s.bubble = nil
	}
}

// pillLayer is a rounded rect filling a w x h layer.
func pillLayer(w, h float64, c Color) Layer {
	rgba := c.RGBA()
	return Layer{
		Name: "pill", Width: w, Height: h,
		Shapes: []Shape{{Width: w, Height: h, RX: h / 2, Fill: hexFill(rgba.R, rgba.G, rgba.B)}},
	}
}

// thumbLayer is the white thumb over a soft drop shadow.
func thumbLayer() Layer {
	pad := float64(thumbShadowPad)
	shadow := Shape{
		X: pad, Y: pad + 2, Width: thumbWidth, Height: thumbHeight, RX: thumbHeight / 2,
		Fill: rgbaFill(0, 0, 0, 15), Blurred: true, Blur: 2,
	}
	body := Shape{
		X: pad, Y: pad, Width: thumbWidth, Height: thumbHeight, RX: thumbHeight / 2,
		Fill: hexFill(0xFF, 0xFF, 0xFF),
	}
	return Layer{
		Name:  "thumb",
		Width: thumbWidth + 2*pad, Height: thumbHeight + 2*pad,
		Shapes: []Shape{shadow, body},
	}
}

func (s *Slider) ensureImages() {
	w := int(math.Ceil(s.Width))
	if w == s.imgW && s.trackImg != nil {
		return
	}
	for _, img := range []*ebiten.Image{s.trackImg, s.rangeImg} {
		if img != nil {
			img.Deallocate()
		}
	}
	s.imgW = w
	s.trackImg, s.rangeImg = nil, nil
	if w > 0 {
		s.trackImg = ebiten.NewImageFromImage(RasterizeLayer(pillLayer(float64(w), sliderTrackHeight, SliderTrackColor)))
		s.rangeImg = ebiten.NewImageFromImage(RasterizeLayer(pillLayer(float64(w), sliderTrackHeight, SliderRangeColor)))
	}
	if s.thumbImg == nil {
		s.thumbImg = ebiten.NewImageFromImage(RasterizeLayer(thumbLayer()))
	}
}

func (s *Slider) drawImage(dst, img *ebiten.Image, x, y, alpha float64) {
	op := &s.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(x, y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(alpha))
	dst.DrawImage(img, op)
}

// Draw renders the label, track, range, thumb and bubble. The bubble
// refracts backdrop.
func (s *Slider) Draw(backdrop, dst *ebiten.Image) {
	if dst == nil {
		return
	}
	s.ensureImages()

	if s.Label != "" {
		f := s.Font
		if f == nil {
			f = DefaultFont(sliderLabelSize)
		}
		f.Draw(dst, s.Label, s.X, s.Y-sliderLabelGap-f.LineHeight(), s.LabelColor)
	}

	if s.trackImg != nil {
		trackY := s.Y + (sliderRootHeight-sliderTrackHeight)/2
		s.drawImage(dst, s.trackImg, s.X, trackY, 1)
		if rw := int(math.Round(s.ThumbPosition())); rw > 0 {
			rng := s.rangeImg.SubImage(image.Rect(0, 0, min(rw, s.imgW), sliderTrackHeight)).(*ebiten.Image)
			s.drawImage(dst, rng, s.X, trackY, 1)
		}
	}

	if s.thumbAlpha > 0 {
		x := s.X + s.ThumbCenter() - thumbWidth/2 - thumbShadowPad
		y := s.Y - thumbShadowPad
		s.drawImage(dst, s.thumbImg, x, y, s.thumbAlpha)
	}

	if s.bubble != nil {
		s.bubble.Draw(backdrop, dst)
	}
}

// Dispose releases the slider's images and bubble.
func (s *Slider) Dispose() {
	for _, img := range []*ebiten.Image{s.trackImg, s.rangeImg, s.thumbImg} {
		if img != nil {
			img.Deallocate()
		}
	}
	s.trackImg, s.rangeImg, s.thumbImg = nil, nil, nil
	if s.bubble != nil {
		s.bubble.Dispose()
		s.bubble = nil
	}
}
