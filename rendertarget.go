package liquidglass

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions. Callers get an exact-size view of a pooled image;
// the view maps back to its parent on Release. After warmup, Acquire/Release
// only allocate the view itself.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
	parents map[*ebiten.Image]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image of exactly (w, h) pixels, backed
// by a pooled image whose dimensions are rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	w, h = max(w, 1), max(h, 1)
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	var parent *ebiten.Image
	if stack := p.buckets[key]; len(stack) > 0 {
		parent = stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		parent.Clear()
	} else {
		parent = ebiten.NewImageWithOptions(
			image.Rect(0, 0, pw, ph),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	}
	if w == pw && h == ph {
		return parent
	}
	view := parent.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	if p.parents == nil {
		p.parents = make(map[*ebiten.Image]*ebiten.Image)
	}
	p.parents[view] = parent
	return view
}

// Release returns an image (or a view from Acquire) to the pool. The image is
// cleared on the next Acquire, not here.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if parent, ok := p.parents[img]; ok {
		delete(p.parents, img)
		img = parent
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// pooled returns the number of idle images held by the pool.
func (p *renderTexturePool) pooled() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// Dispose deallocates every idle image. Images still acquired are left alone.
func (p *renderTexturePool) Dispose() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
