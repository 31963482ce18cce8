// Package surface keeps the canvas backing store in step with logical pixel
// space. Geometry is always expressed in logical pixels; the backing store is
// the logical size multiplied by the display pixel ratio and every draw goes
// through a uniform scale transform. The photo is resampled once per load;
// overlay moves repaint only the area the overlay covers.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
)

// ErrNoPhoto is returned by Export before a photo has been set up.
var ErrNoPhoto = errors.New("surface: no photo loaded")

// Surface is the render target for photo and overlay.
type Surface struct {
	overlay   *asset.Pending
	photo     image.Image
	maxPixels int64

	logical image.Point // equals the photo's natural size
	layout  image.Point // rendered element size
	ratio   float64
	ctm     f64.Aff3 // logical → backing store
	backing *image.RGBA

	// base is the photo resampled to backing size once per Setup. Redraws
	// restore from it instead of resampling the photo again.
	base *image.RGBA
	// sprite is the overlay resampled to its current backing size.
	sprite *image.RGBA
	// dirty is the backing area painted by the last overlay draw; painted is
	// false until the first DrawAll after Setup.
	dirty   image.Rectangle
	painted bool
}

// New returns an empty surface that draws overlay once it has loaded. The
// backing store never exceeds maxPixels; zero means unbounded.
func New(overlay *asset.Pending, maxPixels int64) *Surface {
	return &Surface{overlay: overlay, maxPixels: maxPixels, ratio: 1, ctm: f64.Aff3{1, 0, 0, 0, 1, 0}}
}

// FitPixelRatio lowers ratio until a w×h canvas scaled by it fits in
// maxPixels. Non-positive ratios become 1 first.
func FitPixelRatio(ratio float64, w, h int, maxPixels int64) float64 {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	if maxPixels <= 0 || w <= 0 || h <= 0 {
		return ratio
	}
	if limit := math.Sqrt(float64(maxPixels) / (float64(w) * float64(h))); ratio > limit {
		ratio = limit
	}
	return ratio
}

// Setup sizes the surface for a newly loaded photo. The logical and layout
// sizes become the photo's natural size; the backing store is that size
// times ratio, at least one pixel per side. The photo is resampled into the
// backing resolution here, once.
func (s *Surface) Setup(photo image.Image, ratio float64) {
	b := photo.Bounds()
	ratio = FitPixelRatio(ratio, b.Dx(), b.Dy(), s.maxPixels)
	s.photo = photo
	s.logical = image.Pt(b.Dx(), b.Dy())
	s.layout = s.logical
	s.ratio = ratio

	bw := max(1, int(math.Round(float64(b.Dx())*ratio)))
	bh := max(1, int(math.Round(float64(b.Dy())*ratio)))
	s.backing = image.NewRGBA(image.Rect(0, 0, bw, bh))
	s.ctm = f64.Aff3{ratio, 0, 0, 0, ratio, 0}

	s.base = image.NewRGBA(s.backing.Bounds())
	if s.base.Bounds().Size() == b.Size() {
		draw.Draw(s.base, s.base.Bounds(), photo, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(s.base, s.base.Bounds(), photo, b, xdraw.Src, nil)
	}
	s.sprite = nil
	s.dirty = image.Rectangle{}
	s.painted = false
}

// Loaded reports whether a photo has been set up.
func (s *Surface) Loaded() bool { return s.photo != nil }

// LogicalSize returns the canvas size in logical pixels.
func (s *Surface) LogicalSize() (w, h float64) {
	return float64(s.logical.X), float64(s.logical.Y)
}

// LayoutSize returns the element's rendered size before any responsive
// downscaling by the page.
func (s *Surface) LayoutSize() image.Point { return s.layout }

// BackingSize returns the backing store size in physical pixels.
func (s *Surface) BackingSize() image.Point {
	if s.backing == nil {
		return image.Point{}
	}
	return s.backing.Bounds().Size()
}

// PixelRatio returns the backing store scale.
func (s *Surface) PixelRatio() float64 { return s.ratio }

// DrawAll leaves the backing store holding the photo stretched over the full
// logical area and, if the overlay has finished loading, the overlay at r.
// Only the area the overlay covered last time is restored from the
// resampled photo, so a redraw costs the overlay's area, not the photo's.
// It does nothing until a photo is set up.
func (s *Surface) DrawAll(r geometry.Rect) {
	if s.photo == nil {
		return
	}
	if !s.painted {
		draw.Draw(s.backing, s.backing.Bounds(), s.base, image.Point{}, draw.Src)
		s.painted = true
	} else if !s.dirty.Empty() {
		draw.Draw(s.backing, s.dirty, s.base, s.dirty.Min, draw.Src)
	}
	s.dirty = image.Rectangle{}

	if s.overlay == nil {
		return
	}
	overlay, err := s.overlay.Image()
	if err != nil {
		return
	}
	dr := s.toBacking(r)
	if dr.Empty() {
		return
	}
	sprite := s.spriteFor(overlay, dr.Size())
	draw.Draw(s.backing, dr, sprite, image.Point{}, draw.Over)
	s.dirty = dr.Intersect(s.backing.Bounds())
}

// toBacking maps a logical rectangle to whole backing store pixels.
func (s *Surface) toBacking(r geometry.Rect) image.Rectangle {
	x := int(math.Round(s.ctm[0]*r.X + s.ctm[2]))
	y := int(math.Round(s.ctm[4]*r.Y + s.ctm[5]))
	w := int(math.Round(s.ctm[0] * r.W))
	h := int(math.Round(s.ctm[4] * r.H))
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(x, y, x+w, y+h)
}

// spriteFor returns overlay resampled to size, reusing the last result
// while the size is unchanged.
func (s *Surface) spriteFor(overlay image.Image, size image.Point) *image.RGBA {
	if s.sprite != nil && s.sprite.Bounds().Size() == size {
		return s.sprite
	}
	s.sprite = image.NewRGBA(image.Rectangle{Max: size})
	xdraw.CatmullRom.Scale(s.sprite, s.sprite.Bounds(), overlay, overlay.Bounds(), xdraw.Src, nil)
	return s.sprite
}

// Snapshot returns the backing store. Callers must not modify it.
func (s *Surface) Snapshot() (*image.RGBA, error) {
	if s.photo == nil {
		return nil, ErrNoPhoto
	}
	return s.backing, nil
}

// Export writes the composite as PNG at backing store resolution.
func (s *Surface) Export(w io.Writer) error {
	return s.encode(w, png.DefaultCompression)
}

// Preview writes the composite as quickly as possible for on-screen display.
func (s *Surface) Preview(w io.Writer) error {
	return s.encode(w, png.BestSpeed)
}

func (s *Surface) encode(w io.Writer, level png.CompressionLevel) error {
	img, err := s.Snapshot()
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
