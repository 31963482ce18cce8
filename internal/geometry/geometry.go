// Package geometry places, clamps and hit-tests the overlay rectangle and
// converts pointer positions into canvas logical pixel space. It holds no
// state; every function is determined by its arguments.
package geometry

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when a canvas or overlay dimension is not positive.
var ErrDegenerate = errors.New("geometry: non-positive dimension")

// Point is a position in logical pixel space.
type Point struct {
	X, Y float64
}

// Rect is the overlay rectangle in logical pixel space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Translate returns r moved by (dx, dy). Size is unchanged.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Contains reports whether p lies inside r. All four edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Box is the on-screen bounding box of the rendered canvas element, in
// client (viewport) coordinates.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box has no area to map from.
func (b Box) Empty() bool {
	return !(b.Width > 0) || !(b.Height > 0)
}

// Params are the placement and clamping tunables.
type Params struct {
	WidthRatio   float64 // overlay width as a fraction of canvas width
	BasePadding  float64 // minimum padding to edges, in logical pixels
	PaddingRatio float64 // padding as a fraction of canvas width
	Clamp        bool    // keep the overlay inside the padded canvas
}

// DefaultParams mirror config.DefaultConfig.
func DefaultParams() Params {
	return Params{WidthRatio: 0.28, BasePadding: 12, PaddingRatio: 0.015, Clamp: true}
}

// Padding returns the edge padding for a canvas of width canvasW. It never
// drops below BasePadding and grows with the canvas.
func (p Params) Padding(canvasW float64) float64 {
	return round(math.Max(p.BasePadding, canvasW*p.PaddingRatio))
}

// InitialPlacement computes the overlay rectangle for a freshly loaded photo:
// left-aligned at the padding, vertically centered, WidthRatio of the canvas
// wide and as tall as the overlay's natural aspect allows. When that height
// does not fit between the top and bottom padding the height is reduced to
// the available space and the width is re-derived from it.
func InitialPlacement(p Params, canvasW, canvasH, naturalW, naturalH float64) (Rect, error) {
	if !(canvasW > 0) || !(canvasH > 0) || !(naturalW > 0) || !(naturalH > 0) {
		return Rect{}, ErrDegenerate
	}
	pad := p.Padding(canvasW)
	aspect := naturalH / naturalW

	w := round(canvasW * p.WidthRatio)
	h := round(w * aspect)

	if maxH := canvasH - 2*pad; h > maxH {
		h = round(maxH)
		w = round(h / aspect)
	}
	w = math.Max(w, 1)
	h = math.Max(h, 1)

	return Rect{
		X: pad,
		Y: round((canvasH - h) / 2),
		W: w,
		H: h,
	}, nil
}

// Clamp constrains r.X to [pad, canvasW-pad-r.W] and r.Y to
// [pad, canvasH-pad-r.H]. When an upper bound falls below its lower bound the
// axis is pinned to the lower bound. Clamp never changes W or H and is a no-op
// when clamping is disabled.
func Clamp(p Params, r Rect, canvasW, canvasH float64) Rect {
	if !p.Clamp {
		return r
	}
	pad := p.Padding(canvasW)
	r.X = clampAxis(r.X, pad, canvasW-pad-r.W)
	r.Y = clampAxis(r.Y, pad, canvasH-pad-r.H)
	return r
}

func clampAxis(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

// PointerToCanvas converts a client coordinate into canvas logical pixel
// space. The box is the element's rendered size, which may differ from the
// logical size under layout scaling; backing store density plays no part.
// It returns false when the box has no area.
func PointerToCanvas(clientX, clientY float64, box Box, logicalW, logicalH float64) (Point, bool) {
	if box.Empty() {
		return Point{}, false
	}
	scaleX := logicalW / box.Width
	scaleY := logicalH / box.Height
	return Point{
		X: (clientX - box.Left) * scaleX,
		Y: (clientY - box.Top) * scaleY,
	}, true
}

// HitTest reports whether pt lies on or inside r.
func HitTest(pt Point, r Rect) bool {
	return r.Contains(pt)
}

// round rounds half up, so -2.5 becomes -2.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}
