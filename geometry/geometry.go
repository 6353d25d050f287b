// This file is part of DOSFrame.
//
// DOSFrame is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DOSFrame is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DOSFrame.  If not, see <https://www.gnu.org/licenses/>.

// Package geometry contains the small set of size and rectangle types shared
// by the frame, renderer and display packages.
//
// Values are float64 because aspect ratio correction produces fractional
// sizes. Conversion to whole pixels happens only when a rectangle is handed to
// a GPU device, with the Integral() function.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Size is a width and height pair.
type Size struct {
	W float64
	H float64
}

// NewSize is a convenience function for creating a Size from integer values.
func NewSize(w, h int) Size {
	return Size{W: float64(w), H: float64(h)}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

// Aspect returns the width to height ratio. A zero height returns zero.
func (s Size) Aspect() float64 {
	if s.H == 0 {
		return 0
	}
	return s.W / s.H
}

// IsZero returns true if either dimension is zero or negative.
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}

// Scale multiplies each dimension by the corresponding dimension of the scale
// argument.
func (s Size) Scale(scale Size) Size {
	return Size{W: s.W * scale.W, H: s.H * scale.H}
}

// Ints returns the dimensions rounded to the nearest whole pixel.
func (s Size) Ints() (int, int) {
	return int(math.Round(s.W)), int(math.Round(s.H))
}

// Point is a position in two dimensional space.
type Point struct {
	X float64
	Y float64
}

// Rect is a rectangle with the origin at the top-left.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// NewRect is a convenience function for creating a Rect from integer values.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// Size returns the dimensions of the rectangle.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// IsZero returns true if the rectangle has no area.
func (r Rect) IsZero() bool {
	return r.W <= 0 || r.H <= 0
}

// Integral rounds the edges of the rectangle to whole pixels. Edges are
// rounded rather than the width and height so that adjoining rectangles
// remain adjoining.
func (r Rect) Integral() Rect {
	x0 := math.Round(r.X)
	y0 := math.Round(r.Y)
	x1 := math.Round(r.X + r.W)
	y1 := math.Round(r.Y + r.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Image converts the rectangle to an image.Rectangle after rounding to whole
// pixels.
func (r Rect) Image() image.Rectangle {
	i := r.Integral()
	return image.Rect(int(i.X), int(i.Y), int(i.X+i.W), int(i.Y+i.H))
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	return NewRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// CenterIn returns a rectangle of the specified size centered on the bounds.
// The size may be larger than the bounds, in which case the result will
// overhang the bounds equally on both sides.
func CenterIn(size Size, bounds Rect) Rect {
	return Rect{
		X: bounds.X + (bounds.W-size.W)/2,
		Y: bounds.Y + (bounds.H-size.H)/2,
		W: size.W,
		H: size.H,
	}
}

// FitAspect returns the largest rectangle with the specified aspect ratio that
// fits inside bounds, centered on the bounds. Black bars will appear either
// above and below (letterbox) or to either side (pillarbox) of the result.
//
// A degenerate aspect ratio (zero or negative) returns the bounds unchanged.
func FitAspect(aspect float64, bounds Rect) Rect {
	if aspect <= 0 || bounds.IsZero() {
		return bounds
	}

	sz := Size{W: bounds.W, H: bounds.W / aspect}
	if sz.H > bounds.H {
		sz = Size{W: bounds.H * aspect, H: bounds.H}
	}

	return CenterIn(sz, bounds)
}

// ClampSize returns a rectangle no larger than max, centered on the original
// rectangle. A zero max size means no limit.
func ClampSize(r Rect, max Size) Rect {
	if max.IsZero() {
		return r
	}

	sz := r.Size()
	if sz.W <= max.W && sz.H <= max.H {
		return r
	}

	// preserve aspect ratio of the rectangle being clamped
	scale := math.Min(max.W/sz.W, max.H/sz.H)
	sz = Size{W: sz.W * scale, H: sz.H * scale}

	return CenterIn(sz, r)
}

// IsIntegral returns true if the value is a whole number, within a small
// tolerance.
func IsIntegral(v float64) bool {
	return math.Abs(v-math.Round(v)) < 1e-6
}
