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

package soft

import (
	"image"
	"math"
	"slices"

	"golang.org/x/image/draw"

	"github.com/jetsetilly/dosframe/gpu"
)

// Kernel is the software equivalent of a shader program. It draws the source
// region of the src image into the destination region of the dst image.
type Kernel func(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter, u gpu.Uniforms)

// list of kernels that can be named by gpu.ProgramSource.Kernel
var kernels = map[string]Kernel{
	"passthrough": passthrough,
	"sharp":       sharp,
	"scanlines":   scanlines,
	"phosphor":    phosphor,
	"ripple":      ripple,
}

// Kernels returns the names of the available kernels in alphabetical order.
func Kernels() []string {
	var k []string
	for n := range kernels {
		k = append(k, n)
	}
	slices.Sort(k)
	return k
}

// scale draws the source region into the destination region with the scaler
// for the filter.
func scale(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter) {
	var s draw.Scaler = draw.NearestNeighbor
	if filter == gpu.Linear {
		s = draw.ApproxBiLinear
	}
	s.Scale(dst, dr, src, sr, draw.Src, nil)
}

func passthrough(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter, _ gpu.Uniforms) {
	scale(dst, dr, src, sr, filter)
}

// sharp scales with the Catmull-Rom kernel regardless of the filter. edges
// remain sharper than with bilinear filtering
func sharp(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, _ gpu.Filter, _ gpu.Uniforms) {
	draw.CatmullRom.Scale(dst, dr, src, sr, draw.Src, nil)
}

// scanlines darkens the lower part of every scanline of the frame once it has
// been scaled into the output
func scanlines(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter, u gpu.Uniforms) {
	scale(dst, dr, src, sr, filter)

	inH := u.SourceSize.H
	if inH <= 0 {
		inH = u.InputSize.H
	}
	if inH <= 0 {
		inH = float64(sr.Dy())
	}
	outH := float64(dr.Dy())
	if outH < inH*2 {
		// not enough output lines for every scanline to be visible
		return
	}

	r := dr.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		// position within the input scanline
		_, frac := math.Modf((float64(y-dr.Min.Y) + 0.5) * inH / outH)
		if frac < 0.5 {
			continue
		}
		shade(dst, image.Rect(r.Min.X, y, r.Max.X, y+1), [3]float64{0.55, 0.55, 0.55})
	}
}

// phosphor applies a repeating red, green, blue column mask to the output
func phosphor(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter, _ gpu.Uniforms) {
	scale(dst, dr, src, sr, filter)

	masks := [3][3]float64{
		{1.0, 0.8, 0.8},
		{0.8, 1.0, 0.8},
		{0.8, 0.8, 1.0},
	}

	r := dr.Intersect(dst.Rect)
	for x := r.Min.X; x < r.Max.X; x++ {
		shade(dst, image.Rect(x, r.Min.Y, x+1, r.Max.Y), masks[(x-dr.Min.X)%3])
	}
}

// ripple offsets each row of the output horizontally by a sine wave that moves
// with time
func ripple(dst *image.RGBA, dr image.Rectangle, src *image.RGBA, sr image.Rectangle, filter gpu.Filter, u gpu.Uniforms) {
	tmp := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	scale(tmp, tmp.Rect, src, sr, filter)

	const (
		amplitude  = 0.01
		wavelength = 0.05
		speed      = 4.0
	)

	w := dr.Dx()
	h := float64(dr.Dy())
	r := dr.Intersect(dst.Rect)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		ty := y - dr.Min.Y
		v := float64(ty) / h
		offset := int(math.Round(math.Sin(v/wavelength+u.Time*speed) * amplitude * float64(w)))

		d := dst.Pix[dst.PixOffset(r.Min.X, y):]
		for x := r.Min.X; x < r.Max.X; x++ {
			tx := min(max(x-dr.Min.X+offset, 0), w-1)
			s := tmp.Pix[tmp.PixOffset(tx, ty):]
			o := (x - r.Min.X) * 4
			copy(d[o:o+4], s[:4])
		}
	}
}

// shade multiplies the colour components of the pixels in the region
func shade(img *image.RGBA, r image.Rectangle, mul [3]float64) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		p := img.Pix[img.PixOffset(r.Min.X, y):]
		for x := 0; x < r.Dx(); x++ {
			o := x * 4
			p[o] = uint8(float64(p[o]) * mul[0])
			p[o+1] = uint8(float64(p[o+1]) * mul[1])
			p[o+2] = uint8(float64(p[o+2]) * mul[2])
		}
	}
}
