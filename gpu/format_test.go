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

package gpu_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/test"
)

func TestFormatForDepth(t *testing.T) {
	for depth, bpp := range map[int]int{8: 1, 15: 2, 16: 2, 24: 3, 32: 4} {
		f, err := gpu.FormatForDepth(depth)
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, f.BytesPerPixel(), bpp, depth)
	}
	_, err := gpu.FormatForDepth(4)
	test.ExpectFailure(t, err)
}

func TestToRGBA(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))

	// a single white RGB565 pixel followed by pure red
	src := []byte{0xff, 0xff, 0x00, 0xf8}
	gpu.ToRGBA(gpu.RGB565, src, 4, dst, image.Rect(0, 1, 2, 2))
	test.ExpectEquality(t, dst.RGBAAt(0, 1), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	test.ExpectEquality(t, dst.RGBAAt(1, 1), color.RGBA{R: 0xff, A: 0xff})

	// untouched row
	test.ExpectEquality(t, dst.RGBAAt(0, 0), color.RGBA{})

	// BGRA byte order with alpha forced to opaque
	src = []byte{0x10, 0x20, 0x30, 0x00}
	gpu.ToRGBA(gpu.BGRA8888, src, 4, dst, image.Rect(1, 0, 2, 1))
	test.ExpectEquality(t, dst.RGBAAt(1, 0), color.RGBA{R: 0x30, G: 0x20, B: 0x10, A: 0xff})

	// RGB555 green
	src = []byte{0xe0, 0x03}
	gpu.ToRGBA(gpu.RGB555, src, 2, dst, image.Rect(0, 0, 1, 1))
	test.ExpectEquality(t, dst.RGBAAt(0, 0), color.RGBA{G: 0xff, A: 0xff})
}

func TestFromRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	src.SetRGBA(1, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	for _, f := range []gpu.PixelFormat{gpu.Gray8, gpu.RGB555, gpu.RGB565, gpu.BGR888, gpu.BGRA8888} {
		pitch := 2 * f.BytesPerPixel()
		pix := make([]byte, pitch)
		gpu.FromRGBA(f, src, src.Rect, pix, pitch)

		// converting back gives the original colours except for greyscale
		dst := image.NewRGBA(src.Rect)
		gpu.ToRGBA(f, pix, pitch, dst, dst.Rect)
		test.ExpectEquality(t, dst.RGBAAt(1, 0), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, f)
		if f != gpu.Gray8 {
			test.ExpectEquality(t, dst.RGBAAt(0, 0), color.RGBA{R: 0xff, A: 0xff}, f)
		}
	}

	// luminance of pure red
	pix := make([]byte, 1)
	gpu.FromRGBA(gpu.Gray8, src, image.Rect(0, 0, 1, 1), pix, 1)
	test.ExpectEquality(t, pix[0], uint8(76))
}

func TestCompileError(t *testing.T) {
	var err error = &gpu.CompileError{Name: "crt", Stage: "fragment", Log: "syntax error"}
	test.ExpectSuccess(t, errors.Is(err, gpu.ErrShaderCompilation))

	var ce *gpu.CompileError
	test.DemandSuccess(t, errors.As(err, &ce))
	test.ExpectEquality(t, ce.Stage, "fragment")
}
