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

package gpu

import (
	"fmt"
	"image"
)

// PixelFormat is the layout of pixels in a frame and in a surface.
type PixelFormat int

// List of supported pixel formats. Multi-byte pixels are little-endian.
const (
	// 8bit luminance. DOS palettes are resolved by the emulation so an 8bit
	// frame reaching the renderer is a greyscale image
	Gray8 PixelFormat = iota

	// 16bit pixels with 5 bits per component and the top bit unused
	RGB555

	// 16bit pixels with 5 bits of red and blue and 6 bits of green
	RGB565

	// 24bit pixels in blue, green, red byte order
	BGR888

	// 32bit pixels in blue, green, red, alpha byte order
	BGRA8888
)

func (f PixelFormat) String() string {
	switch f {
	case Gray8:
		return "Gray8"
	case RGB555:
		return "RGB555"
	case RGB565:
		return "RGB565"
	case BGR888:
		return "BGR888"
	case BGRA8888:
		return "BGRA8888"
	}
	return "unknown format"
}

// BytesPerPixel returns the size of a single pixel in the format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case Gray8:
		return 1
	case RGB555, RGB565:
		return 2
	case BGR888:
		return 3
	}
	return 4
}

// FormatForDepth returns the pixel format used for frames of the specified
// bit depth.
func FormatForDepth(depth int) (PixelFormat, error) {
	switch depth {
	case 8:
		return Gray8, nil
	case 15:
		return RGB555, nil
	case 16:
		return RGB565, nil
	case 24:
		return BGR888, nil
	case 32:
		return BGRA8888, nil
	}
	return 0, fmt.Errorf("gpu: no pixel format for depth %d", depth)
}

// expand5 and expand6 scale 5 and 6 bit values to 8 bits
func expand5(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}

func expand6(v uint16) uint8 {
	return uint8(v<<2 | v>>4)
}

// ToRGBA converts pixels in the specified format to the RGBA image. The region
// is the area of dst to write to. The first byte of src is the top-left pixel
// of the region and rows are pitch bytes apart. Alpha is always opaque.
func ToRGBA(format PixelFormat, src []byte, pitch int, dst *image.RGBA, region image.Rectangle) {
	region = region.Intersect(dst.Rect)
	bpp := format.BytesPerPixel()

	for y := 0; y < region.Dy(); y++ {
		row := src[y*pitch:]
		d := dst.Pix[dst.PixOffset(region.Min.X, region.Min.Y+y):]

		for x := 0; x < region.Dx(); x++ {
			p := row[x*bpp:]
			var r, g, b uint8

			switch format {
			case Gray8:
				r, g, b = p[0], p[0], p[0]
			case RGB555:
				v := uint16(p[0]) | uint16(p[1])<<8
				r = expand5((v >> 10) & 0x1f)
				g = expand5((v >> 5) & 0x1f)
				b = expand5(v & 0x1f)
			case RGB565:
				v := uint16(p[0]) | uint16(p[1])<<8
				r = expand5((v >> 11) & 0x1f)
				g = expand6((v >> 5) & 0x3f)
				b = expand5(v & 0x1f)
			case BGR888, BGRA8888:
				b, g, r = p[0], p[1], p[2]
			}

			o := x * 4
			d[o] = r
			d[o+1] = g
			d[o+2] = b
			d[o+3] = 0xff
		}
	}
}

// FromRGBA converts the region of the RGBA image to pixels in the specified
// format. The first byte of dst receives the top-left pixel of the region and
// rows are pitch bytes apart. Gray8 pixels are the luminance of the colour.
func FromRGBA(format PixelFormat, src *image.RGBA, region image.Rectangle, dst []byte, pitch int) {
	region = region.Intersect(src.Rect)
	bpp := format.BytesPerPixel()

	for y := 0; y < region.Dy(); y++ {
		s := src.Pix[src.PixOffset(region.Min.X, region.Min.Y+y):]
		row := dst[y*pitch:]

		for x := 0; x < region.Dx(); x++ {
			r, g, b := s[x*4], s[x*4+1], s[x*4+2]
			p := row[x*bpp:]

			switch format {
			case Gray8:
				p[0] = uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
			case RGB555:
				v := uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
				p[0] = uint8(v)
				p[1] = uint8(v >> 8)
			case RGB565:
				v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
				p[0] = uint8(v)
				p[1] = uint8(v >> 8)
			case BGR888:
				p[0], p[1], p[2] = b, g, r
			case BGRA8888:
				p[0], p[1], p[2], p[3] = b, g, r, 0xff
			}
		}
	}
}
