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

package gl32

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/jetsetilly/dosframe/gpu"
)

// surface is a texture with an optional framebuffer. the framebuffer is
// created the first time the surface is used as a draw target
type surface struct {
	dev *Device

	texture uint32
	fbo     uint32

	width  int32
	height int32
	format gpu.PixelFormat
}

func (s *surface) Size() (int, int) {
	return int(s.width), int(s.height)
}

func (s *surface) Format() gpu.PixelFormat {
	return s.format
}

// the GL format and type for uploads of pixels in the pixel format. returns
// false if the pixels must be converted to RGBA first
func uploadFormat(f gpu.PixelFormat) (uint32, uint32, bool) {
	switch f {
	case gpu.RGB555:
		return gl.BGRA, gl.UNSIGNED_SHORT_1_5_5_5_REV, true
	case gpu.RGB565:
		return gl.RGB, gl.UNSIGNED_SHORT_5_6_5, true
	case gpu.BGR888:
		return gl.BGR, gl.UNSIGNED_BYTE, true
	case gpu.BGRA8888:
		return gl.BGRA, gl.UNSIGNED_BYTE, true
	}
	return gl.RGBA, gl.UNSIGNED_BYTE, false
}

func (s *surface) Fill(region image.Rectangle, pixels []byte, pitch int) error {
	s.dev.checkGoroutine()

	if s.texture == 0 {
		return fmt.Errorf("gl32: %w: fill of released surface", gpu.ErrUpload)
	}
	if !region.In(image.Rect(0, 0, int(s.width), int(s.height))) {
		return fmt.Errorf("gl32: fill region %v outside of surface", region)
	}
	if region.Empty() {
		return nil
	}

	bpp := s.format.BytesPerPixel()
	need := (region.Dy()-1)*pitch + region.Dx()*bpp
	if len(pixels) < need {
		return fmt.Errorf("gl32: fill with %d bytes, need %d", len(pixels), need)
	}

	format, typ, native := uploadFormat(s.format)
	rowLength := int32(pitch / bpp)

	if !native {
		sz := image.Rect(0, 0, region.Dx(), region.Dy())
		if s.dev.scratch == nil || len(s.dev.scratch.Pix) < sz.Dx()*sz.Dy()*4 {
			s.dev.scratch = image.NewRGBA(sz)
		}
		scratch := &image.RGBA{
			Pix:    s.dev.scratch.Pix[:sz.Dx()*sz.Dy()*4],
			Stride: sz.Dx() * 4,
			Rect:   sz,
		}
		gpu.ToRGBA(s.format, pixels, pitch, scratch, sz)
		pixels = scratch.Pix
		rowLength = int32(sz.Dx())
	}

	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, rowLength)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(region.Min.X), int32(region.Min.Y),
		int32(region.Dx()), int32(region.Dy()),
		format, typ, gl.Ptr(pixels))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gl32: %w: GL error %#x", gpu.ErrUpload, e)
	}

	return nil
}

// bindFramebuffer binds the framebuffer of the surface, creating it if
// necessary.
func (s *surface) bindFramebuffer() error {
	if s.fbo == 0 {
		gl.GenFramebuffers(1, &s.fbo)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.texture, 0)

	if st := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); st != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("gl32: %w: framebuffer incomplete (%#x)", gpu.ErrAllocation, st)
	}

	return nil
}

func (s *surface) Release() {
	s.dev.checkGoroutine()

	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
		s.texture = 0
	}
}
