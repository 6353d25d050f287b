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

// Package texture mirrors the pixels of a frame.Frame in a GPU surface. After
// the first full upload only the dirty scanlines of subsequent frames are
// uploaded.
//
// The allocated size of a texture can be larger than the frame it holds. This
// happens when the device requires power-of-two dimensions and when a texture
// is reused for a smaller frame. The populated area of the texture is the
// content region.
package texture

import (
	"errors"
	"fmt"
	"image"
	"math/bits"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/gpu"
)

// ErrCannotAccommodate is returned when a frame is too large for the texture
// or has a different pixel format. A new texture must be created.
var ErrCannotAccommodate = errors.New("texture: cannot accommodate frame")

// Texture is a GPU surface holding the pixels of a frame.
type Texture struct {
	dev     gpu.Device
	surface gpu.Surface
	format  gpu.PixelFormat

	// allocated size
	width  int
	height int

	// the populated area of the surface
	content image.Rectangle
}

// nextPowerOfTwo returns v if it is already a power of two
func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

// SizeNeeded returns the allocated size needed for content of the specified
// size on a device with the specified capabilities.
func SizeNeeded(caps gpu.Caps, width, height int) (int, int) {
	if caps.NonPowerOfTwo {
		return width, height
	}
	return nextPowerOfTwo(width), nextPowerOfTwo(height)
}

// New is the preferred method of initialisation for the Texture type. The
// texture will be large enough for content of the specified size. Errors wrap
// gpu.ErrAllocation.
func New(dev gpu.Device, width, height int, format gpu.PixelFormat) (*Texture, error) {
	caps := dev.Caps()
	w, h := SizeNeeded(caps, width, height)
	if w > caps.MaxTextureSize || h > caps.MaxTextureSize {
		return nil, fmt.Errorf("texture: %w: %dx%d exceeds maximum texture size of %d",
			gpu.ErrAllocation, w, h, caps.MaxTextureSize)
	}

	s, err := dev.NewSurface(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}

	return &Texture{
		dev:     dev,
		surface: s,
		format:  format,
		width:   w,
		height:  h,
	}, nil
}

// ForFrame creates a new texture suitable for the frame.
func ForFrame(dev gpu.Device, f *frame.Frame) (*Texture, error) {
	format, err := gpu.FormatForDepth(f.Depth())
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return New(dev, f.Width(), f.Height(), format)
}

func (t *Texture) String() string {
	return fmt.Sprintf("%dx%d %s (content %dx%d)", t.width, t.height, t.format, t.content.Dx(), t.content.Dy())
}

// Surface returns the GPU surface of the texture.
func (t *Texture) Surface() gpu.Surface {
	return t.surface
}

// Size returns the allocated size of the texture.
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// Format returns the pixel format of the texture.
func (t *Texture) Format() gpu.PixelFormat {
	return t.format
}

// ContentRegion returns the populated area of the texture. The region is
// empty until the first upload.
func (t *Texture) ContentRegion() image.Rectangle {
	return t.content
}

// CanAccommodate returns true if the frame can be uploaded to the texture
// without the texture being reallocated.
func (t *Texture) CanAccommodate(f *frame.Frame) bool {
	format, err := gpu.FormatForDepth(f.Depth())
	if err != nil || format != t.format {
		return false
	}
	return f.Width() <= t.width && f.Height() <= t.height
}

// UploadFull copies the entire frame to the texture. Errors wrap
// gpu.ErrUpload.
func (t *Texture) UploadFull(f *frame.Frame) error {
	if !t.CanAccommodate(f) {
		return fmt.Errorf("%w: %s in %s", ErrCannotAccommodate, f, t)
	}

	region := image.Rect(0, 0, f.Width(), f.Height())
	if err := t.surface.Fill(region, f.Pixels(), f.Pitch()); err != nil {
		t.content = image.Rectangle{}
		return fmt.Errorf("texture: %w: %w", gpu.ErrUpload, err)
	}
	t.content = region

	return nil
}

// UploadRegion copies the dirty scanlines of the frame to the texture.
// Overlapping and adjacent dirty regions are merged so that there is one
// upload per merged region. A frame with no dirty regions causes no uploads.
//
// A frame that is entirely dirty, or a frame that is not the same size as the
// current content of the texture, is uploaded with UploadFull().
func (t *Texture) UploadRegion(f *frame.Frame) error {
	if !t.CanAccommodate(f) {
		return fmt.Errorf("%w: %s in %s", ErrCannotAccommodate, f, t)
	}

	if f.AllDirty() || t.content != image.Rect(0, 0, f.Width(), f.Height()) {
		return t.UploadFull(f)
	}

	pitch := f.Pitch()
	pixels := f.Pixels()

	for _, r := range frame.Coalesce(f.DirtyRegions()) {
		region := image.Rect(0, r.Start, f.Width(), r.End)
		if err := t.surface.Fill(region, pixels[r.Start*pitch:r.End*pitch], pitch); err != nil {
			// the content of the texture is now unknown. the next upload
			// will be a full upload
			t.content = image.Rectangle{}
			return fmt.Errorf("texture: %w: %w", gpu.ErrUpload, err)
		}
	}

	return nil
}

// Release the GPU resources used by the texture. The texture cannot be used
// after being released.
func (t *Texture) Release() {
	if t.surface != nil {
		t.surface.Release()
		t.surface = nil
	}
	t.content = image.Rectangle{}
}
