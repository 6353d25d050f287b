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

// Package frame contains the Frame type, a raster image produced by the
// emulation for each display update, and the Slot type which hands the most
// recent Frame from the emulation goroutine to the display goroutine.
//
// A Frame carries a list of the scanlines that have changed since the
// previous frame. The renderer uses this list to upload only the changed
// scanlines to the GPU. The list is capped at MaxDirtyRegions entries. When
// the cap is reached the frame is treated as being entirely dirty.
//
// Frames are mutable until they are published to a Slot. After that they are
// sealed and any attempt to change them will panic. The Next() function
// creates a new unsealed Frame from an existing Frame, ready for the next
// display update.
package frame

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/dosframe/geometry"
)

// MaxDirtyRegions is the maximum number of dirty regions a Frame will record.
// It is the largest vertical resolution expected from the emulation.
const MaxDirtyRegions = 1024

// IdenticalAspectRatioDelta is the difference below which two aspect ratios
// are considered to be the same.
const IdenticalAspectRatioDelta = 0.025

// Sentinel errors returned by New().
var (
	ErrInvalidSize  = errors.New("frame: invalid size")
	ErrInvalidDepth = errors.New("frame: invalid depth")
)

// BytesPerPixel returns the number of bytes used to store a single pixel at
// the specified bit depth.
func BytesPerPixel(depth int) (int, error) {
	switch depth {
	case 8:
		return 1, nil
	case 15, 16:
		return 2, nil
	case 24:
		return 3, nil
	case 32:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
}

// Frame is a single raster image along with information about how it should
// be displayed. It should be created with New() or Next().
type Frame struct {
	width  int
	height int
	depth  int
	pitch  int
	pixels []byte

	// the resolution of the emulated display mode. this can differ from the
	// width and height of the pixel buffer if the emulation has doubled
	// pixels
	baseResolution geometry.Size

	// the non-uniform scale required to display the frame at the intended
	// aspect ratio
	intendedScale geometry.Size

	// hint that the frame is a text mode
	containsText bool

	timestamp time.Time

	dirty    []Region
	overflow bool

	// set by Slot.Publish()
	sealed  bool
	version uint64

	// set by Slot.Latest(). the only field that changes after sealing
	consumed atomic.Bool
}

// New is the preferred method of initialisation for the Frame type. The pixel
// buffer is zeroed. The base resolution defaults to the buffer size and the
// intended scale to square pixels.
func New(width, height, depth int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	bpp, err := BytesPerPixel(depth)
	if err != nil {
		return nil, err
	}

	f := &Frame{
		width:          width,
		height:         height,
		depth:          depth,
		pitch:          width * bpp,
		baseResolution: geometry.NewSize(width, height),
		intendedScale:  geometry.Size{W: 1, H: 1},
		dirty:          make([]Region, 0, 16),
	}
	f.pixels = make([]byte, f.pitch*height)

	return f, nil
}

// Next creates a new unsealed Frame with a copy of the pixels and display
// information of the existing frame. The new frame has no dirty regions.
//
// This is how the emulation should create the frame for the next display
// update when it only redraws parts of the display.
func (f *Frame) Next() *Frame {
	n := &Frame{
		width:          f.width,
		height:         f.height,
		depth:          f.depth,
		pitch:          f.pitch,
		baseResolution: f.baseResolution,
		intendedScale:  f.intendedScale,
		containsText:   f.containsText,
		dirty:          make([]Region, 0, max(16, len(f.dirty))),
	}
	n.pixels = make([]byte, len(f.pixels))
	copy(n.pixels, f.pixels)
	return n
}

func (f *Frame) String() string {
	return fmt.Sprintf("%dx%d@%d (base %s)", f.width, f.height, f.depth, f.baseResolution)
}

func (f *Frame) mustBeUnsealed() {
	if f.sealed {
		panic("frame: modification of published frame")
	}
}

// Width of the pixel buffer in pixels.
func (f *Frame) Width() int {
	return f.width
}

// Height of the pixel buffer in pixels.
func (f *Frame) Height() int {
	return f.height
}

// Depth returns the number of bits per pixel.
func (f *Frame) Depth() int {
	return f.depth
}

// Pitch returns the number of bytes in each row of the pixel buffer.
func (f *Frame) Pitch() int {
	return f.pitch
}

// Size returns the dimensions of the pixel buffer.
func (f *Frame) Size() geometry.Size {
	return geometry.NewSize(f.width, f.height)
}

// Pixels returns the pixel buffer. The emulation writes to the buffer before
// publishing the frame. After publication the buffer must be treated as
// read-only.
func (f *Frame) Pixels() []byte {
	return f.pixels
}

// Row returns the pixels for a single scanline.
func (f *Frame) Row(y int) []byte {
	return f.pixels[y*f.pitch : (y+1)*f.pitch]
}

// Version returns the version number assigned to the frame when it was
// published. Zero if the frame has not been published.
func (f *Frame) Version() uint64 {
	return f.version
}

// Sealed returns true if the frame has been published.
func (f *Frame) Sealed() bool {
	return f.sealed
}

// Timestamp returns the time the frame was published, unless it was set
// explicitly with SetTimestamp().
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// SetTimestamp sets the time at which the frame was produced.
func (f *Frame) SetTimestamp(t time.Time) {
	f.mustBeUnsealed()
	f.timestamp = t
}

// ContainsText returns the hint that the frame is a text mode display.
func (f *Frame) ContainsText() bool {
	return f.containsText
}

// SetContainsText sets the text mode hint.
func (f *Frame) SetContainsText(text bool) {
	f.mustBeUnsealed()
	f.containsText = text
}

// BaseResolution returns the resolution of the emulated display mode.
func (f *Frame) BaseResolution() geometry.Size {
	return f.baseResolution
}

// SetBaseResolution sets the resolution of the emulated display mode. A zero
// size resets the base resolution to the size of the pixel buffer.
func (f *Frame) SetBaseResolution(base geometry.Size) {
	f.mustBeUnsealed()
	if base.IsZero() {
		base = f.Size()
	}
	f.baseResolution = base
}

// IntendedScale returns the non-uniform scale needed to display the frame at
// its intended aspect ratio.
func (f *Frame) IntendedScale() geometry.Size {
	return f.intendedScale
}

// CorrectedResolution returns the base resolution adjusted to match the aspect
// ratio of the pixel buffer. This compensates for any pixel doubling done by
// the emulation in only one dimension. The dimension that is too small is
// scaled up, so the corrected resolution is never smaller than the base
// resolution.
func (f *Frame) CorrectedResolution() geometry.Size {
	base := f.baseResolution
	bufferAspect := f.Size().Aspect()
	baseAspect := base.Aspect()

	if baseAspect == 0 || bufferAspect == 0 || math.Abs(baseAspect-bufferAspect) < 1e-9 {
		return base
	}

	if bufferAspect > baseAspect {
		return geometry.Size{W: base.H * bufferAspect, H: base.H}
	}
	return geometry.Size{W: base.W, H: base.W / bufferAspect}
}

// ScaledSize returns the size of the pixel buffer multiplied by the intended
// scale.
func (f *Frame) ScaledSize() geometry.Size {
	return f.Size().Scale(f.intendedScale)
}

// ScaledResolution returns the corrected resolution multiplied by the
// intended scale. The aspect ratio of the scaled resolution is the aspect
// ratio the frame should be displayed at.
func (f *Frame) ScaledResolution() geometry.Size {
	return f.CorrectedResolution().Scale(f.intendedScale)
}

// ScalingFactorForSize returns the scale required on each axis to stretch the
// pixel buffer to the specified size.
func (f *Frame) ScalingFactorForSize(size geometry.Size) geometry.Size {
	return geometry.Size{
		W: size.W / float64(f.width),
		H: size.H / float64(f.height),
	}
}

// UseAspectRatio sets the intended scale so that the scaled resolution has
// the specified aspect ratio. Narrower aspect ratios stretch the frame
// vertically and wider aspect ratios stretch the frame horizontally.
//
// If the requested ratio is within IdenticalAspectRatioDelta of the frame's
// own aspect ratio then the frame is left with square pixels. A ratio of zero
// or less is the same as calling UseSquarePixels().
func (f *Frame) UseAspectRatio(ratio float64) {
	f.mustBeUnsealed()

	if ratio <= 0 {
		f.intendedScale = geometry.Size{W: 1, H: 1}
		return
	}

	frameAspect := f.CorrectedResolution().Aspect()

	switch {
	case frameAspect == 0 || math.Abs(ratio-frameAspect) < IdenticalAspectRatioDelta:
		f.intendedScale = geometry.Size{W: 1, H: 1}
	case ratio < frameAspect:
		f.intendedScale = geometry.Size{W: 1, H: frameAspect / ratio}
	default:
		f.intendedScale = geometry.Size{W: ratio / frameAspect, H: 1}
	}
}

// UseSquarePixels resets the intended scale to 1:1.
func (f *Frame) UseSquarePixels() {
	f.mustBeUnsealed()
	f.intendedScale = geometry.Size{W: 1, H: 1}
}
