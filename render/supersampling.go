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

package render

import (
	"fmt"
	"image"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/texture"
)

// Supersampling draws the frame texture into an intermediate buffer with
// nearest neighbour filtering and then draws the buffer into the viewport
// with linear filtering. The result is sharper than drawing the frame texture
// directly with linear filtering and smoother than drawing it with nearest
// neighbour filtering.
//
// The buffer is the smallest integral multiple of the frame size that is at
// least as large as the viewport. If the multiple needed is larger than the
// maximum supersampling scale then the buffer is not used.
type Supersampling struct {
	base *Basic

	buffer gpu.Surface

	// the used area of the buffer. the allocated buffer may be larger if the
	// device requires power-of-two surfaces
	bufferRegion image.Rectangle

	// value of base.generation when the buffer was last drawn into
	generation int
}

// NewSupersampling is the preferred method of initialisation for the
// Supersampling type.
func NewSupersampling(dev gpu.Device, cfg Config) *Supersampling {
	return &Supersampling{
		base: NewBasic(dev, cfg),
	}
}

// Tier implements the Renderer interface.
func (s *Supersampling) Tier() Tier {
	return TierSupersampling
}

// State implements the Renderer interface.
func (s *Supersampling) State() State {
	return s.base.State()
}

// Stats implements the Renderer interface.
func (s *Supersampling) Stats() Stats {
	return s.base.Stats()
}

// SetMaxViewportSize implements the Renderer interface.
func (s *Supersampling) SetMaxViewportSize(size geometry.Size) {
	s.base.SetMaxViewportSize(size)
}

// SetManagesAspectRatio implements the Renderer interface.
func (s *Supersampling) SetManagesAspectRatio(manage bool) {
	s.base.SetManagesAspectRatio(manage)
}

// ViewportForFrame implements the Renderer interface.
func (s *Supersampling) ViewportForFrame(f *frame.Frame, bounds geometry.Rect) geometry.Rect {
	return s.base.ViewportForFrame(f, bounds)
}

// MaxSupersamplingScale returns the largest multiple of the frame size that
// will be used for the supersampling buffer.
func (s *Supersampling) MaxSupersamplingScale() float64 {
	return s.base.cfg.MaxSupersamplingScale
}

// SetMaxSupersamplingScale changes the largest multiple of the frame size
// that will be used for the supersampling buffer. A value of zero or less
// restores the default.
func (s *Supersampling) SetMaxSupersamplingScale(scale float64) {
	if scale <= 0 {
		scale = DefaultMaxSupersamplingScale
	}
	s.base.cfg.MaxSupersamplingScale = scale
}

// PrepareForFrame implements the Renderer interface.
func (s *Supersampling) PrepareForFrame(f *frame.Frame) error {
	err := s.base.PrepareForFrame(f)
	if s.base.generation != s.generation {
		s.releaseBuffer()
	}
	return err
}

// RenderToViewport implements the Renderer interface.
func (s *Supersampling) RenderToViewport(viewport geometry.Rect) error {
	return s.base.render(viewport, s.draw)
}

// BufferSize returns the size of the supersampling buffer for content of the
// specified size drawn into a destination of the specified size. Returns
// false if supersampling should not be used.
//
// Supersampling is not used if the destination is no larger than the
// content, if the buffer would be the same size as the destination, if the
// multiple needed on either axis is larger than the maximum supersampling
// scale, or if the buffer would be larger than the device allows.
func (s *Supersampling) BufferSize(content image.Point, dest image.Point) (image.Point, bool) {
	if content.X <= 0 || content.Y <= 0 || dest.X <= 0 || dest.Y <= 0 {
		return image.Point{}, false
	}

	// smallest integral multiple on each axis that covers the destination
	sx := max(1, (dest.X+content.X-1)/content.X)
	sy := max(1, (dest.Y+content.Y-1)/content.Y)

	if sx <= 1 && sy <= 1 {
		return image.Point{}, false
	}

	if float64(max(sx, sy)) > s.base.cfg.MaxSupersamplingScale {
		return image.Point{}, false
	}

	sz := image.Pt(content.X*sx, content.Y*sy)
	if sz == dest {
		return image.Point{}, false
	}

	caps := s.base.dev.Caps()
	w, h := texture.SizeNeeded(caps, sz.X, sz.Y)
	if w > caps.MaxTextureSize || h > caps.MaxTextureSize {
		return image.Point{}, false
	}

	return sz, true
}

// supersample draws the frame texture into the supersampling buffer, if
// supersampling is appropriate for the destination. it returns the surface and
// region that the next stage of rendering should draw from, which will be the
// frame texture if supersampling is not used.
func (s *Supersampling) supersample(dest image.Rectangle) (gpu.Surface, image.Rectangle, error) {
	src, region := s.base.source()

	sz, ok := s.BufferSize(region.Size(), dest.Size())
	if !ok {
		s.releaseBuffer()
		return src, region, nil
	}

	if s.buffer == nil || s.bufferRegion.Size() != sz {
		s.releaseBuffer()

		w, h := texture.SizeNeeded(s.base.dev.Caps(), sz.X, sz.Y)
		buf, err := s.base.dev.NewSurface(w, h, gpu.BGRA8888)
		if err != nil {
			return nil, image.Rectangle{}, fmt.Errorf("render: supersampling: %w", err)
		}
		s.buffer = buf
		s.bufferRegion = image.Rectangle{Max: sz}

		logger.Logf(s.base.cfg.Log, "render", "supersampling buffer: %dx%d", sz.X, sz.Y)
	}
	s.generation = s.base.generation

	err := s.base.dev.Draw(gpu.DrawOp{
		Source:       src,
		SourceRegion: region,
		Target:       s.buffer,
		Dest:         s.bufferRegion,
		Filter:       gpu.Nearest,
	})
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("render: supersampling: %w", err)
	}

	return s.buffer, s.bufferRegion, nil
}

// draw the frame into the destination on the screen.
func (s *Supersampling) draw(dest image.Rectangle) error {
	src, region, err := s.supersample(dest)
	if err != nil {
		return err
	}

	if src != s.buffer || s.buffer == nil {
		return s.base.drawDirect(dest)
	}

	err = s.base.dev.Draw(gpu.DrawOp{
		Source:       src,
		SourceRegion: region,
		Dest:         dest,
		Filter:       gpu.Linear,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return nil
}

// Supersampled returns true if the supersampling buffer is currently
// allocated.
func (s *Supersampling) Supersampled() bool {
	return s.buffer != nil
}

func (s *Supersampling) releaseBuffer() {
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
		s.bufferRegion = image.Rectangle{}
	}
}

// Invalidate implements the Renderer interface.
func (s *Supersampling) Invalidate() {
	s.releaseBuffer()
	s.base.Invalidate()
}

// Dispose implements the Renderer interface.
func (s *Supersampling) Dispose() error {
	if s.base.State() == Disposed {
		return ErrDisposed
	}
	s.releaseBuffer()
	return s.base.Dispose()
}
