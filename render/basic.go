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
	"time"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/texture"
)

// Basic draws the frame texture directly into the viewport.
type Basic struct {
	dev gpu.Device
	cfg Config

	state State

	tex *texture.Texture

	// the most recently prepared frame
	frame *frame.Frame

	// the next upload must be a full upload
	needsFull bool

	// incremented every time the texture is allocated or released. the tiers
	// built on Basic use this to decide when to drop their own buffers
	generation int

	stats    Stats
	lastDraw time.Time
}

// NewBasic is the preferred method of initialisation for the Basic type.
func NewBasic(dev gpu.Device, cfg Config) *Basic {
	return &Basic{
		dev:       dev,
		cfg:       cfg.normalised(),
		needsFull: true,
	}
}

// Tier implements the Renderer interface.
func (b *Basic) Tier() Tier {
	return TierBasic
}

// State implements the Renderer interface.
func (b *Basic) State() State {
	return b.state
}

// Stats implements the Renderer interface.
func (b *Basic) Stats() Stats {
	return b.stats
}

// SetMaxViewportSize implements the Renderer interface.
func (b *Basic) SetMaxViewportSize(size geometry.Size) {
	b.cfg.MaxViewportSize = size
}

// SetManagesAspectRatio implements the Renderer interface.
func (b *Basic) SetManagesAspectRatio(manage bool) {
	b.cfg.ManagesAspectRatio = manage
}

// ViewportForFrame implements the Renderer interface.
func (b *Basic) ViewportForFrame(f *frame.Frame, bounds geometry.Rect) geometry.Rect {
	r := bounds
	if b.cfg.ManagesAspectRatio && f != nil {
		r = geometry.FitAspect(f.ScaledResolution().Aspect(), bounds)
	}
	r = geometry.ClampSize(r, b.cfg.MaxViewportSize)
	return r.Integral()
}

// PrepareForFrame implements the Renderer interface.
func (b *Basic) PrepareForFrame(f *frame.Frame) error {
	if b.state == Disposed {
		return ErrDisposed
	}
	if f == nil {
		return fmt.Errorf("render: nil frame")
	}

	if b.tex == nil || !b.tex.CanAccommodate(f) {
		b.releaseTexture()

		tex, err := texture.ForFrame(b.dev, f)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		b.tex = tex
		b.generation++
		b.needsFull = true

		logger.Logf(b.cfg.Log, "render", "frame texture: %s", tex)
	}

	var err error
	if b.needsFull {
		err = b.tex.UploadFull(f)
	} else {
		err = b.tex.UploadRegion(f)
	}
	if err != nil {
		b.needsFull = true
		return fmt.Errorf("render: %w", err)
	}

	b.needsFull = false
	b.frame = f
	b.state = Ready

	return nil
}

// RenderToViewport implements the Renderer interface.
func (b *Basic) RenderToViewport(viewport geometry.Rect) error {
	return b.render(viewport, b.drawDirect)
}

// render is the common part of RenderToViewport() for all tiers. the draw
// function is called with the rectangle that the frame should be drawn into
func (b *Basic) render(viewport geometry.Rect, draw func(dest image.Rectangle) error) error {
	if b.state == Disposed {
		return ErrDisposed
	}
	if b.frame == nil || b.tex == nil {
		return nil
	}

	start := b.cfg.Clock()
	b.state = Rendering
	defer func() {
		b.state = Ready
	}()

	dest := b.ViewportForFrame(b.frame, viewport).Image()
	if dest.Empty() {
		return nil
	}

	if err := b.dev.Clear(nil); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := draw(dest); err != nil {
		return err
	}

	b.stats.record(start, b.cfg.Clock(), b.lastDraw)
	b.lastDraw = start

	return nil
}

// source returns the surface and content region of the frame texture.
func (b *Basic) source() (gpu.Surface, image.Rectangle) {
	return b.tex.Surface(), b.tex.ContentRegion()
}

// drawDirect draws the frame texture into the destination on the screen.
func (b *Basic) drawDirect(dest image.Rectangle) error {
	src, region := b.source()
	err := b.dev.Draw(gpu.DrawOp{
		Source:       src,
		SourceRegion: region,
		Dest:         dest,
		Filter:       filterFor(region, dest),
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// filterFor returns the nearest neighbour filter if the destination is an
// integral multiple of the source. otherwise it returns the linear filter.
func filterFor(src, dest image.Rectangle) gpu.Filter {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dest.Dx(), dest.Dy()
	if sw > 0 && sh > 0 && dw >= sw && dh >= sh && dw%sw == 0 && dh%sh == 0 {
		return gpu.Nearest
	}
	return gpu.Linear
}

// Invalidate implements the Renderer interface.
func (b *Basic) Invalidate() {
	b.releaseTexture()
	b.needsFull = true
}

func (b *Basic) releaseTexture() {
	if b.tex != nil {
		b.tex.Release()
		b.tex = nil
		b.generation++
	}
}

// Dispose implements the Renderer interface.
func (b *Basic) Dispose() error {
	if b.state == Disposed {
		return ErrDisposed
	}
	b.releaseTexture()
	b.frame = nil
	b.state = Disposed
	return nil
}
