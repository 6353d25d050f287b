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

// Package display is the boundary between the frame producer and the
// renderers. A View takes the latest frame published to a frame.Slot and
// draws it into its bounds using a render.Renderer.
//
// The View is responsible for recovering from renderer failures. If a
// renderer cannot be created, or fails with gpu.ErrAllocation, the View
// replaces it with a renderer of the next simplest tier. A failed upload is
// retried once with a full upload after the renderer has been invalidated.
//
// Apart from Publish(), which can be called from any goroutine, the View
// must only be used from the goroutine that owns the gpu.Device.
package display

import (
	"errors"
	"fmt"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/render"
)

// View draws the most recent frame into a rectangle of the screen.
type View struct {
	dev  gpu.Device
	cfg  render.Config
	slot *frame.Slot

	renderer render.Renderer

	// the tier requested. the tier of the renderer may be simpler if the
	// requested tier could not be used
	requested render.Tier

	// the version of the most recent frame taken from the slot
	seen    uint64
	current *frame.Frame

	bounds geometry.Rect
}

// NewView is the preferred method of initialisation for the View type. The
// tier in the Config is the preferred tier. A simpler tier will be used if
// the preferred tier cannot be created.
func NewView(dev gpu.Device, slot *frame.Slot, cfg render.Config) (*View, error) {
	if slot == nil {
		slot = &frame.Slot{}
	}
	if cfg.Log == nil {
		cfg.Log = logger.Allow
	}

	v := &View{
		dev:       dev,
		cfg:       cfg,
		slot:      slot,
		requested: cfg.Tier,
	}

	if err := v.create(cfg.Tier); err != nil {
		return nil, err
	}

	return v, nil
}

// create a renderer of the specified tier, or the nearest simpler tier that
// can be created. the existing renderer is disposed of
func (v *View) create(tier render.Tier) error {
	v.dispose()

	cfg := v.cfg
	cfg.Tier = tier

	for {
		r, err := render.New(v.dev, cfg)
		if err == nil {
			v.renderer = r
			break
		}

		if !recoverable(err) {
			return fmt.Errorf("display: %w", err)
		}

		simpler, ok := cfg.Tier.Simpler()
		if !ok {
			return fmt.Errorf("display: %w", err)
		}
		logger.Logf(v.cfg.Log, "display", "%v", err)
		logger.Logf(v.cfg.Log, "display", "falling back from %s to %s renderer", cfg.Tier, simpler)
		cfg.Tier = simpler
	}

	// the new renderer has no frame texture
	if v.current != nil {
		return v.prepare(v.current)
	}

	return nil
}

// errors that can be recovered from with a simpler renderer
func recoverable(err error) bool {
	if errors.Is(err, gpu.ErrContextLost) {
		return false
	}
	return errors.Is(err, gpu.ErrAllocation) || errors.Is(err, gpu.ErrShaderCompilation) ||
		errors.Is(err, render.ErrNoShaders)
}

// fallback replaces the renderer with one of the next simplest tier
func (v *View) fallback(cause error) error {
	simpler, ok := v.renderer.Tier().Simpler()
	if !ok {
		return cause
	}
	logger.Logf(v.cfg.Log, "display", "%v", cause)
	logger.Logf(v.cfg.Log, "display", "falling back from %s to %s renderer", v.renderer.Tier(), simpler)
	return v.create(simpler)
}

func (v *View) dispose() {
	if v.renderer != nil {
		_ = v.renderer.Dispose()
		v.renderer = nil
	}
}

// Renderer returns the renderer being used.
func (v *View) Renderer() render.Renderer {
	return v.renderer
}

// Tier returns the tier of the renderer being used. This may be simpler than
// the tier requested.
func (v *View) Tier() render.Tier {
	if v.renderer == nil {
		return v.requested
	}
	return v.renderer.Tier()
}

// SetTier replaces the renderer with one of the specified tier. The current
// frame is prepared for the new renderer.
func (v *View) SetTier(tier render.Tier) error {
	v.requested = tier
	v.cfg.Tier = tier
	return v.create(tier)
}

// SetShaders replaces the shader sets used by the shader and stepped tiers.
// The shader tier uses the set of the final step.
func (v *View) SetShaders(steps []render.Step) error {
	v.cfg.Steps = steps
	v.cfg.Shaders = render.ShaderSet{}
	if len(steps) > 0 {
		v.cfg.Shaders = steps[len(steps)-1].Set
	}
	return v.create(v.requested)
}

// SetScalesInPixels sets whether the thresholds of the stepped tier are
// viewport heights rather than multiples of the frame size.
func (v *View) SetScalesInPixels(pixels bool) error {
	v.cfg.ScalesInPixels = pixels
	return v.create(v.requested)
}

// SetMaxSupersamplingScale sets the largest multiple of the frame size used
// for the supersampling buffer.
func (v *View) SetMaxSupersamplingScale(scale float64) error {
	v.cfg.MaxSupersamplingScale = scale
	return v.create(v.requested)
}

// Publish makes the frame available to the next call to Refresh(). It can be
// called from any goroutine.
func (v *View) Publish(f *frame.Frame) uint64 {
	return v.slot.Publish(f)
}

// Slot returns the frame slot used by the View.
func (v *View) Slot() *frame.Slot {
	return v.slot
}

// Frame returns the frame most recently taken from the slot. Returns nil if
// no frame has been taken yet.
func (v *View) Frame() *frame.Frame {
	return v.current
}

// SetBounds sets the rectangle of the screen the View draws into.
func (v *View) SetBounds(bounds geometry.Rect) {
	v.bounds = bounds
}

// Bounds returns the rectangle of the screen the View draws into.
func (v *View) Bounds() geometry.Rect {
	return v.bounds
}

// ViewportForFrame returns the rectangle that the frame would be drawn into.
func (v *View) ViewportForFrame(f *frame.Frame) geometry.Rect {
	return v.renderer.ViewportForFrame(f, v.bounds)
}

// Viewport returns the rectangle that the current frame is drawn into.
func (v *View) Viewport() geometry.Rect {
	return v.ViewportForFrame(v.current)
}

// SetMaxViewportSize limits the size of the rectangle the frame is drawn into.
// A zero size means no limit.
func (v *View) SetMaxViewportSize(size geometry.Size) {
	v.cfg.MaxViewportSize = size
	v.renderer.SetMaxViewportSize(size)
}

// SetManagesAspectRatio sets whether the frame is drawn with the aspect ratio
// of its scaled resolution.
func (v *View) SetManagesAspectRatio(manage bool) {
	v.cfg.ManagesAspectRatio = manage
	v.renderer.SetManagesAspectRatio(manage)
}

// ManagesAspectRatio returns the value last set by SetManagesAspectRatio().
func (v *View) ManagesAspectRatio() bool {
	return v.cfg.ManagesAspectRatio
}

// prepare uploads the frame, retrying once with a full upload if the upload
// fails
func (v *View) prepare(f *frame.Frame) error {
	err := v.renderer.PrepareForFrame(f)
	if err == nil {
		return nil
	}

	if errors.Is(err, gpu.ErrUpload) && !errors.Is(err, gpu.ErrContextLost) {
		logger.Logf(v.cfg.Log, "display", "retrying upload: %v", err)
		v.renderer.Invalidate()
		err = v.renderer.PrepareForFrame(f)
		if err == nil {
			return nil
		}
	}

	if recoverable(err) {
		return v.fallback(err)
	}

	return fmt.Errorf("display: %w", err)
}

// Refresh takes the latest frame from the slot, if there is a new one, and
// draws the current frame into the bounds of the View. Returns true if a new
// frame was taken from the slot.
//
// An error is returned only if the View cannot recover. The View should not
// be used after an error that wraps gpu.ErrContextLost. It should instead be
// recreated along with the gpu.Device.
func (v *View) Refresh() (bool, error) {
	if v.renderer == nil {
		return false, fmt.Errorf("display: %w", render.ErrDisposed)
	}

	f, version, newer := v.slot.Latest(v.seen)
	if newer {
		v.seen = version
		v.current = f
		if err := v.prepare(f); err != nil {
			return true, err
		}
	}

	return newer, v.render()
}

// Redraw draws the current frame without taking a new frame from the slot.
func (v *View) Redraw() error {
	if v.renderer == nil {
		return fmt.Errorf("display: %w", render.ErrDisposed)
	}
	return v.render()
}

func (v *View) render() error {
	if v.current == nil {
		return nil
	}

	for {
		err := v.renderer.RenderToViewport(v.bounds)
		if err == nil {
			return nil
		}
		if !recoverable(err) {
			return fmt.Errorf("display: %w", err)
		}
		if _, ok := v.renderer.Tier().Simpler(); !ok {
			return fmt.Errorf("display: %w", err)
		}
		if err := v.fallback(err); err != nil {
			return err
		}
	}
}

// Stats returns the statistics of the renderer.
func (v *View) Stats() render.Stats {
	return v.renderer.Stats()
}

// Destroy releases the renderer. The View cannot be used afterwards.
func (v *View) Destroy() {
	v.dispose()
	v.current = nil
}
