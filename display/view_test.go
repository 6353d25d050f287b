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

package display_test

import (
	"errors"
	"image"
	"testing"

	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/gpu/gputest"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/shaders"
	"github.com/jetsetilly/dosframe/test"
)

// a 320x200 frame displayed with a 4:3 aspect ratio
func newFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)
	f.UseAspectRatio(4.0 / 3.0)
	return f
}

func newView(t *testing.T, dev gpu.Device, cfg render.Config) *display.View {
	t.Helper()
	cfg.Log = logger.Deny
	v, err := display.NewView(dev, nil, cfg)
	test.DemandSuccess(t, err)
	t.Cleanup(v.Destroy)
	return v
}

func TestViewEndToEnd(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{Tier: render.TierBasic, ManagesAspectRatio: true})
	v.SetBounds(geometry.NewRect(0, 0, 800, 600))

	// nothing has been published
	newer, err := v.Refresh()
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, newer)
	test.ExpectEquality(t, len(dev.Draws), 0)

	f := newFrame(t)
	v.Publish(f)
	newer, err = v.Refresh()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, newer)

	dev.Reset()
	g := f.Next()
	g.MarkRegionDirty(frame.Region{Start: 50, End: 60})
	v.Publish(g)

	newer, err = v.Refresh()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, newer)
	test.ExpectEquality(t, v.Frame(), g)

	test.DemandEquality(t, len(dev.Fills), 1)
	test.ExpectEquality(t, dev.Fills[0].Region, image.Rect(0, 50, 320, 60))

	test.DemandEquality(t, len(dev.ScreenDraws()), 1)
	test.ExpectEquality(t, dev.ScreenDraws()[0].Dest, image.Rect(0, 0, 800, 600))
	test.ExpectEquality(t, v.Viewport(), geometry.NewRect(0, 0, 800, 600))

	// refreshing without a new frame draws the same frame again
	dev.Reset()
	newer, err = v.Refresh()
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, newer)
	test.ExpectEquality(t, len(dev.Fills), 0)
	test.ExpectEquality(t, len(dev.ScreenDraws()), 1)
}

func TestViewportForFrame(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{ManagesAspectRatio: true})
	v.SetBounds(geometry.NewRect(0, 0, 800, 400))

	vp := v.ViewportForFrame(newFrame(t))
	test.ExpectEquality(t, vp, geometry.NewRect(133, 0, 534, 400))

	v.SetManagesAspectRatio(false)
	test.ExpectFailure(t, v.ManagesAspectRatio())
	test.ExpectEquality(t, v.ViewportForFrame(newFrame(t)), geometry.NewRect(0, 0, 800, 400))

	v.SetManagesAspectRatio(true)
	v.SetMaxViewportSize(geometry.NewSize(400, 300))
	test.ExpectEquality(t, v.ViewportForFrame(newFrame(t)), geometry.NewRect(200, 50, 400, 300))

	// settings survive a change of renderer
	test.DemandSuccess(t, v.SetTier(render.TierSupersampling))
	test.ExpectEquality(t, v.ViewportForFrame(newFrame(t)), geometry.NewRect(200, 50, 400, 300))
}

func TestViewCompileFallback(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	dev.FailCompile = []string{"scanlines"}

	steps := shaders.CRT()
	v := newView(t, dev, render.Config{
		Tier:    render.TierStepped,
		Steps:   steps,
		Shaders: steps[len(steps)-1].Set,
	})
	test.ExpectEquality(t, v.Tier(), render.TierSupersampling)
	test.ExpectEquality(t, len(dev.LivePrograms()), 0)

	// a shader set that compiles allows a more complex tier
	test.DemandSuccess(t, v.SetShaders(shaders.Smoothed()))
	test.ExpectEquality(t, v.Tier(), render.TierStepped)
	test.ExpectEquality(t, len(dev.LivePrograms()), 1)
}

func TestViewNoShaders(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{Tier: render.TierStepped})
	test.ExpectEquality(t, v.Tier(), render.TierShader)
}

func TestViewAllocationFallback(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	dev.FailAllocation = 1000

	v := newView(t, dev, render.Config{Tier: render.TierSupersampling})
	v.SetBounds(geometry.NewRect(0, 0, 1000, 700))

	// the supersampling buffer would be 1280x800
	v.Publish(newFrame(t))
	_, err := v.Refresh()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.Tier(), render.TierBasic)

	// the frame was prepared again for the new renderer and drawn directly
	scr := dev.ScreenDraws()
	test.DemandEquality(t, len(scr), 1)
	test.ExpectEquality(t, scr[0].Source, gpu.Surface(dev.Live()[0]))
	test.ExpectEquality(t, scr[0].Dest, image.Rect(0, 0, 1000, 700))
}

func TestViewUploadRetry(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{Tier: render.TierBasic})
	v.SetBounds(geometry.NewRect(0, 0, 640, 400))

	f := newFrame(t)
	v.Publish(f)
	_, err := v.Refresh()
	test.DemandSuccess(t, err)

	dev.Reset()
	dev.FailFills = 1

	g := f.Next()
	g.MarkRegionDirty(frame.Region{Start: 10, End: 20})
	v.Publish(g)
	_, err = v.Refresh()
	test.DemandSuccess(t, err)

	// the failed fill is not recorded. the retry is a full upload into a new
	// texture
	test.DemandEquality(t, len(dev.Fills), 1)
	test.ExpectEquality(t, dev.Fills[0].Region, image.Rect(0, 0, 320, 200))
	test.ExpectEquality(t, len(dev.Surfaces), 2)
	test.ExpectEquality(t, len(dev.Live()), 1)
	test.ExpectEquality(t, len(dev.ScreenDraws()), 1)
}

func TestViewContextLost(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{Tier: render.TierShader, Shaders: shaders.RippleSet()})

	dev.LoseContext = true
	v.Publish(newFrame(t))
	_, err := v.Refresh()
	test.ExpectSuccess(t, errors.Is(err, gpu.ErrContextLost))

	// the tier does not change because a simpler renderer would not help
	test.ExpectEquality(t, v.Tier(), render.TierShader)
}

func TestViewSetTier(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{Tier: render.TierBasic})
	v.SetBounds(geometry.NewRect(0, 0, 640, 400))

	v.Publish(newFrame(t))
	_, err := v.Refresh()
	test.DemandSuccess(t, err)

	dev.Reset()
	test.DemandSuccess(t, v.SetTier(render.TierSupersampling))
	test.ExpectEquality(t, v.Tier(), render.TierSupersampling)
	test.ExpectEquality(t, v.Renderer().Tier(), render.TierSupersampling)

	// the old texture is released and the current frame uploaded in full
	test.ExpectEquality(t, len(dev.Live()), 1)
	test.DemandEquality(t, len(dev.Fills), 1)
	test.ExpectEquality(t, dev.Fills[0].Region, image.Rect(0, 0, 320, 200))

	test.DemandSuccess(t, v.Redraw())
	test.ExpectEquality(t, len(dev.ScreenDraws()), 1)
}

func TestViewDestroyed(t *testing.T) {
	dev := gputest.NewDevice(0, true)
	v, err := display.NewView(dev, nil, render.Config{Log: logger.Deny})
	test.DemandSuccess(t, err)

	v.Destroy()
	_, err = v.Refresh()
	test.ExpectSuccess(t, errors.Is(err, render.ErrDisposed))
	test.ExpectSuccess(t, errors.Is(v.Redraw(), render.ErrDisposed))
}
