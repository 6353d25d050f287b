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

package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/gpu/gl32"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/screenshot"
	"github.com/jetsetilly/dosframe/version"
)

// sdlViewer is a window showing the display with OpenGL 3.2.
//
// MUST ONLY be created and serviced from the #mainthread
type sdlViewer struct {
	window    *sdl.Window
	glContext sdl.GLContext
	mode      sdl.DisplayMode

	dev  *gl32.Device
	view *display.View
	prf  *display.Preferences

	// a screenshot is taken after the next refresh
	screenshot bool

	// closed when the window is closed
	closed   chan struct{}
	isClosed bool
}

func newSDLViewer(prf *display.Preferences, slot *frame.Slot, width, height int) (*sdlViewer, error) {
	// the SDL package calls LockOSThread() but we call it here too. it can't
	// hurt and we never unlock it in any case
	runtime.LockOSThread()

	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	for _, attr := range []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 3},
		{sdl.GL_CONTEXT_MINOR_VERSION, 2},
		{sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	} {
		err = sdl.GLSetAttribute(attr.attr, attr.value)
		if err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	var sdlVersion sdl.Version
	sdl.VERSION(&sdlVersion)
	logger.Logf(logger.Allow, "sdl", "version %d.%d.%d", sdlVersion.Major, sdlVersion.Minor, sdlVersion.Patch)

	vw := &sdlViewer{
		prf:    prf,
		closed: make(chan struct{}),
	}

	vw.mode, err = sdl.GetCurrentDisplayMode(0)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	logger.Logf(logger.Allow, "sdl", "refresh rate: %dHz", vw.mode.RefreshRate)

	ver, _, _ := version.Version()
	vw.window, err = sdl.CreateWindow(fmt.Sprintf("%s (%s)", version.ApplicationName, ver),
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_ALLOW_HIGHDPI|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	vw.glContext, err = vw.window.GLCreateContext()
	if err != nil {
		vw.destroyWindow()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	err = vw.window.GLMakeCurrent(vw.glContext)
	if err != nil {
		vw.destroyWindow()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	err = sdl.GLSetSwapInterval(1)
	if err != nil {
		logger.Logf(logger.Allow, "sdl", "GLSetSwapInterval(1): %v", err)
	}

	w, h := vw.window.GLGetDrawableSize()
	vw.dev, err = gl32.NewDevice(int(w), int(h))
	if err != nil {
		vw.destroyWindow()
		return nil, err
	}

	cfg, err := prf.Config()
	if err != nil {
		vw.destroyDevice()
		return nil, err
	}

	vw.view, err = display.NewView(vw.dev, slot, cfg)
	if err != nil {
		vw.destroyDevice()
		return nil, err
	}
	vw.view.SetBounds(geometry.NewRect(0, 0, int(w), int(h)))
	prf.Attach(vw.view)
	logTier(vw.view)

	return vw, nil
}

// DisplayRefreshRate implements the limiter.Display interface.
func (vw *sdlViewer) DisplayRefreshRate() (float32, bool) {
	return float32(vw.mode.RefreshRate), vw.mode.RefreshRate > 0
}

func (vw *sdlViewer) destroyWindow() {
	if vw.glContext != nil {
		sdl.GLDeleteContext(vw.glContext)
		vw.glContext = nil
	}
	if vw.window != nil {
		_ = vw.window.Destroy()
		vw.window = nil
	}
	sdl.Quit()
}

func (vw *sdlViewer) destroyDevice() {
	if vw.view != nil {
		vw.view.Destroy()
		vw.view = nil
	}
	if vw.dev != nil {
		vw.dev.Destroy()
		vw.dev = nil
	}
	vw.destroyWindow()
}

// Destroy implements the GuiCreator interface.
//
// MUST ONLY be called from the #mainthread
func (vw *sdlViewer) Destroy(output io.Writer) {
	if vw.view != nil {
		fmt.Fprintf(output, "%s\n", vw.view.Stats())
	}
	vw.destroyDevice()
	vw.close()
}

func (vw *sdlViewer) close() {
	if !vw.isClosed {
		vw.isClosed = true
		close(vw.closed)
	}
}

func (vw *sdlViewer) resize() {
	w, h := vw.window.GLGetDrawableSize()
	vw.dev.SetScreenSize(int(w), int(h))
	vw.view.SetBounds(geometry.NewRect(0, 0, int(w), int(h)))
}

// keys that select a renderer tier
var tierKeys = map[sdl.Keycode]string{
	sdl.K_F1: "basic",
	sdl.K_F2: "supersampling",
	sdl.K_F3: "shader",
	sdl.K_F4: "stepped",
}

func (vw *sdlViewer) key(sym sdl.Keycode) {
	var err error

	switch sym {
	case sdl.K_ESCAPE:
		vw.close()
	case sdl.K_F12:
		vw.screenshot = true
	case sdl.K_a:
		err = vw.prf.ManagesAspect.Set(!vw.view.ManagesAspectRatio())
	case sdl.K_r:
		err = vw.prf.AspectRatio.Set(nextAspectRatio(vw.prf.AspectRatio.Get().(float64)))
	default:
		if t, ok := tierKeys[sym]; ok {
			err = vw.prf.Tier.Set(t)
			logTier(vw.view)
		}
	}

	if err != nil {
		logger.Log(logger.Allow, "sdl", err)
	}
}

// Service implements the GuiCreator interface.
//
// MUST ONLY be called from the #mainthread
func (vw *sdlViewer) Service() {
	if vw.view == nil {
		return
	}

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			vw.close()
		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				vw.resize()
			}
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Repeat == 0 {
				vw.key(ev.Keysym.Sym)
			}
		}
	}

	_, err := vw.view.Refresh()
	if err != nil {
		logger.Log(logger.Allow, "sdl", err)
		if errors.Is(err, gpu.ErrContextLost) || errors.Is(err, render.ErrDisposed) {
			vw.close()
		}
		return
	}

	if vw.screenshot {
		vw.screenshot = false
		err = screenshot.Capture(vw.dev, screenshot.Filename(vw.view.Tier().String(), ""))
		if err != nil {
			logger.Log(logger.Allow, "sdl", err)
		}
	}

	vw.window.GLSwap()
}

// Closed implements the viewer interface.
func (vw *sdlViewer) Closed() <-chan struct{} {
	return vw.closed
}

func view(md *modalflag.Modes, sync *mainSync) error {
	return runViewer(md, sync, func(prf *display.Preferences, slot *frame.Slot, width, height int) (viewer, error) {
		return newSDLViewer(prf, slot, width, height)
	})
}
