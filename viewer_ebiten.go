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

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/gpu/ebitengpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/screenshot"
	"github.com/jetsetilly/dosframe/version"
)

// ebitenViewer is a window showing the display with Ebitengine. It
// implements the ebiten.Game interface.
//
// Ebitengine runs its own loop on the main thread so the first call to
// Service() does not return until the window is closed.
type ebitenViewer struct {
	dev  *ebitengpu.Device
	view *display.View
	prf  *display.Preferences

	// a screenshot is taken after the next draw
	screenshot bool

	running bool

	// closed when the window is closed
	closed chan struct{}
}

func newEbitenViewer(prf *display.Preferences, slot *frame.Slot, width, height int) (*ebitenViewer, error) {
	ver, _, _ := version.Version()
	ebiten.SetWindowTitle(fmt.Sprintf("%s (%s)", version.ApplicationName, ver))
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	vw := &ebitenViewer{
		dev:    ebitengpu.NewDevice(),
		prf:    prf,
		closed: make(chan struct{}),
	}

	cfg, err := prf.Config()
	if err != nil {
		return nil, err
	}

	vw.view, err = display.NewView(vw.dev, slot, cfg)
	if err != nil {
		return nil, err
	}
	prf.Attach(vw.view)
	logTier(vw.view)

	return vw, nil
}

// Destroy implements the GuiCreator interface.
func (vw *ebitenViewer) Destroy(output io.Writer) {
	if vw.view != nil {
		fmt.Fprintf(output, "%s\n", vw.view.Stats())
		vw.view.Destroy()
		vw.view = nil
	}
}

// Service implements the GuiCreator interface.
func (vw *ebitenViewer) Service() {
	if vw.running {
		return
	}
	vw.running = true

	err := ebiten.RunGame(vw)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Log(logger.Allow, "ebiten", err)
	}

	close(vw.closed)
}

// keys that select a renderer tier
var ebitenTierKeys = map[ebiten.Key]string{
	ebiten.KeyF1: "basic",
	ebiten.KeyF2: "supersampling",
	ebiten.KeyF3: "shader",
	ebiten.KeyF4: "stepped",
}

// Update implements the ebiten.Game interface.
func (vw *ebitenViewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		vw.screenshot = true
	}

	var err error
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		err = vw.prf.ManagesAspect.Set(!vw.view.ManagesAspectRatio())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		err = vw.prf.AspectRatio.Set(nextAspectRatio(vw.prf.AspectRatio.Get().(float64)))
	}
	for k, t := range ebitenTierKeys {
		if inpututil.IsKeyJustPressed(k) {
			err = vw.prf.Tier.Set(t)
			logTier(vw.view)
		}
	}
	if err != nil {
		logger.Log(logger.Allow, "ebiten", err)
	}

	return nil
}

// Draw implements the ebiten.Game interface.
func (vw *ebitenViewer) Draw(screen *ebiten.Image) {
	vw.dev.SetScreen(screen)
	vw.view.SetBounds(geometry.FromImage(screen.Bounds()))

	_, err := vw.view.Refresh()
	if err != nil {
		logger.Log(logger.Allow, "ebiten", err)
		return
	}

	if vw.screenshot {
		vw.screenshot = false
		err = screenshot.Capture(vw.dev, screenshot.Filename(vw.view.Tier().String(), ""))
		if err != nil {
			logger.Log(logger.Allow, "ebiten", err)
		}
	}
}

// Layout implements the ebiten.Game interface. The screen is the same size as
// the window in device pixels.
func (vw *ebitenViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := ebiten.Monitor().DeviceScaleFactor()
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// Closed implements the viewer interface.
func (vw *ebitenViewer) Closed() <-chan struct{} {
	return vw.closed
}

func viewEbiten(md *modalflag.Modes, sync *mainSync) error {
	return runViewer(md, sync, func(prf *display.Preferences, slot *frame.Slot, width, height int) (viewer, error) {
		return newEbitenViewer(prf, slot, width, height)
	})
}

// the device must satisfy the interface for screenshots
var _ gpu.ScreenReader = (*ebitengpu.Device)(nil)
