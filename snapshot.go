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
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/dosframe/digest"
	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu/soft"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/producer"
	"github.com/jetsetilly/dosframe/screenshot"
)

func snapshot(md *modalflag.Modes) error {
	md.NewMode()
	fl := addDisplayFlags(md, "1280x800")
	output := md.AddString("o", "", "output file (.png, .jpg, .webp, .tga)")
	frames := md.AddInt("frames", 1, "number of pattern frames to render before the snapshot")
	showDigest := md.AddBool("digest", false, "print the digests of the published frames and of the rendered screen")
	memvizPath := md.AddString("memviz", "", "write a graphviz file of the renderer configuration")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	fl.visit(md)
	startAmbient(fl)

	img, err := sourceArg(md)
	if err != nil {
		return err
	}

	size, err := display.ParseSize(*fl.size)
	if err != nil {
		return err
	}

	prf, err := fl.preferences()
	if err != nil {
		return err
	}

	pth := *output
	if pth == "" {
		pth = screenshot.Filename(prf.Shader.String(), "")
	}
	if !screenshot.Supported(pth) {
		return fmt.Errorf("%w: %s", screenshot.ErrUnsupported, pth)
	}

	if *memvizPath != "" {
		err = writeMemviz(prf, *memvizPath)
		if err != nil {
			return err
		}
	}

	res, err := renderSnapshot(prf, fl, img, size, *frames, pth)
	if err != nil {
		return err
	}

	if *showDigest {
		fmt.Printf("frames: %s\n", res.frames)
		fmt.Printf("screen: %s\n", res.screen)
	}

	return nil
}

// writeMemviz writes the renderer configuration, including the shader steps and
// their programs, as a graphviz dot file
func writeMemviz(prf *display.Preferences, pth string) error {
	cfg, err := prf.Config()
	if err != nil {
		return err
	}

	f, err := os.Create(pth)
	if err != nil {
		return fmt.Errorf("memviz: %w", err)
	}
	memviz.Map(f, &cfg)
	if err := f.Close(); err != nil {
		return fmt.Errorf("memviz: %w", err)
	}

	logger.Logf(logger.Allow, "memviz", "renderer configuration written to %s", pth)
	return nil
}

// the digests of a completed snapshot
type snapshotDigests struct {
	frames string
	screen string
}

// renderSnapshot draws frames from the source into an offscreen display of
// the specified size and saves the final result
func renderSnapshot(prf *display.Preferences, fl *displayFlags, img string, size geometry.Size, frames int, pth string) (snapshotDigests, error) {
	var res snapshotDigests

	width, height := size.Ints()
	if width <= 0 || height <= 0 {
		return res, fmt.Errorf("snapshot size must not be zero (%s)", size)
	}

	dev := soft.NewDevice(width, height, soft.Options{})

	cfg, err := prf.Config()
	if err != nil {
		return res, err
	}

	v, err := display.NewView(dev, nil, cfg)
	if err != nil {
		return res, err
	}
	defer v.Destroy()
	v.SetBounds(geometry.NewRect(0, 0, width, height))

	next, err := snapshotFrames(img, fl, prf.AspectRatio.Get().(float64))
	if err != nil {
		return res, err
	}
	if img != "" {
		frames = 1
	}

	dig := digest.NewVideo(v)
	for range max(1, frames) {
		dig.Publish(next())
		if _, err := v.Refresh(); err != nil {
			return res, err
		}
	}

	logTier(v)
	logger.Logf(logger.Allow, "dosframe", "viewport %s", v.Viewport())

	scr, err := dev.ReadScreen()
	if err != nil {
		return res, err
	}
	res.frames = dig.Hash()
	res.screen = digest.Image(scr)

	return res, screenshot.Save(scr, pth)
}

// snapshotFrames returns a function that creates successive frames of the
// source. an image source always returns the same frame and must only be
// called once
func snapshotFrames(img string, fl *displayFlags, aspect float64) (func() *frame.Frame, error) {
	if img != "" {
		f, err := producer.LoadImage(img, *fl.depth)
		if err != nil {
			return nil, err
		}
		f.UseAspectRatio(aspect)
		return func() *frame.Frame { return f }, nil
	}

	pat, err := producer.NewPattern(patternWidth, patternHeight, *fl.depth)
	if err != nil {
		return nil, err
	}
	pat.SetAspectRatio(aspect)
	return pat.Next, nil
}
