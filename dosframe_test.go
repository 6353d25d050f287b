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
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/producer"
	"github.com/jetsetilly/dosframe/screenshot"
	"github.com/jetsetilly/dosframe/test"
)

func parseDisplayFlags(t *testing.T, args ...string) (*modalflag.Modes, *displayFlags) {
	t.Helper()
	md := &modalflag.Modes{Output: &test.CompareWriter{}}
	md.NewArgs(args)
	fl := addDisplayFlags(md, "64x40")
	p, err := md.Parse()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, p, modalflag.ParseContinue)
	fl.visit(md)
	return md, fl
}

func TestCommandLinePrefs(t *testing.T) {
	_, fl := parseDisplayFlags(t)
	test.ExpectEquality(t, fl.commandLinePrefs(), "")

	_, fl = parseDisplayFlags(t, "-tier", "basic", "-maxss", "2", "-depth", "16", "-prefs", "display.scalesInPixels::true")
	test.ExpectEquality(t, fl.commandLinePrefs(), "display.maxSupersampling::2; display.tier::basic; display.scalesInPixels::true")
	test.ExpectEquality(t, *fl.depth, 16)
}

func TestSourceArg(t *testing.T) {
	md, _ := parseDisplayFlags(t, "test.png")
	arg, err := sourceArg(md)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, arg, "test.png")

	md, _ = parseDisplayFlags(t, "a.png", "b.png")
	_, err = sourceArg(md)
	test.ExpectFailure(t, err)
}

func TestSnapshot(t *testing.T) {
	t.Chdir(t.TempDir())

	_, fl := parseDisplayFlags(t, "-tier", "basic", "-shader", "crt", "-depth", "16")
	prf, err := fl.preferences()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, prf.Tier.String(), "basic")
	test.ExpectEquality(t, prf.Shader.String(), "crt")

	pth := filepath.Join(t.TempDir(), "snapshot.png")
	res, err := renderSnapshot(prf, fl, "", geometry.NewSize(64, 40), 3, pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(res.frames), 40)
	test.ExpectEquality(t, len(res.screen), 40)

	f, err := producer.LoadImage(pth, 32)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.Width(), 64)
	test.ExpectEquality(t, f.Height(), 40)

	// the software renderer is deterministic
	again, err := renderSnapshot(prf, fl, "", geometry.NewSize(64, 40), 3, pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, again, res)

	// a different number of frames moves the band of the test pattern
	other, err := renderSnapshot(prf, fl, "", geometry.NewSize(64, 40), 2, pth)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, other.frames, res.frames)

	_, err = renderSnapshot(prf, fl, "", geometry.Size{}, 1, pth)
	test.ExpectFailure(t, err)
}

// fixed refresh rate for the pattern source
type display60 struct{}

func (display60) DisplayRefreshRate() (float32, bool) {
	return 60, true
}

func TestNewSource(t *testing.T) {
	_, fl := parseDisplayFlags(t, "-fps", "59")

	pth := filepath.Join(t.TempDir(), "source.png")
	test.DemandSuccess(t, screenshot.Save(image.NewRGBA(image.Rect(0, 0, 32, 20)), pth))

	src, aspect, err := newSource(pth, fl, 4.0/3.0)
	test.DemandSuccess(t, err)
	slot := &frame.Slot{}
	src(context.Background(), slot, nil)
	test.ExpectEquality(t, slot.Version(), uint64(1))

	// the image is published again with the new aspect ratio
	aspect.SetAspectRatio(0)
	test.ExpectEquality(t, slot.Version(), uint64(2))
	f, _, _ := slot.Latest(0)
	test.ExpectEquality(t, f.ScaledResolution(), geometry.NewSize(32, 20))

	src, aspect, err = newSource("", fl, 4.0/3.0)
	test.DemandSuccess(t, err)
	slot = &frame.Slot{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		src(ctx, slot, display60{})
		close(done)
	}()
	for slot.Version() < 2 {
		time.Sleep(time.Millisecond)
	}

	// the pattern applies a new aspect ratio while it is running
	aspect.SetAspectRatio(16.0 / 10.0)
	v := slot.Version()
	for slot.Version() < v+2 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	f, _, _ = slot.Latest(0)
	test.ExpectEquality(t, f.Width(), patternWidth)
	test.ExpectEquality(t, f.Height(), patternHeight)
	test.ExpectEquality(t, f.ScaledResolution(), geometry.NewSize(patternWidth, patternHeight))

	_, _, err = newSource(filepath.Join(t.TempDir(), "missing.png"), fl, 0)
	test.ExpectFailure(t, err)
}

func TestMemviz(t *testing.T) {
	_, fl := parseDisplayFlags(t, "-tier", "stepped", "-shader", "crt")
	prf, err := fl.preferences()
	test.DemandSuccess(t, err)

	pth := filepath.Join(t.TempDir(), "renderer.dot")
	test.DemandSuccess(t, writeMemviz(prf, pth))

	b, err := os.ReadFile(pth)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(string(b), "digraph"))
}

func TestNextAspectRatio(t *testing.T) {
	test.ExpectEquality(t, nextAspectRatio(4.0/3.0), 16.0/10.0)
	test.ExpectEquality(t, nextAspectRatio(1.6), 0.0)
	test.ExpectEquality(t, nextAspectRatio(0), 4.0/3.0)

	// unlisted values start the cycle again
	test.ExpectEquality(t, nextAspectRatio(2.35), 4.0/3.0)
}
