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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu/gputest"
	"github.com/jetsetilly/dosframe/prefs"
	"github.com/jetsetilly/dosframe/producer"
	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/shaderdef"
	"github.com/jetsetilly/dosframe/test"
)

func TestPreferences(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := display.NewPreferences()
	test.DemandSuccess(t, err)

	// the preferences file is created on first use
	_, err = os.Stat(filepath.Join(".dosframe", prefs.DefaultPrefsFile))
	test.DemandSuccess(t, err)

	cfg, err := p.Config()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cfg.Tier, render.TierStepped)
	test.ExpectEquality(t, cfg.MaxSupersamplingScale, render.DefaultMaxSupersamplingScale)
	test.ExpectSuccess(t, cfg.ManagesAspectRatio)
	test.ExpectEquality(t, len(cfg.Steps), 2)
	test.ExpectEquality(t, cfg.Shaders.Name, "smoothed 2x")
	test.ExpectEquality(t, cfg.MaxViewportSize, geometry.Size{})

	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, cfg)
	test.ExpectEquality(t, v.Tier(), render.TierStepped)
	v.SetBounds(geometry.NewRect(0, 0, 800, 600))

	p.Attach(v)

	test.DemandSuccess(t, p.Tier.Set("basic"))
	test.ExpectEquality(t, v.Tier(), render.TierBasic)

	// an unknown tier is rejected and nothing changes
	test.ExpectFailure(t, p.Tier.Set("fastest"))
	test.ExpectEquality(t, p.Tier.String(), "basic")
	test.ExpectEquality(t, v.Tier(), render.TierBasic)

	test.DemandSuccess(t, p.MaxViewport.Set("640x480"))
	test.ExpectEquality(t, v.ViewportForFrame(newFrame(t)), geometry.NewRect(80, 60, 640, 480))

	test.DemandSuccess(t, p.ManagesAspect.Set(false))
	test.ExpectFailure(t, v.ManagesAspectRatio())

	test.DemandSuccess(t, p.Tier.Set("stepped"))
	test.DemandSuccess(t, p.Shader.Set("crt"))
	test.ExpectEquality(t, v.Tier(), render.TierStepped)
	test.ExpectEquality(t, v.Renderer().(*render.Stepped).Steps(), 3)

	err = p.Shader.Set("missing.OpenGLShader")
	test.ExpectSuccess(t, errors.Is(err, os.ErrNotExist))

	test.DemandSuccess(t, p.Save())
	data, err := os.ReadFile(filepath.Join(".dosframe", prefs.DefaultPrefsFile))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(data), "display.tier :: stepped\n"))
	test.ExpectSuccess(t, strings.Contains(string(data), "display.maxViewport :: 640x480\n"))
	test.ExpectSuccess(t, strings.Contains(string(data), "display.managesAspect :: false\n"))
}

func TestPreferencesCommandLine(t *testing.T) {
	t.Chdir(t.TempDir())

	prefs.PushCommandLineStack("display.tier::supersampling; display.shader::none")
	defer prefs.PopCommandLineStack()

	p, err := display.NewPreferences()
	test.DemandSuccess(t, err)

	cfg, err := p.Config()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cfg.Tier, render.TierSupersampling)
	test.ExpectEquality(t, len(cfg.Steps), 0)
}

func TestParseSize(t *testing.T) {
	sz, err := display.ParseSize("1024x768")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sz, geometry.NewSize(1024, 768))
	test.ExpectEquality(t, display.FormatSize(sz), "1024x768")

	sz, err = display.ParseSize(" 640X480 ")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sz, geometry.NewSize(640, 480))

	sz, err = display.ParseSize("")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, sz.IsZero())

	_, err = display.ParseSize("big")
	test.ExpectFailure(t, err)
	_, err = display.ParseSize("-1x10")
	test.ExpectFailure(t, err)
}

func TestResolveShader(t *testing.T) {
	steps, err := display.ResolveShader("none")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(steps), 0)

	steps, err = display.ResolveShader("Smoothed")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(steps), 2)

	steps, err = display.ResolveShader("../shaderdef/testdata/2xsal.OpenGLShader")
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(steps), 1)
	test.ExpectEquality(t, steps[0].Set.Name, "2xsal")
	test.ExpectEquality(t, len(steps[0].Set.Passes), 2)

	_, err = display.ResolveShader("testdata/missing.OpenGLShader")
	test.ExpectSuccess(t, errors.Is(err, os.ErrNotExist))

	_, err = display.ResolveShader("view.go")
	test.ExpectSuccess(t, errors.Is(err, shaderdef.ErrInvalid))
}

func TestPreferencesAspectRatio(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := display.NewPreferences()
	test.DemandSuccess(t, err)

	f, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)
	still := producer.NewStill(f)
	still.SetAspectRatio(p.AspectRatio.Get().(float64))

	slot := &frame.Slot{}
	still.Run(context.Background(), slot)
	p.AttachSource(still)

	latest, _, _ := slot.Latest(0)
	test.ExpectApproximate(t, latest.ScaledResolution().Aspect(), 4.0/3.0, 0.001)

	// a change of preference reaches the source without restarting it
	test.DemandSuccess(t, p.AspectRatio.Set(0.0))
	latest, version, _ := slot.Latest(0)
	test.ExpectEquality(t, version, uint64(2))
	test.ExpectEquality(t, latest.ScaledResolution(), geometry.NewSize(320, 200))
	test.ExpectSuccess(t, latest.AllDirty())

	dev := gputest.NewDevice(0, true)
	v := newView(t, dev, render.Config{ManagesAspectRatio: true})
	v.SetBounds(geometry.NewRect(0, 0, 800, 600))
	test.ExpectEquality(t, v.ViewportForFrame(latest), geometry.NewRect(0, 50, 800, 500))
}
