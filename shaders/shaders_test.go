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

package shaders_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu/soft"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/shaders"
	"github.com/jetsetilly/dosframe/test"
)

func TestPrograms(t *testing.T) {
	kernels := soft.Kernels()
	for _, sets := range [][]render.Step{shaders.Smoothed(), shaders.CRT(), shaders.Single(shaders.RippleSet())} {
		for _, st := range sets {
			for _, p := range st.Set.Passes {
				test.ExpectSuccess(t, strings.HasPrefix(p.Program.Fragment, "#version 150"), p.Program.Name)
				test.ExpectSuccess(t, strings.Contains(p.Program.Kage, "//kage:unit pixels"), p.Program.Name)
				test.ExpectSuccess(t, slices.Contains(kernels, p.Program.Kernel), p.Program.Name)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	test.ExpectEquality(t, strings.Join(shaders.Names(), ","), "crt,ripple,smoothed")

	steps, ok := shaders.Lookup(" CRT ")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, len(steps), 3)

	steps, ok = shaders.Lookup("ripple")
	test.DemandSuccess(t, ok)
	test.DemandEquality(t, len(steps), 1)
	test.ExpectEquality(t, steps[0].Threshold, 0.0)
	test.ExpectEquality(t, steps[0].Set.Name, "ripple")

	_, ok = shaders.Lookup("sepia")
	test.ExpectFailure(t, ok)
}

func TestCRT(t *testing.T) {
	dev := soft.NewDevice(12, 6, soft.Options{})

	f, err := frame.New(4, 2, 32)
	test.DemandSuccess(t, err)
	for i := range f.Pixels() {
		f.Pixels()[i] = 0xff
	}

	r, err := render.New(dev, render.Config{
		Tier:  render.TierStepped,
		Steps: shaders.CRT(),
		Log:   logger.Deny,
	})
	test.DemandSuccess(t, err)
	defer r.Dispose()

	stepped := r.(*render.Stepped)

	test.DemandSuccess(t, r.PrepareForFrame(f))
	test.DemandSuccess(t, r.RenderToViewport(geometry.NewRect(0, 0, 12, 6)))

	st, ok := stepped.ActiveStep()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, st.Set.Name, "crt 3x")

	// the first output line of each scanline is at full brightness. the
	// phosphor mask reduces the green and blue of the first column
	scr := dev.Screen()
	test.ExpectEquality(t, scr.RGBAAt(0, 0).R, uint8(0xff))
	test.ExpectSuccess(t, scr.RGBAAt(0, 0).G < 0xff)
	test.ExpectSuccess(t, scr.RGBAAt(0, 1).R < 0xff)
	test.ExpectEquality(t, scr.RGBAAt(0, 3).R, uint8(0xff))

	// at twice the frame size there is no phosphor mask
	dev.SetScreenSize(8, 4)
	test.DemandSuccess(t, r.RenderToViewport(geometry.NewRect(0, 0, 8, 4)))

	st, ok = stepped.ActiveStep()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, st.Set.Name, "crt 2x")

	scr = dev.Screen()
	test.ExpectEquality(t, scr.RGBAAt(0, 0), scr.RGBAAt(1, 0))
	test.ExpectEquality(t, scr.RGBAAt(1, 0).G, uint8(0xff))
	test.ExpectSuccess(t, scr.RGBAAt(0, 1).R < 0xff)
}
