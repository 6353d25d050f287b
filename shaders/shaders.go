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

// Package shaders contains the built-in shader sets. Every program has a GLSL,
// a Kage and a software kernel version so that the shader sets work with any
// of the gpu backends.
package shaders

import (
	_ "embed"
	"slices"
	"strings"

	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/render"
)

//go:embed "passthrough.frag"
var passthroughFrag string

//go:embed "passthrough.kage"
var passthroughKage string

//go:embed "sharp.frag"
var sharpFrag string

//go:embed "sharp.kage"
var sharpKage string

//go:embed "scanlines.frag"
var scanlinesFrag string

//go:embed "scanlines.kage"
var scanlinesKage string

//go:embed "phosphor.frag"
var phosphorFrag string

//go:embed "phosphor.kage"
var phosphorKage string

//go:embed "ripple.frag"
var rippleFrag string

//go:embed "ripple.kage"
var rippleKage string

// Passthrough draws the input without change.
var Passthrough = gpu.ProgramSource{
	Name:     "passthrough",
	Fragment: passthroughFrag,
	Kage:     passthroughKage,
	Kernel:   "passthrough",
}

// Sharp is a sharp bilinear scaler.
var Sharp = gpu.ProgramSource{
	Name:     "sharp",
	Fragment: sharpFrag,
	Kage:     sharpKage,
	Kernel:   "sharp",
}

// Scanlines darkens the lower half of every scanline of the frame.
var Scanlines = gpu.ProgramSource{
	Name:     "scanlines",
	Fragment: scanlinesFrag,
	Kage:     scanlinesKage,
	Kernel:   "scanlines",
}

// Phosphor applies an aperture grille mask.
var Phosphor = gpu.ProgramSource{
	Name:     "phosphor",
	Fragment: phosphorFrag,
	Kage:     phosphorKage,
	Kernel:   "phosphor",
}

// Ripple is an animated distortion.
var Ripple = gpu.ProgramSource{
	Name:     "ripple",
	Fragment: rippleFrag,
	Kage:     rippleKage,
	Kernel:   "ripple",
}

// pass with output to the viewport
func pass(program gpu.ProgramSource, filter render.PassFilter) render.Pass {
	return render.Pass{
		Program: program,
		Filter:  filter,
	}
}

// Smoothed returns the steps for the smoothed scaler. Below twice the frame
// size the frame is supersampled. From twice the frame size a sharp bilinear
// pass is used.
func Smoothed() []render.Step {
	return []render.Step{
		{Threshold: 1, Set: render.ShaderSet{Name: "smoothed"}},
		{Threshold: 2, Set: render.ShaderSet{
			Name:   "smoothed 2x",
			Passes: []render.Pass{pass(Sharp, render.FilterLinear)},
		}},
	}
}

// CRT returns the steps for the CRT effect. Scanlines are added from twice
// the frame size and a phosphor mask from three times the frame size.
func CRT() []render.Step {
	return []render.Step{
		{Threshold: 1, Set: render.ShaderSet{Name: "crt"}},
		{Threshold: 2, Set: render.ShaderSet{
			Name:   "crt 2x",
			Passes: []render.Pass{pass(Scanlines, render.FilterAuto)},
		}},
		{Threshold: 3, Set: render.ShaderSet{
			Name: "crt 3x",
			Passes: []render.Pass{
				pass(Scanlines, render.FilterAuto),
				pass(Phosphor, render.FilterNearest),
			},
		}},
	}
}

// RippleSet returns the shader set for the ripple effect.
func RippleSet() render.ShaderSet {
	return render.ShaderSet{
		Name:   "ripple",
		Passes: []render.Pass{pass(Ripple, render.FilterLinear)},
	}
}

// Single returns a single step for the shader set. The step is used at every
// scale.
func Single(set render.ShaderSet) []render.Step {
	return []render.Step{{Threshold: 0, Set: set}}
}

var builtin = map[string]func() []render.Step{
	"smoothed": Smoothed,
	"crt":      CRT,
	"ripple":   func() []render.Step { return Single(RippleSet()) },
}

// Names returns the names of the built-in shader sets in alphabetical order.
func Names() []string {
	var n []string
	for k := range builtin {
		n = append(n, k)
	}
	slices.Sort(n)
	return n
}

// Lookup returns the steps for the named built-in shader set. The name is not
// case sensitive.
func Lookup(name string) ([]render.Step, bool) {
	f, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return f(), true
}
