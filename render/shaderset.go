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
	"math"
	"slices"

	"github.com/jetsetilly/dosframe/gpu"
)

// ScaleMode specifies how the output size of a shader pass is calculated on
// one axis.
type ScaleMode int

// List of valid ScaleMode values.
const (
	// the output is the size of the viewport
	ScaleAuto ScaleMode = iota

	// the output is a multiple of the input size
	ScaleInput

	// the output is a multiple of the viewport size
	ScaleOutput

	// the output is a fixed number of pixels
	ScaleFixed
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleAuto:
		return "auto"
	case ScaleInput:
		return "input"
	case ScaleOutput:
		return "output"
	case ScaleFixed:
		return "fixed"
	}
	return "unknown scale mode"
}

// PassScale is the scaling of a shader pass on one axis.
type PassScale struct {
	Mode   ScaleMode
	Factor float64
}

// apply returns the output size for the input and viewport sizes. the result
// is never less than one pixel
func (p PassScale) apply(input, viewport int) int {
	var v float64
	switch p.Mode {
	case ScaleInput:
		v = float64(input) * p.Factor
	case ScaleOutput:
		v = float64(viewport) * p.Factor
	case ScaleFixed:
		v = p.Factor
	default:
		v = float64(viewport)
	}
	return max(1, int(math.Round(v)))
}

// PassFilter specifies how the input of a shader pass is sampled.
type PassFilter int

// List of valid PassFilter values.
const (
	// nearest neighbour for integral scaling, otherwise linear
	FilterAuto PassFilter = iota
	FilterNearest
	FilterLinear
)

func (f PassFilter) String() string {
	switch f {
	case FilterAuto:
		return "auto"
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	}
	return "unknown filter"
}

func (f PassFilter) resolve(src, dest image.Rectangle) gpu.Filter {
	switch f {
	case FilterNearest:
		return gpu.Nearest
	case FilterLinear:
		return gpu.Linear
	}
	return filterFor(src, dest)
}

// Pass is a single shader pass.
type Pass struct {
	Program gpu.ProgramSource
	Filter  PassFilter
	ScaleX  PassScale
	ScaleY  PassScale
}

// OutputSize returns the size of the output of the pass for the input and
// viewport sizes. The output size is ignored for the final pass of a set,
// which always draws to the viewport.
func (p Pass) OutputSize(input, viewport image.Point) image.Point {
	return image.Pt(p.ScaleX.apply(input.X, viewport.X), p.ScaleY.apply(input.Y, viewport.Y))
}

// ShaderSet is an ordered list of shader passes. The first pass reads the
// frame and the final pass writes to the viewport.
type ShaderSet struct {
	Name   string
	Passes []Pass
}

func (s ShaderSet) String() string {
	return fmt.Sprintf("%s (%d passes)", s.Name, len(s.Passes))
}

// Step associates a shader set with a scale threshold. See Stepped.
type Step struct {
	Threshold float64
	Set       ShaderSet
}

// SelectStep returns the index of the largest threshold that is less than or
// equal to the scale. If the scale is below every threshold the index of the
// smallest threshold is returned. The thresholds must be sorted in ascending
// order.
//
// Returns -1 if there are no thresholds.
func SelectStep(thresholds []float64, scale float64) int {
	if len(thresholds) == 0 {
		return -1
	}
	idx, found := slices.BinarySearch(thresholds, scale)
	if found {
		// binary search finds the first of any duplicates. use the last
		for idx+1 < len(thresholds) && thresholds[idx+1] == scale {
			idx++
		}
		return idx
	}
	return max(0, idx-1)
}
