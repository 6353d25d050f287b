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
	"cmp"
	"image"
	"slices"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
)

// Stepped chooses between several shader sets depending on how much the frame
// is scaled to fit the viewport. Each shader set is associated with a
// threshold and the set with the largest threshold less than or equal to the
// current scale is used. If the scale is below every threshold then the set
// with the smallest threshold is used.
//
// The scale is the smaller of the horizontal and vertical multiples of the
// frame size needed to fill the viewport. If Config.ScalesInPixels is true
// then the scale is the height of the viewport in pixels.
type Stepped struct {
	ss       *Supersampling
	inPixels bool

	thresholds []float64
	shaders    []*Shader

	// index of the shader set used most recently. -1 if no frame has been
	// rendered yet
	active int
}

// NewStepped is the preferred method of initialisation for the Stepped type.
// The shader sets are taken from Config.Steps and every pass of every set is
// compiled before the function returns.
func NewStepped(dev gpu.Device, cfg Config) (*Stepped, error) {
	if len(cfg.Steps) == 0 {
		return nil, ErrNoShaders
	}

	steps := slices.Clone(cfg.Steps)
	slices.SortStableFunc(steps, func(a, b Step) int {
		return cmp.Compare(a.Threshold, b.Threshold)
	})

	st := &Stepped{
		ss:       NewSupersampling(dev, cfg),
		inPixels: cfg.ScalesInPixels,
		active:   -1,
	}

	for _, s := range steps {
		sh, err := newShader(st.ss, s.Set)
		if err != nil {
			for _, sh := range st.shaders {
				sh.release()
			}
			_ = st.ss.Dispose()
			return nil, err
		}
		st.thresholds = append(st.thresholds, s.Threshold)
		st.shaders = append(st.shaders, sh)
	}

	return st, nil
}

// Tier implements the Renderer interface.
func (st *Stepped) Tier() Tier {
	return TierStepped
}

// State implements the Renderer interface.
func (st *Stepped) State() State {
	return st.ss.State()
}

// Stats implements the Renderer interface.
func (st *Stepped) Stats() Stats {
	return st.ss.Stats()
}

// SetMaxViewportSize implements the Renderer interface.
func (st *Stepped) SetMaxViewportSize(size geometry.Size) {
	st.ss.SetMaxViewportSize(size)
}

// SetManagesAspectRatio implements the Renderer interface.
func (st *Stepped) SetManagesAspectRatio(manage bool) {
	st.ss.SetManagesAspectRatio(manage)
}

// ViewportForFrame implements the Renderer interface.
func (st *Stepped) ViewportForFrame(f *frame.Frame, bounds geometry.Rect) geometry.Rect {
	return st.ss.ViewportForFrame(f, bounds)
}

// PrepareForFrame implements the Renderer interface.
func (st *Stepped) PrepareForFrame(f *frame.Frame) error {
	return st.ss.PrepareForFrame(f)
}

// RenderToViewport implements the Renderer interface.
func (st *Stepped) RenderToViewport(viewport geometry.Rect) error {
	return st.ss.base.render(viewport, st.draw)
}

// Scale returns the scale used to choose the shader set when content of the
// specified size is drawn into the destination.
func (st *Stepped) Scale(content image.Point, dest image.Point) float64 {
	if st.inPixels {
		return float64(dest.Y)
	}
	if content.X <= 0 || content.Y <= 0 {
		return 0
	}
	return min(float64(dest.X)/float64(content.X), float64(dest.Y)/float64(content.Y))
}

// Steps returns the number of steps.
func (st *Stepped) Steps() int {
	return len(st.shaders)
}

// ActiveStep returns the threshold and shader set used most recently. Returns
// false if nothing has been rendered yet.
func (st *Stepped) ActiveStep() (Step, bool) {
	if st.active < 0 {
		return Step{}, false
	}
	return Step{
		Threshold: st.thresholds[st.active],
		Set:       st.shaders[st.active].ShaderSet(),
	}, true
}

func (st *Stepped) draw(dest image.Rectangle) error {
	_, region := st.ss.base.source()
	scale := st.Scale(region.Size(), dest.Size())

	idx := SelectStep(st.thresholds, scale)
	if idx != st.active {
		// the intermediate surfaces of the previous set were sized for that
		// set and are of no use to the new set
		if st.active >= 0 {
			st.shaders[st.active].releaseOutputs()
		}
		st.active = idx
		logger.Logf(st.ss.base.cfg.Log, "render", "scale %.2f: using shader set %s", scale, st.shaders[idx].ShaderSet())
	}

	return st.shaders[idx].draw(dest)
}

// Invalidate implements the Renderer interface.
func (st *Stepped) Invalidate() {
	for _, sh := range st.shaders {
		sh.releaseOutputs()
	}
	st.ss.Invalidate()
}

// Dispose implements the Renderer interface.
func (st *Stepped) Dispose() error {
	if st.ss.State() == Disposed {
		return ErrDisposed
	}
	for _, sh := range st.shaders {
		sh.release()
	}
	return st.ss.Dispose()
}
