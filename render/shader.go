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
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/texture"
)

// Shader draws the frame through a chain of shader passes. The first pass
// reads the supersampling buffer, or the frame texture if supersampling is not
// being used. Each subsequent pass reads the output of the previous pass. The
// final pass draws into the viewport.
//
// A shader set with no passes is the same as the Supersampling renderer.
type Shader struct {
	ss  *Supersampling
	set ShaderSet

	passes []*compiledPass

	// false if the Supersampling instance is shared with other Shader
	// instances, in which case it is disposed of by the owner
	ownsBase bool

	start      time.Time
	frameCount int
}

type compiledPass struct {
	def     Pass
	program gpu.Program

	// output surface for all but the final pass
	output       gpu.Surface
	outputRegion image.Rectangle
}

// NewShader is the preferred method of initialisation for the Shader type. The
// shader set used is the one in Config.Shaders. Every pass is compiled before
// the function returns. If any pass fails to compile then no GPU resources
// are left allocated and the error will wrap gpu.ErrShaderCompilation.
func NewShader(dev gpu.Device, cfg Config) (*Shader, error) {
	ss := NewSupersampling(dev, cfg)
	sh, err := newShader(ss, cfg.Shaders)
	if err != nil {
		_ = ss.Dispose()
		return nil, err
	}
	sh.ownsBase = true
	return sh, nil
}

func newShader(ss *Supersampling, set ShaderSet) (*Shader, error) {
	sh := &Shader{
		ss:    ss,
		set:   set,
		start: ss.base.cfg.Clock(),
	}

	for _, p := range set.Passes {
		prog, err := ss.base.dev.CompileProgram(p.Program)
		if err != nil {
			sh.releasePrograms()
			if !errors.Is(err, gpu.ErrShaderCompilation) {
				err = fmt.Errorf("%w: %w", gpu.ErrShaderCompilation, err)
			}
			return nil, fmt.Errorf("render: %s: %w", set.Name, err)
		}
		sh.passes = append(sh.passes, &compiledPass{def: p, program: prog})
	}

	logger.Logf(ss.base.cfg.Log, "render", "shader set: %s", set)

	return sh, nil
}

// Tier implements the Renderer interface.
func (sh *Shader) Tier() Tier {
	return TierShader
}

// State implements the Renderer interface.
func (sh *Shader) State() State {
	return sh.ss.State()
}

// Stats implements the Renderer interface.
func (sh *Shader) Stats() Stats {
	return sh.ss.Stats()
}

// SetMaxViewportSize implements the Renderer interface.
func (sh *Shader) SetMaxViewportSize(size geometry.Size) {
	sh.ss.SetMaxViewportSize(size)
}

// SetManagesAspectRatio implements the Renderer interface.
func (sh *Shader) SetManagesAspectRatio(manage bool) {
	sh.ss.SetManagesAspectRatio(manage)
}

// ViewportForFrame implements the Renderer interface.
func (sh *Shader) ViewportForFrame(f *frame.Frame, bounds geometry.Rect) geometry.Rect {
	return sh.ss.ViewportForFrame(f, bounds)
}

// ShaderSet returns the shader set being used.
func (sh *Shader) ShaderSet() ShaderSet {
	return sh.set
}

// PrepareForFrame implements the Renderer interface.
func (sh *Shader) PrepareForFrame(f *frame.Frame) error {
	return sh.ss.PrepareForFrame(f)
}

// RenderToViewport implements the Renderer interface.
func (sh *Shader) RenderToViewport(viewport geometry.Rect) error {
	return sh.ss.base.render(viewport, sh.draw)
}

func (sh *Shader) draw(dest image.Rectangle) error {
	if len(sh.passes) == 0 {
		return sh.ss.draw(dest)
	}

	input, region, err := sh.ss.supersample(dest)
	if err != nil {
		return err
	}

	_, content := sh.ss.base.source()

	dev := sh.ss.base.dev
	elapsed := sh.ss.base.cfg.Clock().Sub(sh.start).Seconds()

	for i, p := range sh.passes {
		var target gpu.Surface
		out := dest

		if i < len(sh.passes)-1 {
			sz := p.def.OutputSize(region.Size(), dest.Size())
			if err := sh.ensureOutput(p, sz); err != nil {
				return err
			}
			target = p.output
			out = p.outputRegion
		}

		tw, th := input.Size()
		err := dev.Draw(gpu.DrawOp{
			Source:       input,
			SourceRegion: region,
			Target:       target,
			Dest:         out,
			Filter:       p.def.Filter.resolve(region, out),
			Program:      p.program,
			Uniforms: gpu.Uniforms{
				TextureSize: geometry.NewSize(tw, th),
				InputSize:   geometry.NewSize(region.Dx(), region.Dy()),
				OutputSize:  geometry.NewSize(out.Dx(), out.Dy()),
				SourceSize:  geometry.NewSize(content.Dx(), content.Dy()),
				Time:        elapsed,
				FrameCount:  sh.frameCount,
			},
		})
		if err != nil {
			return fmt.Errorf("render: %s: pass %d: %w", sh.set.Name, i, err)
		}

		input = target
		region = out
	}

	sh.frameCount++

	return nil
}

// ensureOutput makes sure the output surface of the pass is the correct size.
// the surface is only reallocated if the size has changed
func (sh *Shader) ensureOutput(p *compiledPass, sz image.Point) error {
	if p.output != nil && p.outputRegion.Size() == sz {
		return nil
	}

	if p.output != nil {
		p.output.Release()
		p.output = nil
	}

	dev := sh.ss.base.dev
	w, h := texture.SizeNeeded(dev.Caps(), sz.X, sz.Y)
	if w > dev.Caps().MaxTextureSize || h > dev.Caps().MaxTextureSize {
		return fmt.Errorf("render: %s: %w: pass output %dx%d", sh.set.Name, gpu.ErrAllocation, sz.X, sz.Y)
	}

	s, err := dev.NewSurface(w, h, gpu.BGRA8888)
	if err != nil {
		return fmt.Errorf("render: %s: %w", sh.set.Name, err)
	}
	p.output = s
	p.outputRegion = image.Rectangle{Max: sz}

	return nil
}

// releaseOutputs releases the intermediate surfaces of every pass.
func (sh *Shader) releaseOutputs() {
	for _, p := range sh.passes {
		if p.output != nil {
			p.output.Release()
			p.output = nil
			p.outputRegion = image.Rectangle{}
		}
	}
}

func (sh *Shader) releasePrograms() {
	for _, p := range sh.passes {
		p.program.Release()
	}
	sh.passes = sh.passes[:0]
}

// Invalidate implements the Renderer interface.
func (sh *Shader) Invalidate() {
	sh.releaseOutputs()
	sh.ss.Invalidate()
}

// release everything owned by the Shader but not the Supersampling instance
func (sh *Shader) release() {
	sh.releaseOutputs()
	sh.releasePrograms()
}

// Dispose implements the Renderer interface.
func (sh *Shader) Dispose() error {
	if sh.ss.State() == Disposed {
		return ErrDisposed
	}
	sh.release()
	if sh.ownsBase {
		return sh.ss.Dispose()
	}
	return nil
}
