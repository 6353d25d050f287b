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

// Package ebitengpu implements the gpu.Device interface with Ebitengine.
// Surfaces are ebiten images and shader programs are written in Kage.
//
// Kage programs must use pixel units (the //kage:unit pixels directive). The
// uniforms available to a program are:
//
//	var TextureSize vec2
//	var InputSize vec2
//	var OutputSize vec2
//	var SourceSize vec2
//	var Time float
//	var FrameCount float
//
// Programs sample the input with imageSrc0At() or imageSrc0UnsafeAt() and so
// the filter of a gpu.DrawOp is ignored for draws with a program.
//
// The device must only be used from within the Update() and Draw() functions
// of an ebiten.Game, or before ebiten.RunGame() is called. The screen is
// specified for each frame with SetScreen().
package ebitengpu

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jetsetilly/dosframe/gpu"
)

// MaxTextureSize is the largest surface dimension requested of Ebitengine.
const MaxTextureSize = 4096

// Device implements the gpu.Device interface.
type Device struct {
	screen *ebiten.Image

	// pixels are converted to RGBA before being written to an image
	scratch *image.RGBA
}

// NewDevice is the preferred method of initialisation for the Device type.
func NewDevice() *Device {
	return &Device{}
}

// SetScreen sets the image that draws to the screen will be made to. It should
// be called at the start of the ebiten.Game.Draw() function.
func (dev *Device) SetScreen(screen *ebiten.Image) {
	dev.screen = screen
}

// ReadScreen implements the gpu.ScreenReader interface. It can only be called
// from the ebiten.Game.Draw() function, after the frame has been drawn.
func (dev *Device) ReadScreen() (*image.RGBA, error) {
	if dev.screen == nil {
		return nil, fmt.Errorf("ebitengpu: no screen")
	}
	img := image.NewRGBA(dev.screen.Bounds())
	dev.screen.ReadPixels(img.Pix)
	return img, nil
}

// Caps implements the gpu.Device interface.
func (dev *Device) Caps() gpu.Caps {
	return gpu.Caps{
		MaxTextureSize: MaxTextureSize,
		NonPowerOfTwo:  true,
	}
}

// NewSurface implements the gpu.Device interface.
func (dev *Device) NewSurface(width, height int, format gpu.PixelFormat) (gpu.Surface, error) {
	if width <= 0 || height <= 0 || width > MaxTextureSize || height > MaxTextureSize {
		return nil, fmt.Errorf("ebitengpu: %w: %dx%d", gpu.ErrAllocation, width, height)
	}
	return &surface{
		dev:    dev,
		img:    ebiten.NewImage(width, height),
		format: format,
	}, nil
}

// CompileProgram implements the gpu.Device interface. The Kage part of the
// program source is used.
func (dev *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if src.Kage == "" {
		return nil, &gpu.CompileError{
			Name:  src.Name,
			Stage: "kage",
			Log:   "program has no kage source",
		}
	}

	sh, err := ebiten.NewShader([]byte(src.Kage))
	if err != nil {
		return nil, &gpu.CompileError{
			Name:   src.Name,
			Stage:  "kage",
			Source: src.Kage,
			Log:    err.Error(),
		}
	}

	return &program{name: src.Name, shader: sh}, nil
}

func (dev *Device) target(s gpu.Surface) (*ebiten.Image, error) {
	if s == nil {
		if dev.screen == nil {
			return nil, fmt.Errorf("ebitengpu: no screen")
		}
		return dev.screen, nil
	}
	t, ok := s.(*surface)
	if !ok || t.img == nil {
		return nil, fmt.Errorf("ebitengpu: invalid target surface")
	}
	return t.img, nil
}

// Draw implements the gpu.Device interface.
func (dev *Device) Draw(op gpu.DrawOp) error {
	src, ok := op.Source.(*surface)
	if !ok || src.img == nil {
		return fmt.Errorf("ebitengpu: invalid source surface")
	}
	dst, err := dev.target(op.Target)
	if err != nil {
		return err
	}

	sr := op.SourceRegion
	dr := op.Dest
	if sr.Empty() || dr.Empty() {
		return nil
	}

	if op.Program == nil {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(float64(dr.Dx())/float64(sr.Dx()), float64(dr.Dy())/float64(sr.Dy()))
		opts.GeoM.Translate(float64(dr.Min.X), float64(dr.Min.Y))
		opts.Blend = ebiten.BlendCopy
		if op.Filter == gpu.Linear {
			opts.Filter = ebiten.FilterLinear
		} else {
			opts.Filter = ebiten.FilterNearest
		}
		dst.DrawImage(src.img.SubImage(sr).(*ebiten.Image), opts)
		return nil
	}

	p, ok := op.Program.(*program)
	if !ok || p.shader == nil {
		return fmt.Errorf("ebitengpu: invalid program")
	}

	// surfaces always have a zero origin so the source coordinates of the
	// vertices are the source region
	x0, y0 := float32(dr.Min.X), float32(dr.Min.Y)
	x1, y1 := float32(dr.Max.X), float32(dr.Max.Y)
	u0, v0 := float32(sr.Min.X), float32(sr.Min.Y)
	u1, v1 := float32(sr.Max.X), float32(sr.Max.Y)

	vertices := []ebiten.Vertex{
		{DstX: x0, DstY: y0, SrcX: u0, SrcY: v0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y0, SrcX: u1, SrcY: v0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x0, DstY: y1, SrcX: u0, SrcY: v1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y1, SrcX: u1, SrcY: v1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	indices := []uint16{0, 1, 2, 1, 3, 2}

	opts := &ebiten.DrawTrianglesShaderOptions{}
	opts.Images[0] = src.img
	opts.Blend = ebiten.BlendCopy
	opts.Uniforms = map[string]any{
		"TextureSize": []float32{float32(op.Uniforms.TextureSize.W), float32(op.Uniforms.TextureSize.H)},
		"InputSize":   []float32{float32(op.Uniforms.InputSize.W), float32(op.Uniforms.InputSize.H)},
		"OutputSize":  []float32{float32(op.Uniforms.OutputSize.W), float32(op.Uniforms.OutputSize.H)},
		"SourceSize":  []float32{float32(op.Uniforms.SourceSize.W), float32(op.Uniforms.SourceSize.H)},
		"Time":        float32(op.Uniforms.Time),
		"FrameCount":  float32(op.Uniforms.FrameCount),
	}

	dst.DrawTrianglesShader(vertices, indices, p.shader, opts)

	return nil
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(target gpu.Surface) error {
	dst, err := dev.target(target)
	if err != nil {
		return err
	}
	if target == nil {
		dst.Fill(color.Black)
	} else {
		dst.Clear()
	}
	return nil
}

type surface struct {
	dev    *Device
	img    *ebiten.Image
	format gpu.PixelFormat
}

func (s *surface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *surface) Format() gpu.PixelFormat {
	return s.format
}

func (s *surface) Fill(region image.Rectangle, pixels []byte, pitch int) error {
	if s.img == nil {
		return fmt.Errorf("ebitengpu: fill of released surface")
	}
	if !region.In(s.img.Bounds()) {
		return fmt.Errorf("ebitengpu: fill region %v outside of surface", region)
	}
	if region.Empty() {
		return nil
	}
	need := (region.Dy()-1)*pitch + region.Dx()*s.format.BytesPerPixel()
	if len(pixels) < need {
		return fmt.Errorf("ebitengpu: fill with %d bytes, need %d", len(pixels), need)
	}

	// reuse the scratch image if it is large enough
	sz := image.Rect(0, 0, region.Dx(), region.Dy())
	n := sz.Dx() * sz.Dy() * 4
	if s.dev.scratch == nil || len(s.dev.scratch.Pix) < n {
		s.dev.scratch = image.NewRGBA(sz)
	}
	scratch := &image.RGBA{
		Pix:    s.dev.scratch.Pix[:n],
		Stride: sz.Dx() * 4,
		Rect:   sz,
	}
	gpu.ToRGBA(s.format, pixels, pitch, scratch, sz)

	s.img.SubImage(region).(*ebiten.Image).WritePixels(scratch.Pix)

	return nil
}

func (s *surface) Release() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

type program struct {
	name   string
	shader *ebiten.Shader
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Release() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}
