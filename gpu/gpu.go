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

// Package gpu defines the interface between the renderers and the graphics
// hardware. The render package is written entirely in terms of the Device,
// Surface and Program interfaces. Implementations for OpenGL, Ebitengine and a
// software rasteriser are found in the sub-packages.
//
// All calls to a Device and to the Surfaces and Programs it creates must be
// made from the same goroutine.
package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/jetsetilly/dosframe/geometry"
)

// Sentinel errors. Errors returned by a Device should wrap one of these so
// that the caller can decide how to recover.
var (
	// a texture or buffer could not be allocated. the renderer using the
	// device cannot continue and should be replaced with a simpler renderer
	ErrAllocation = errors.New("gpu: allocation failed")

	// a shader program failed to compile or link
	ErrShaderCompilation = errors.New("gpu: shader compilation failed")

	// pixel data could not be uploaded to a surface. the surface should be
	// recreated and a full upload attempted
	ErrUpload = errors.New("gpu: upload failed")

	// the context of the device has been lost. any surface or program
	// created by the device is no longer valid
	ErrContextLost = errors.New("gpu: context lost")
)

// CompileError is returned by Device.CompileProgram() when a shader program
// cannot be compiled or linked. It wraps ErrShaderCompilation.
type CompileError struct {
	// the name of the program
	Name string

	// the stage that failed. usually "vertex", "fragment" or "link"
	Stage string

	// the source of the stage that failed
	Source string

	// the log produced by the shader compiler
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", ErrShaderCompilation, e.Name, e.Stage, e.Log)
}

// Unwrap allows the use of errors.Is(err, ErrShaderCompilation).
func (e *CompileError) Unwrap() error {
	return ErrShaderCompilation
}

// Filter specifies how a surface is sampled when it is scaled.
type Filter int

// List of valid Filter values.
const (
	Nearest Filter = iota
	Linear
)

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	}
	return "unknown filter"
}

// Caps describes the capabilities of a Device.
type Caps struct {
	// the largest width or height of a surface
	MaxTextureSize int

	// whether surfaces can have dimensions that are not a power of two
	NonPowerOfTwo bool
}

// Uniforms are the values given to a shader program for each pass.
type Uniforms struct {
	// the allocated size of the input surface
	TextureSize geometry.Size

	// the size of the populated area of the input surface
	InputSize geometry.Size

	// the size of the output
	OutputSize geometry.Size

	// the size of the frame before supersampling or any earlier pass
	SourceSize geometry.Size

	// seconds since the renderer was created
	Time float64

	// the number of frames rendered since the renderer was created
	FrameCount int
}

// DrawOp describes a single draw. The source region of the source surface is
// drawn into the destination rectangle of the target surface, through the
// program if one is specified.
type DrawOp struct {
	Source       Surface
	SourceRegion image.Rectangle

	// a nil target is the screen
	Target Surface
	Dest   image.Rectangle

	Filter Filter

	// a nil program is a plain copy
	Program  Program
	Uniforms Uniforms
}

// Surface is an image in GPU memory that can be drawn from and drawn into.
type Surface interface {
	// the allocated dimensions of the surface
	Size() (int, int)

	Format() PixelFormat

	// Fill copies pixels into the region of the surface. The first byte of
	// the pixels slice is the top-left pixel of the region and each row is
	// pitch bytes apart. The pixels must be in the format of the surface.
	Fill(region image.Rectangle, pixels []byte, pitch int) error

	Release()
}

// Program is a compiled shader program.
type Program interface {
	Name() string
	Release()
}

// ProgramSource describes a shader program. A device uses the part of the
// source suitable for it. A device that finds no suitable source returns a
// CompileError.
type ProgramSource struct {
	Name string

	// GLSL 1.50 source. an empty vertex source means the device's standard
	// vertex shader is used
	Vertex   string
	Fragment string

	// Kage source for Ebitengine
	Kage string

	// the name of a software kernel
	Kernel string
}

// Device is the interface to the graphics hardware.
type Device interface {
	Caps() Caps

	// NewSurface allocates a new surface. Errors wrap ErrAllocation.
	NewSurface(width, height int, format PixelFormat) (Surface, error)

	// CompileProgram compiles a shader program. Errors wrap
	// ErrShaderCompilation.
	CompileProgram(src ProgramSource) (Program, error)

	// Draw performs a single draw operation.
	Draw(op DrawOp) error

	// Clear sets the target surface to transparent black. A nil target is
	// the screen, which is cleared to opaque black.
	Clear(target Surface) error
}

// ScreenReader is implemented by devices that can return a copy of the screen.
type ScreenReader interface {
	ReadScreen() (*image.RGBA, error)
}
