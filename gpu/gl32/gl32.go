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

// Package gl32 implements the gpu.Device interface with OpenGL 3.2 core.
//
// A GL context must be current before NewDevice() is called, and every
// subsequent call to the device must be made from the same goroutine. The
// device panics if this rule is broken.
//
// Shader programs are GLSL 1.50. Programs without a vertex shader use the
// standard vertex shader, which provides the following to the fragment
// shader:
//
//	in vec2 vTexCoord;
//
// The following uniforms are set for every draw, if the program uses them:
//
//	uniform sampler2D rubyTexture;
//	uniform vec2 rubyTextureSize;
//	uniform vec2 rubyInputSize;
//	uniform vec2 rubyOutputSize;
//	uniform vec2 rubyOrigInputSize;
//	uniform int rubyFrameCount;
//	uniform float Time;
package gl32

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/jetsetilly/dosframe/assert"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
)

// Device implements the gpu.Device and gpu.ScreenReader interfaces.
type Device struct {
	// the goroutine that created the device
	goroutine uint64

	caps gpu.Caps

	vao uint32
	vbo uint32

	// program used for draws with no program
	copy *program

	// size of the default framebuffer
	screenW int32
	screenH int32

	// scratch space for converting pixels that have no native GL format
	scratch *image.RGBA
}

// NewDevice is the preferred method of initialisation for the Device type. The
// screen is the specified size.
func NewDevice(width, height int) (*Device, error) {
	err := gl.Init()
	if err != nil {
		return nil, fmt.Errorf("gl32: %w", err)
	}

	dev := &Device{
		goroutine: assert.GetGoRoutineID(),
		screenW:   int32(width),
		screenH:   int32(height),
	}

	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
	dev.caps = gpu.Caps{
		MaxTextureSize: int(maxSize),
		NonPowerOfTwo:  true,
	}

	gl.GenVertexArrays(1, &dev.vao)
	gl.GenBuffers(1, &dev.vbo)

	p, err := dev.CompileProgram(gpu.ProgramSource{Name: "copy", Fragment: copyFragmentShader})
	if err != nil {
		dev.Destroy()
		return nil, err
	}
	dev.copy = p.(*program)

	// log GPU vendor information
	logger.Logf(logger.Allow, "gl32", "vendor: %s", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Logf(logger.Allow, "gl32", "renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	logger.Logf(logger.Allow, "gl32", "driver: %s", gl.GoStr(gl.GetString(gl.VERSION)))
	logger.Logf(logger.Allow, "gl32", "max texture size: %d", maxSize)

	return dev, nil
}

// the device must only be used on the goroutine that created it
func (dev *Device) checkGoroutine() {
	if id := assert.GetGoRoutineID(); id != dev.goroutine {
		panic(fmt.Sprintf("gl32: device used from goroutine %d but created on goroutine %d", id, dev.goroutine))
	}
}

// Destroy releases the resources used by the device itself. Surfaces and
// programs must be released separately.
func (dev *Device) Destroy() {
	dev.checkGoroutine()

	if dev.copy != nil {
		dev.copy.Release()
		dev.copy = nil
	}
	if dev.vbo != 0 {
		gl.DeleteBuffers(1, &dev.vbo)
		dev.vbo = 0
	}
	if dev.vao != 0 {
		gl.DeleteVertexArrays(1, &dev.vao)
		dev.vao = 0
	}
}

// SetScreenSize should be called whenever the size of the default framebuffer
// changes.
func (dev *Device) SetScreenSize(width, height int) {
	dev.screenW = int32(width)
	dev.screenH = int32(height)
}

// Caps implements the gpu.Device interface.
func (dev *Device) Caps() gpu.Caps {
	return dev.caps
}

// NewSurface implements the gpu.Device interface.
func (dev *Device) NewSurface(width, height int, format gpu.PixelFormat) (gpu.Surface, error) {
	dev.checkGoroutine()

	if width <= 0 || height <= 0 || width > dev.caps.MaxTextureSize || height > dev.caps.MaxTextureSize {
		return nil, fmt.Errorf("gl32: %w: %dx%d", gpu.ErrAllocation, width, height)
	}

	s := &surface{
		dev:    dev,
		width:  int32(width),
		height: int32(height),
		format: format,
	}

	// drain errors from earlier calls so that we only see errors caused by
	// the allocation
	for range 16 {
		if gl.GetError() == gl.NO_ERROR {
			break
		}
	}

	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0,
		gl.RGBA8, s.width, s.height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &s.texture)
		return nil, fmt.Errorf("gl32: %w: %dx%d: GL error %#x", gpu.ErrAllocation, width, height, e)
	}

	return s, nil
}

// bindTarget binds the framebuffer for the target and sets the viewport to
// cover it. returns the size of the target
func (dev *Device) bindTarget(target gpu.Surface) (int32, int32, error) {
	if target == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, dev.screenW, dev.screenH)
		return dev.screenW, dev.screenH, nil
	}

	s, ok := target.(*surface)
	if !ok || s.texture == 0 {
		return 0, 0, fmt.Errorf("gl32: invalid target surface")
	}
	if err := s.bindFramebuffer(); err != nil {
		return 0, 0, err
	}
	gl.Viewport(0, 0, s.width, s.height)
	return s.width, s.height, nil
}

// Draw implements the gpu.Device interface.
func (dev *Device) Draw(op gpu.DrawOp) error {
	dev.checkGoroutine()

	src, ok := op.Source.(*surface)
	if !ok || src.texture == 0 {
		return fmt.Errorf("gl32: invalid source surface")
	}

	p := dev.copy
	if op.Program != nil {
		p, ok = op.Program.(*program)
		if !ok || p.handle == 0 {
			return fmt.Errorf("gl32: invalid program")
		}
	}

	tw, th, err := dev.bindTarget(op.Target)
	if err != nil {
		return err
	}

	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.SCISSOR_TEST)

	// texture space has the first row of pixels at the bottom. the screen
	// has the first row at the top so the destination is flipped
	flip := op.Target == nil
	vertices := quad(op.Dest, tw, th, flip, op.SourceRegion, src.width, src.height)

	gl.BindVertexArray(dev.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, dev.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STREAM_DRAW)

	filter := int32(gl.NEAREST)
	if op.Filter == gpu.Linear {
		filter = gl.LINEAR
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)

	p.setAttributes(op.Uniforms)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if e := gl.GetError(); e == gl.OUT_OF_MEMORY {
		return fmt.Errorf("gl32: %w: out of memory during draw", gpu.ErrAllocation)
	}

	return nil
}

// quad returns the vertices for a triangle strip that draws the source
// region into the destination. each vertex is a position in normalised device
// coordinates followed by a texture coordinate
func quad(dest image.Rectangle, tw, th int32, flip bool, src image.Rectangle, sw, sh int32) []float32 {
	x0 := 2*float32(dest.Min.X)/float32(tw) - 1
	x1 := 2*float32(dest.Max.X)/float32(tw) - 1
	y0 := 2*float32(dest.Min.Y)/float32(th) - 1
	y1 := 2*float32(dest.Max.Y)/float32(th) - 1
	if flip {
		y0, y1 = -y0, -y1
	}

	u0 := float32(src.Min.X) / float32(sw)
	u1 := float32(src.Max.X) / float32(sw)
	v0 := float32(src.Min.Y) / float32(sh)
	v1 := float32(src.Max.Y) / float32(sh)

	return []float32{
		x0, y0, u0, v0,
		x1, y0, u1, v0,
		x0, y1, u0, v1,
		x1, y1, u1, v1,
	}
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(target gpu.Surface) error {
	dev.checkGoroutine()

	if _, _, err := dev.bindTarget(target); err != nil {
		return err
	}

	if target == nil {
		gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	} else {
		gl.ClearColor(0.0, 0.0, 0.0, 0.0)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return nil
}

// ReadScreen implements the gpu.ScreenReader interface.
func (dev *Device) ReadScreen() (*image.RGBA, error) {
	dev.checkGoroutine()

	if dev.screenW <= 0 || dev.screenH <= 0 {
		return nil, fmt.Errorf("gl32: no screen")
	}

	img := image.NewRGBA(image.Rect(0, 0, int(dev.screenW), int(dev.screenH)))

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, dev.screenW, dev.screenH, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// the first row from ReadPixels is the bottom of the screen
	stride := img.Stride
	row := make([]byte, stride)
	for y := 0; y < int(dev.screenH)/2; y++ {
		a := img.Pix[y*stride : (y+1)*stride]
		b := img.Pix[(int(dev.screenH)-1-y)*stride : (int(dev.screenH)-y)*stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}

	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	return img, nil
}
