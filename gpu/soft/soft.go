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

// Package soft implements the gpu.Device interface on the CPU. Surfaces are
// RGBA images and shader programs are Go functions, called kernels.
//
// The device is slow but it is exact and it needs no window or graphics
// driver, which makes it suitable for headless rendering and screenshots.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/jetsetilly/dosframe/gpu"
)

// DefaultMaxTextureSize is used when Options.MaxTextureSize is zero.
const DefaultMaxTextureSize = 8192

// Options for a new Device.
type Options struct {
	// the largest width or height of a surface. zero means
	// DefaultMaxTextureSize
	MaxTextureSize int

	// surfaces must have dimensions that are a power of two. the soft device
	// does not need this but it is useful for checking the behaviour of code
	// that must work with devices that do
	PowerOfTwo bool
}

// Device implements the gpu.Device and gpu.ScreenReader interfaces.
type Device struct {
	caps   gpu.Caps
	screen *image.RGBA
}

// NewDevice is the preferred method of initialisation for the Device type. The
// screen is the specified size.
func NewDevice(width, height int, opts Options) *Device {
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = DefaultMaxTextureSize
	}
	return &Device{
		caps: gpu.Caps{
			MaxTextureSize: opts.MaxTextureSize,
			NonPowerOfTwo:  !opts.PowerOfTwo,
		},
		screen: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// SetScreenSize changes the size of the screen. The content of the screen is
// lost.
func (dev *Device) SetScreenSize(width, height int) {
	if dev.screen.Rect.Dx() == width && dev.screen.Rect.Dy() == height {
		return
	}
	dev.screen = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Screen returns the screen image. The image is owned by the device.
func (dev *Device) Screen() *image.RGBA {
	return dev.screen
}

// ReadScreen implements the gpu.ScreenReader interface.
func (dev *Device) ReadScreen() (*image.RGBA, error) {
	img := image.NewRGBA(dev.screen.Rect)
	copy(img.Pix, dev.screen.Pix)
	return img, nil
}

// Caps implements the gpu.Device interface.
func (dev *Device) Caps() gpu.Caps {
	return dev.caps
}

// NewSurface implements the gpu.Device interface.
func (dev *Device) NewSurface(width, height int, format gpu.PixelFormat) (gpu.Surface, error) {
	if width <= 0 || height <= 0 || width > dev.caps.MaxTextureSize || height > dev.caps.MaxTextureSize {
		return nil, fmt.Errorf("soft: %w: %dx%d", gpu.ErrAllocation, width, height)
	}
	if !dev.caps.NonPowerOfTwo && (width&(width-1) != 0 || height&(height-1) != 0) {
		return nil, fmt.Errorf("soft: %w: %dx%d is not a power of two", gpu.ErrAllocation, width, height)
	}
	return &surface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		format: format,
	}, nil
}

// CompileProgram implements the gpu.Device interface. The program is the
// kernel named in the program source.
func (dev *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	k, ok := kernels[src.Kernel]
	if !ok {
		log := fmt.Sprintf("no kernel named %q", src.Kernel)
		if src.Kernel == "" {
			log = "program has no kernel"
		}
		return nil, &gpu.CompileError{
			Name:  src.Name,
			Stage: "kernel",
			Log:   log,
		}
	}
	return &program{name: src.Name, kernel: k}, nil
}

func (dev *Device) target(s gpu.Surface) (*image.RGBA, error) {
	if s == nil {
		return dev.screen, nil
	}
	t, ok := s.(*surface)
	if !ok || t.img == nil {
		return nil, fmt.Errorf("soft: invalid target surface")
	}
	return t.img, nil
}

// Draw implements the gpu.Device interface.
func (dev *Device) Draw(op gpu.DrawOp) error {
	src, ok := op.Source.(*surface)
	if !ok || src.img == nil {
		return fmt.Errorf("soft: invalid source surface")
	}
	dst, err := dev.target(op.Target)
	if err != nil {
		return err
	}

	if op.Program == nil {
		scale(dst, op.Dest, src.img, op.SourceRegion, op.Filter)
		return nil
	}

	p, ok := op.Program.(*program)
	if !ok || p.kernel == nil {
		return fmt.Errorf("soft: invalid program")
	}
	p.kernel(dst, op.Dest, src.img, op.SourceRegion, op.Filter, op.Uniforms)

	return nil
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(target gpu.Surface) error {
	dst, err := dev.target(target)
	if err != nil {
		return err
	}
	c := color.RGBA{}
	if target == nil {
		c.A = 0xff
	}
	draw.Draw(dst, dst.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

type surface struct {
	img    *image.RGBA
	format gpu.PixelFormat
}

func (s *surface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

func (s *surface) Format() gpu.PixelFormat {
	return s.format
}

func (s *surface) Fill(region image.Rectangle, pixels []byte, pitch int) error {
	if s.img == nil {
		return fmt.Errorf("soft: fill of released surface")
	}
	if !region.In(s.img.Rect) {
		return fmt.Errorf("soft: fill region %v outside of surface", region)
	}
	if region.Empty() {
		return nil
	}
	need := (region.Dy()-1)*pitch + region.Dx()*s.format.BytesPerPixel()
	if len(pixels) < need {
		return fmt.Errorf("soft: fill with %d bytes, need %d", len(pixels), need)
	}
	gpu.ToRGBA(s.format, pixels, pitch, s.img, region)
	return nil
}

func (s *surface) Release() {
	s.img = nil
}

type program struct {
	name   string
	kernel Kernel
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Release() {
	p.kernel = nil
}
