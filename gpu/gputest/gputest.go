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

// Package gputest provides a gpu.Device that records every call made to it,
// for use in tests. No pixels are drawn.
//
// Failures can be injected with the FailCompile, FailAllocation, FailFills and
// LoseContext fields.
package gputest

import (
	"fmt"
	"image"
	"slices"

	"github.com/jetsetilly/dosframe/gpu"
)

// Fill records a single call to Surface.Fill().
type Fill struct {
	Surface *Surface
	Region  image.Rectangle
	Bytes   int
}

// Device implements the gpu.Device interface.
type Device struct {
	caps gpu.Caps

	// surfaces in the order they were created. released surfaces remain in
	// the list
	Surfaces []*Surface

	// programs in the order they were compiled
	Programs []*Program

	Fills  []Fill
	Draws  []gpu.DrawOp
	Clears []gpu.Surface

	// names of programs that should fail compilation
	FailCompile []string

	// surfaces with a width or height greater than this value will fail.
	// zero means no limit other than the caps
	FailAllocation int

	// all operations fail with gpu.ErrContextLost
	LoseContext bool

	// the number of calls to Surface.Fill() that should fail before fills
	// succeed again
	FailFills int
}

// NewDevice is the preferred method of initialisation for the Device type. A
// zero maxTextureSize means 8192.
func NewDevice(maxTextureSize int, nonPowerOfTwo bool) *Device {
	if maxTextureSize <= 0 {
		maxTextureSize = 8192
	}
	return &Device{
		caps: gpu.Caps{
			MaxTextureSize: maxTextureSize,
			NonPowerOfTwo:  nonPowerOfTwo,
		},
	}
}

// Reset forgets all recorded fills, draws and clears. Surfaces and programs
// are not forgotten.
func (dev *Device) Reset() {
	dev.Fills = dev.Fills[:0]
	dev.Draws = dev.Draws[:0]
	dev.Clears = dev.Clears[:0]
}

// Live returns the surfaces that have not been released.
func (dev *Device) Live() []*Surface {
	var l []*Surface
	for _, s := range dev.Surfaces {
		if !s.Released {
			l = append(l, s)
		}
	}
	return l
}

// LivePrograms returns the programs that have not been released.
func (dev *Device) LivePrograms() []*Program {
	var l []*Program
	for _, p := range dev.Programs {
		if !p.Released {
			l = append(l, p)
		}
	}
	return l
}

// Caps implements the gpu.Device interface.
func (dev *Device) Caps() gpu.Caps {
	return dev.caps
}

// NewSurface implements the gpu.Device interface.
func (dev *Device) NewSurface(width, height int, format gpu.PixelFormat) (gpu.Surface, error) {
	if dev.LoseContext {
		return nil, fmt.Errorf("%w: %w", gpu.ErrAllocation, gpu.ErrContextLost)
	}
	if width <= 0 || height <= 0 || width > dev.caps.MaxTextureSize || height > dev.caps.MaxTextureSize {
		return nil, fmt.Errorf("%w: %dx%d", gpu.ErrAllocation, width, height)
	}
	if dev.FailAllocation > 0 && (width > dev.FailAllocation || height > dev.FailAllocation) {
		return nil, fmt.Errorf("%w: %dx%d", gpu.ErrAllocation, width, height)
	}

	s := &Surface{
		dev:    dev,
		ID:     len(dev.Surfaces),
		Width:  width,
		Height: height,
		format: format,
	}
	dev.Surfaces = append(dev.Surfaces, s)
	return s, nil
}

// CompileProgram implements the gpu.Device interface.
func (dev *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if dev.LoseContext {
		return nil, fmt.Errorf("%w: %w", gpu.ErrShaderCompilation, gpu.ErrContextLost)
	}
	if slices.Contains(dev.FailCompile, src.Name) {
		return nil, &gpu.CompileError{
			Name:   src.Name,
			Stage:  "fragment",
			Source: src.Fragment,
			Log:    "injected failure",
		}
	}
	p := &Program{name: src.Name, Source: src}
	dev.Programs = append(dev.Programs, p)
	return p, nil
}

// Draw implements the gpu.Device interface.
func (dev *Device) Draw(op gpu.DrawOp) error {
	if dev.LoseContext {
		return gpu.ErrContextLost
	}
	if s, ok := op.Source.(*Surface); !ok || s.Released {
		return fmt.Errorf("gputest: draw from invalid surface")
	}
	if op.Target != nil {
		if s, ok := op.Target.(*Surface); !ok || s.Released {
			return fmt.Errorf("gputest: draw to invalid surface")
		}
	}
	dev.Draws = append(dev.Draws, op)
	return nil
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(target gpu.Surface) error {
	if dev.LoseContext {
		return gpu.ErrContextLost
	}
	dev.Clears = append(dev.Clears, target)
	return nil
}

// ScreenDraws returns the draws with the screen as the target.
func (dev *Device) ScreenDraws() []gpu.DrawOp {
	var d []gpu.DrawOp
	for _, op := range dev.Draws {
		if op.Target == nil {
			d = append(d, op)
		}
	}
	return d
}

// Surface implements the gpu.Surface interface.
type Surface struct {
	dev      *Device
	ID       int
	Width    int
	Height   int
	format   gpu.PixelFormat
	Released bool
}

func (s *Surface) String() string {
	return fmt.Sprintf("surface %d (%dx%d)", s.ID, s.Width, s.Height)
}

// Size implements the gpu.Surface interface.
func (s *Surface) Size() (int, int) {
	return s.Width, s.Height
}

// Format implements the gpu.Surface interface.
func (s *Surface) Format() gpu.PixelFormat {
	return s.format
}

// Fill implements the gpu.Surface interface.
func (s *Surface) Fill(region image.Rectangle, pixels []byte, pitch int) error {
	if s.dev.LoseContext {
		return gpu.ErrContextLost
	}
	if s.Released {
		return fmt.Errorf("gputest: fill of released surface")
	}
	if s.dev.FailFills > 0 {
		s.dev.FailFills--
		return fmt.Errorf("gputest: injected fill failure")
	}
	if !region.In(image.Rect(0, 0, s.Width, s.Height)) {
		return fmt.Errorf("gputest: fill region %v outside of surface", region)
	}
	need := (region.Dy()-1)*pitch + region.Dx()*s.format.BytesPerPixel()
	if len(pixels) < need {
		return fmt.Errorf("gputest: fill with %d bytes, need %d", len(pixels), need)
	}
	s.dev.Fills = append(s.dev.Fills, Fill{Surface: s, Region: region, Bytes: need})
	return nil
}

// Release implements the gpu.Surface interface.
func (s *Surface) Release() {
	s.Released = true
}

// Program implements the gpu.Program interface.
type Program struct {
	name     string
	Source   gpu.ProgramSource
	Released bool
}

// Name implements the gpu.Program interface.
func (p *Program) Name() string {
	return p.name
}

// Release implements the gpu.Program interface.
func (p *Program) Release() {
	p.Released = true
}
