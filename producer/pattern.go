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

package producer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/limiter"
	"github.com/jetsetilly/dosframe/logger"
)

// Publisher accepts completed frames. Both frame.Slot and display.View
// implement the interface.
type Publisher interface {
	Publish(f *frame.Frame) uint64
}

// colour bars drawn behind the moving band
var bars = []color.RGBA{
	{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	{R: 0xc0, G: 0xc0, A: 0xff},
	{G: 0xc0, B: 0xc0, A: 0xff},
	{G: 0xc0, A: 0xff},
	{R: 0xc0, B: 0xc0, A: 0xff},
	{R: 0xc0, A: 0xff},
	{B: 0xc0, A: 0xff},
	{A: 0xff},
}

// Pattern draws colour bars with a horizontal band that moves down the
// screen, wrapping at the bottom. Only the scanlines covered by the band in
// the previous frame and in the new frame are redrawn and marked dirty.
type Pattern struct {
	width  int
	height int
	depth  int

	// float64 bits. changed by SetAspectRatio() from any goroutine
	aspect atomic.Uint64

	// height of the band in scanlines and the number of scanlines it moves
	// each frame
	band  int
	speed int

	// the scanline at the top of the band
	position int

	// the pixels of a row of colour bars and a row of the band, in the
	// format of the frame
	barRow  []byte
	bandRow []byte

	prev *frame.Frame
}

// NewPattern is the preferred method of initialisation for the Pattern type.
func NewPattern(width, height, depth int) (*Pattern, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("producer: %w: %dx%d", frame.ErrInvalidSize, width, height)
	}

	format, err := gpu.FormatForDepth(depth)
	if err != nil {
		return nil, fmt.Errorf("producer: %w", err)
	}

	p := &Pattern{
		width:  width,
		height: height,
		depth:  depth,
		band:   max(1, height/10),
		speed:  max(1, height/100),
	}

	row := image.NewRGBA(image.Rect(0, 0, width, 2))
	for x := range width {
		row.SetRGBA(x, 0, bars[x*len(bars)/width])
		l := uint8(x * 256 / width)
		row.SetRGBA(x, 1, color.RGBA{R: l, G: l, B: l, A: 0xff})
	}

	pitch := width * format.BytesPerPixel()
	p.barRow = make([]byte, pitch)
	p.bandRow = make([]byte, pitch)
	gpu.FromRGBA(format, row, image.Rect(0, 0, width, 1), p.barRow, pitch)
	gpu.FromRGBA(format, row, image.Rect(0, 1, width, 2), p.bandRow, pitch)

	return p, nil
}

// SetAspectRatio sets the aspect ratio that frames should be displayed at. A
// ratio of zero means square pixels. The change takes effect with the next
// frame. Safe to call while Run() is publishing frames.
func (p *Pattern) SetAspectRatio(ratio float64) {
	p.aspect.Store(math.Float64bits(ratio))
}

// AspectRatio returns the value set by SetAspectRatio().
func (p *Pattern) AspectRatio() float64 {
	return math.Float64frombits(p.aspect.Load())
}

// SetSpeed sets the number of scanlines the band moves each frame.
func (p *Pattern) SetSpeed(speed int) {
	p.speed = max(1, speed)
}

// Reset the pattern so that the next frame is drawn in full.
func (p *Pattern) Reset() {
	p.prev = nil
	p.position = 0
}

// Position returns the scanline at the top of the band in the most recent
// frame.
func (p *Pattern) Position() int {
	return p.position
}

// bandRegions returns the scanlines covered by the band at the position. a
// band that wraps around the bottom of the frame covers two regions
func (p *Pattern) bandRegions(position int) []frame.Region {
	end := position + p.band
	if end <= p.height {
		return []frame.Region{{Start: position, End: end}}
	}
	return []frame.Region{
		{Start: position, End: p.height},
		{Start: 0, End: end - p.height},
	}
}

func (p *Pattern) fill(f *frame.Frame, regions []frame.Region, row []byte) {
	for _, r := range regions {
		for y := r.Start; y < r.End; y++ {
			copy(f.Row(y), row)
		}
		f.MarkRegionDirty(r)
	}
}

// Next returns the next frame of the pattern. The frame has not been
// published.
func (p *Pattern) Next() *frame.Frame {
	if p.prev == nil {
		// NewPattern() has already validated the dimensions
		f, _ := frame.New(p.width, p.height, p.depth)
		f.UseAspectRatio(p.AspectRatio())
		for y := range p.height {
			copy(f.Row(y), p.barRow)
		}
		for _, r := range p.bandRegions(p.position) {
			for y := r.Start; y < r.End; y++ {
				copy(f.Row(y), p.bandRow)
			}
		}
		f.MarkAllDirty()
		p.prev = f
		return f
	}

	f := p.prev.Next()
	f.UseAspectRatio(p.AspectRatio())
	p.fill(f, p.bandRegions(p.position), p.barRow)
	p.position = (p.position + p.speed) % p.height
	p.fill(f, p.bandRegions(p.position), p.bandRow)
	p.prev = f

	return f
}

// Run publishes frames until the context is cancelled. Frames are paced by
// the limiter.
func (p *Pattern) Run(ctx context.Context, pub Publisher, lmtr *limiter.Limiter) {
	logger.Logf(logger.Allow, "producer", "pattern %dx%d@%d", p.width, p.height, p.depth)

	for {
		select {
		case <-ctx.Done():
			logger.Logf(logger.Allow, "producer", "pattern stopped at %.2f fps", lmtr.Measured.Load().(float32))
			return
		default:
		}

		pub.Publish(p.Next())
		lmtr.CheckFrame()
		lmtr.MeasureActual()
	}
}
