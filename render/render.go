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

// Package render composites frames to the screen through a gpu.Device. There
// are four renderers, each building on the one before:
//
//   - Basic draws the frame texture into the viewport
//   - Supersampling draws the frame texture into an intermediate buffer at an
//     integral multiple of the frame size before drawing the buffer into the
//     viewport
//   - Shader draws the frame through a chain of shader passes
//   - Stepped chooses between several shader chains depending on how much
//     the frame is being scaled
//
// The renderers are built by composition. Supersampling owns a Basic, Shader
// owns a Supersampling, and so on. Each one implements the Renderer
// interface.
//
// Renderers are created with the New() function. If a renderer cannot be
// created, or if it fails later with gpu.ErrAllocation, then the caller should
// try again with the next simplest tier. See Tier.Simpler().
//
// Renderers are not safe for concurrent use. All calls must be made from the
// goroutine that owns the gpu.Device.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/logger"
)

// ErrDisposed is returned by any call to a renderer after Dispose() has been
// called.
var ErrDisposed = errors.New("render: renderer disposed")

// ErrNoShaders is returned by NewStepped() if the Config has no steps.
var ErrNoShaders = errors.New("render: stepped renderer needs at least one shader set")

// DefaultMaxSupersamplingScale is used when Config.MaxSupersamplingScale is
// zero.
const DefaultMaxSupersamplingScale = 4.0

// Renderer is implemented by all renderer tiers.
type Renderer interface {
	// PrepareForFrame uploads the frame to the GPU. Only the dirty regions of
	// the frame are uploaded unless the frame texture has been reallocated.
	PrepareForFrame(f *frame.Frame) error

	// RenderToViewport draws the most recently prepared frame into the
	// viewport. It does nothing if no frame has been prepared.
	RenderToViewport(viewport geometry.Rect) error

	// ViewportForFrame returns the rectangle the frame would be drawn into if
	// it was rendered to the bounds.
	ViewportForFrame(f *frame.Frame, bounds geometry.Rect) geometry.Rect

	// SetMaxViewportSize limits the size of the rectangle the frame is drawn
	// into. A zero size means no limit.
	SetMaxViewportSize(size geometry.Size)

	// SetManagesAspectRatio sets whether the rectangle the frame is drawn into
	// has the aspect ratio of the frame's scaled resolution.
	SetManagesAspectRatio(manage bool)

	// Invalidate releases the frame texture and any intermediate buffers.
	// The next call to PrepareForFrame() will perform a full upload.
	Invalidate()

	Stats() Stats
	State() State
	Tier() Tier

	// Dispose releases all GPU resources. The renderer cannot be used
	// afterwards.
	Dispose() error
}

// State of a renderer.
type State int

// List of valid State values.
const (
	Uninitialized State = iota
	Ready
	Rendering
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case Disposed:
		return "disposed"
	}
	return "unknown state"
}

// Tier identifies the renderer types.
type Tier int

// List of valid Tier values, from simplest to most complex.
const (
	TierBasic Tier = iota
	TierSupersampling
	TierShader
	TierStepped
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierSupersampling:
		return "supersampling"
	case TierShader:
		return "shader"
	case TierStepped:
		return "stepped"
	}
	return "unknown tier"
}

// Simpler returns the tier to fall back to if a renderer of this tier cannot
// be used. Returns false if there is no simpler tier.
func (t Tier) Simpler() (Tier, bool) {
	if t <= TierBasic {
		return TierBasic, false
	}
	return t - 1, true
}

// ParseTier returns the Tier for the name returned by Tier.String(). The
// comparison is case insensitive.
func ParseTier(s string) (Tier, error) {
	for t := TierBasic; t <= TierStepped; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return TierBasic, fmt.Errorf("render: unknown tier (%s)", s)
}

// Stats are the performance statistics for a renderer.
type Stats struct {
	// smoothed frames per second, measured between calls to
	// RenderToViewport()
	FrameRate float64

	// time taken by the most recent call to RenderToViewport()
	RenderingTime time.Duration

	// number of calls to RenderToViewport() that drew a frame
	Frames int
}

func (s Stats) String() string {
	return fmt.Sprintf("%.1f fps (%s per frame, %d frames)", s.FrameRate, s.RenderingTime, s.Frames)
}

// weighting of new frame rate measurement
const frameRateSmoothing = 0.1

func (s *Stats) record(start, end time.Time, last time.Time) {
	s.RenderingTime = end.Sub(start)
	s.Frames++
	if last.IsZero() {
		return
	}
	if d := start.Sub(last).Seconds(); d > 0 {
		if s.FrameRate == 0 {
			s.FrameRate = 1 / d
		} else {
			s.FrameRate += (1/d - s.FrameRate) * frameRateSmoothing
		}
	}
}

// Config is used to create a new renderer with New().
type Config struct {
	Tier Tier

	// the largest multiple of the frame size used for the supersampling
	// buffer. zero means DefaultMaxSupersamplingScale
	MaxSupersamplingScale float64

	// the shader chain for TierShader
	Shaders ShaderSet

	// the shader chains for TierStepped
	Steps []Step

	// whether the thresholds of Steps are viewport heights in pixels rather
	// than multiples of the frame size
	ScalesInPixels bool

	// whether the aspect ratio of the frame is preserved when rendering
	ManagesAspectRatio bool

	// a zero size means no limit
	MaxViewportSize geometry.Size

	// source of time for frame rate measurement and shader animation. if nil
	// then time.Now() is used
	Clock func() time.Time

	// permission for log entries made by the renderer. if nil then
	// logger.Allow is used
	Log logger.Permission
}

func (cfg Config) normalised() Config {
	if cfg.MaxSupersamplingScale <= 0 {
		cfg.MaxSupersamplingScale = DefaultMaxSupersamplingScale
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.Allow
	}
	return cfg
}
