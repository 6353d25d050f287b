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

// Package limiter paces a loop to a fixed number of frames per second and
// measures the rate actually achieved.
//
// The limiter is used by frame producers, which must not publish frames more
// quickly than the emulated display would, and by the display loop when
// vsync is not available.
package limiter

import (
	"sync/atomic"
	"time"
)

// VGARefreshRate is the refresh rate of the 320x200 and 640x400 VGA modes.
const VGARefreshRate float32 = 70.086

// MatchRefreshRate can be used with SetLimit() to indicate that the limit
// should equal the refresh rate.
const MatchRefreshRate float32 = -1.0

// Display is implemented by anything that can report the refresh rate of the
// monitor. A limit close to the refresh rate of the monitor is quantised to
// that rate.
type Display interface {
	DisplayRefreshRate() (float32, bool)
}

// Limiter paces calls to CheckFrame().
type Limiter struct {
	// whether to wait for the limit each frame
	Active bool

	// the refresh rate of the emulated display
	RefreshRate atomic.Value // float32

	// the ideal number of frames per second if everything was working nicely
	IdealFPS atomic.Value // float32

	// the actual value sent to the SetLimit() function
	requestedFPS atomic.Value // float32

	// pulse that performs the limiting. the duration of the ticker will be set
	// when SetLimit() is called with a new fps value
	pulse *time.Ticker

	// waiting on the pulse every frame is too coarse at high frame rates. the
	// pulse instead fires every pulseCtLimit frames
	pulseCt      int
	pulseCtLimit int

	// pulse that performs the FPS measurement
	measuringPulse *time.Ticker

	// the measured FPS is the number of frames divided by the amount of
	// elapsed time since the previous measurement
	measureTime time.Time
	measureCt   int

	// the measured number of frames per second
	Measured atomic.Value // float32

	// nudge the limiter so that it doesn't wait for the specified number of
	// frames
	Nudge atomic.Int32

	display Display
}

// NewLimiter is the preferred method of initialising a new instance of the
// Limiter type. The refresh rate is set to the specified value and the limit
// set to match it. A refresh rate of zero or less means VGARefreshRate.
func NewLimiter(refreshRate float32) *Limiter {
	if refreshRate <= 0 {
		refreshRate = VGARefreshRate
	}

	lmtr := Limiter{}
	lmtr.Active = true
	lmtr.Measured.Store(float32(0.0))
	lmtr.requestedFPS.Store(MatchRefreshRate)

	lmtr.pulse = time.NewTicker(time.Millisecond * 16)
	lmtr.measuringPulse = time.NewTicker(time.Millisecond * 1000)

	lmtr.SetRefreshRate(refreshRate)
	lmtr.SetLimit(MatchRefreshRate)

	return &lmtr
}

// SetDisplay sets the display used to quantise the limit.
func (lmtr *Limiter) SetDisplay(display Display) {
	lmtr.display = display
	lmtr.SetLimit(lmtr.requestedFPS.Load().(float32))
}

// SetRefreshRate changes the refresh rate of the emulated display. If the limit
// was set with MatchRefreshRate then the limit changes too.
func (lmtr *Limiter) SetRefreshRate(refreshRate float32) {
	lmtr.RefreshRate.Store(refreshRate)
	if lmtr.requestedFPS.Load().(float32) <= 0 {
		lmtr.SetLimit(MatchRefreshRate)
	}
}

// SetLimit sets the frame limit. Use a value of MatchRefreshRate to indicate
// that the limit should equal the refresh rate.
func (lmtr *Limiter) SetLimit(fps float32) {
	lmtr.requestedFPS.Store(fps)

	if fps <= 0.0 {
		fps = lmtr.RefreshRate.Load().(float32)
	}

	// refresh rate probably hasn't been set yet
	if fps <= 0.0 {
		return
	}

	// quantise to the refresh rate of the monitor
	if lmtr.display != nil {
		hz, quantise := lmtr.display.DisplayRefreshRate()
		if quantise {
			if fps >= hz*0.96 && fps <= hz*1.04 {
				fps = hz
			}
		}
	}

	lmtr.IdealFPS.Store(fps)

	lmtr.pulseCt = 0
	lmtr.pulseCtLimit = 1 + int(fps/20)
	lmtr.pulse.Stop()
	lmtr.pulse.Reset(time.Duration(1000000000 / fps * float32(lmtr.pulseCtLimit)))

	lmtr.measureCt = 0
	lmtr.measureTime = time.Now()
}

// CheckFrame should be called every frame. It blocks for as long as is
// necessary to maintain the limit.
func (lmtr *Limiter) CheckFrame() {
	lmtr.measureCt++

	nudge := lmtr.Nudge.Load()
	if nudge > 0 {
		lmtr.Nudge.Store(nudge - 1)
		return
	}

	if lmtr.Active {
		lmtr.pulseCt++
		if lmtr.pulseCt >= lmtr.pulseCtLimit {
			lmtr.pulseCt = 0
			<-lmtr.pulse.C
		}
	}
}

// MeasureActual measures the frame rate on every tick of the measuring pulse.
// Callers should be mindful of how often the function is called. Checking the
// pulse channel is itself expensive.
func (lmtr *Limiter) MeasureActual() {
	select {
	case <-lmtr.measuringPulse.C:
		t := time.Now()
		m := float32(lmtr.measureCt) / float32(t.Sub(lmtr.measureTime).Seconds())
		lmtr.Measured.Store(m)

		lmtr.measureTime = t
		lmtr.measureCt = 0
	default:
	}
}

// Stop the limiter's tickers. The limiter should not be used afterwards.
func (lmtr *Limiter) Stop() {
	lmtr.pulse.Stop()
	lmtr.measuringPulse.Stop()
}
