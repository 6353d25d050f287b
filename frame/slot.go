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

package frame

import (
	"sync/atomic"
	"time"
)

// Slot holds the most recently published Frame. It is intended for use by
// exactly one producer goroutine (the emulation) and one consumer goroutine
// (the display).
//
// Publishing never blocks. If the producer publishes a new frame before the
// consumer has taken the previous one then the previous frame is discarded.
// The dirty regions of the discarded frame are merged into the new frame so
// that the consumer does not miss any changes.
type Slot struct {
	latest  atomic.Pointer[Frame]
	version atomic.Uint64
}

// Publish seals the frame and makes it the latest frame. It returns the
// version number assigned to the frame. Version numbers start at one and
// increase by one with every call to Publish().
//
// The frame must not be modified after it has been published. A frame that
// is already sealed will cause a panic.
func (s *Slot) Publish(f *Frame) uint64 {
	f.mustBeUnsealed()

	if prev := s.latest.Load(); prev != nil && !prev.consumed.Load() {
		f.mergeDirty(prev)
	}

	if f.timestamp.IsZero() {
		f.timestamp = time.Now()
	}

	f.version = s.version.Add(1)
	f.sealed = true
	s.latest.Store(f)

	return f.version
}

// Latest returns the most recently published frame and its version number.
// The boolean return value is true if the version is newer than the seen
// argument. Use a seen value of zero to always receive the latest frame.
//
// A nil frame is returned if nothing has been published yet.
func (s *Slot) Latest(seen uint64) (*Frame, uint64, bool) {
	f := s.latest.Load()
	if f == nil {
		return nil, 0, false
	}
	f.consumed.Store(true)
	return f, f.version, f.version > seen
}

// Version returns the version number of the most recently published frame.
func (s *Slot) Version() uint64 {
	return s.version.Load()
}
