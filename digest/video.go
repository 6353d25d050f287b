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

package digest

import (
	"crypto/sha1"
	"fmt"
	"sync"

	"github.com/jetsetilly/dosframe/frame"
)

// Publisher receives frames. Implemented by frame.Slot and display.View.
type Publisher interface {
	Publish(*frame.Frame) uint64
}

// Video hashes every frame published through it. The hash of each frame
// includes the hash of the previous frame so the final value describes the
// whole sequence.
//
// Frames are forwarded to the next Publisher, which may be nil.
type Video struct {
	next Publisher

	crit   sync.Mutex
	digest [sha1.Size]byte
	frames int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo(next Publisher) *Video {
	return &Video{next: next}
}

func (dig *Video) String() string {
	return dig.Hash()
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return fmt.Sprintf("%x", dig.digest)
}

// Frames returns the number of frames included in the hash.
func (dig *Video) Frames() int {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return dig.frames
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	clear(dig.digest[:])
	dig.frames = 0
}

// Publish adds the frame to the hash and forwards it. Returns the version
// number given by the next Publisher or zero if there is none.
//
// The geometry of the frame contributes to the hash as well as its pixels.
func (dig *Video) Publish(f *frame.Frame) uint64 {
	dig.crit.Lock()
	h := sha1.New()
	h.Write(dig.digest[:])
	fmt.Fprintf(h, "%dx%d@%d;", f.Width(), f.Height(), f.Depth())
	for y := range f.Height() {
		h.Write(f.Row(y))
	}
	copy(dig.digest[:], h.Sum(nil))
	dig.frames++
	dig.crit.Unlock()

	if dig.next == nil {
		return 0
	}
	return dig.next.Publish(f)
}
