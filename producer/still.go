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
	"sync"

	"github.com/jetsetilly/dosframe/frame"
)

// Still publishes a single image. The image is published again whenever the
// aspect ratio is changed.
type Still struct {
	crit sync.Mutex

	// never published. each publication is a copy
	frame *frame.Frame

	// set by Run()
	pub Publisher
}

// NewStill is the preferred method of initialisation for the Still type. The
// frame must not have been published.
func NewStill(f *frame.Frame) *Still {
	return &Still{frame: f}
}

// SetAspectRatio changes the aspect ratio of the image. If Run() has been
// called the image is published again with the new aspect ratio.
func (s *Still) SetAspectRatio(ratio float64) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.frame.UseAspectRatio(ratio)
	if s.pub != nil {
		s.publish()
	}
}

// Run publishes the image. It does not wait for the context to be cancelled.
func (s *Still) Run(_ context.Context, pub Publisher) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.pub = pub
	s.publish()
}

func (s *Still) publish() {
	f := s.frame.Next()
	f.MarkAllDirty()
	s.pub.Publish(f)
}
