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

package frame_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/test"
)

func TestSlotVersions(t *testing.T) {
	var s frame.Slot

	f, v, ok := s.Latest(0)
	test.ExpectEquality(t, f, (*frame.Frame)(nil))
	test.ExpectEquality(t, v, uint64(0))
	test.ExpectFailure(t, ok)

	a, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Publish(a), uint64(1))

	f, v, ok = s.Latest(0)
	test.ExpectEquality(t, f, a)
	test.ExpectEquality(t, v, uint64(1))
	test.ExpectSuccess(t, ok)
	test.ExpectInequality(t, f.Timestamp().IsZero(), true)

	// nothing new since version 1
	_, _, ok = s.Latest(v)
	test.ExpectFailure(t, ok)

	b := a.Next()
	test.ExpectEquality(t, s.Publish(b), uint64(2))
	f, v, ok = s.Latest(v)
	test.ExpectEquality(t, f, b)
	test.ExpectEquality(t, v, uint64(2))
	test.ExpectSuccess(t, ok)
}

func TestSlotMergesSkippedFrames(t *testing.T) {
	var s frame.Slot

	a, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)
	s.Publish(a)
	_, seen, _ := s.Latest(0)

	// b is never consumed
	b := a.Next()
	b.MarkRegionDirty(frame.Region{Start: 10, End: 20})
	s.Publish(b)

	c := b.Next()
	c.MarkRegionDirty(frame.Region{Start: 50, End: 60})
	s.Publish(c)

	f, _, ok := s.Latest(seen)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, f, c)
	test.ExpectSuccess(t, slices.Equal(frame.Coalesce(f.DirtyRegions()), []frame.Region{
		{Start: 10, End: 20},
		{Start: 50, End: 60},
	}))

	// c was consumed so d does not inherit its regions
	d := c.Next()
	d.MarkRegionDirty(frame.Region{Start: 100, End: 101})
	s.Publish(d)
	f, _, _ = s.Latest(0)
	test.ExpectSuccess(t, slices.Equal(f.DirtyRegions(), []frame.Region{{Start: 100, End: 101}}))
}

func TestSlotMergeDifferentSize(t *testing.T) {
	var s frame.Slot

	a, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)
	s.Publish(a)

	b, err := frame.New(640, 400, 32)
	test.DemandSuccess(t, err)
	s.Publish(b)

	f, _, _ := s.Latest(0)
	test.ExpectEquality(t, f, b)
	test.ExpectSuccess(t, f.AllDirty())
}

func TestSlotConcurrent(t *testing.T) {
	var s frame.Slot
	const frames = 500

	f, err := frame.New(64, 64, 32)
	test.DemandSuccess(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range frames {
			n := f.Next()
			n.Pixels()[0] = byte(i)
			n.MarkRegionDirty(frame.Region{Start: i % 64, End: i%64 + 1})
			s.Publish(n)
			f = n
		}
	}()

	var seen uint64
	for seen < frames {
		l, v, ok := s.Latest(seen)
		if !ok {
			continue
		}
		test.DemandSuccess(t, v > seen)
		test.ExpectSuccess(t, l.Sealed())
		seen = v
	}

	wg.Wait()
	test.ExpectEquality(t, s.Version(), uint64(frames))
}
