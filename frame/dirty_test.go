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
	"testing"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/test"
)

func TestMarkRegionDirty(t *testing.T) {
	f, err := frame.New(320, 200, 32)
	test.DemandSuccess(t, err)

	f.MarkRegionDirty(frame.Region{Start: 50, End: 60})
	f.MarkRegionDirty(frame.Region{Start: 10, End: 20})

	// empty and out of range regions are ignored
	f.MarkRegionDirty(frame.Region{Start: 30, End: 30})
	f.MarkRegionDirty(frame.Region{Start: 250, End: 300})

	// clamped to frame height
	f.MarkRegionDirty(frame.Region{Start: 190, End: 210})

	test.ExpectSuccess(t, slices.Equal(f.DirtyRegions(), []frame.Region{
		{Start: 50, End: 60},
		{Start: 10, End: 20},
		{Start: 190, End: 200},
	}))
	test.ExpectFailure(t, f.AllDirty())

	f.ClearDirtyRegions()
	test.ExpectEquality(t, len(f.DirtyRegions()), 0)
	test.ExpectFailure(t, f.IsDirty())
}

func TestDirtyRegionOverflow(t *testing.T) {
	f, err := frame.New(320, 2000, 32)
	test.DemandSuccess(t, err)

	for i := range frame.MaxDirtyRegions {
		f.MarkRegionDirty(frame.Region{Start: i, End: i + 1})
	}
	test.ExpectFailure(t, f.AllDirty())
	test.ExpectEquality(t, len(f.DirtyRegions()), frame.MaxDirtyRegions)

	// one more than the cap switches to whole frame semantics
	f.MarkRegionDirty(frame.Region{Start: 1500, End: 1501})
	test.ExpectSuccess(t, f.AllDirty())
	test.ExpectSuccess(t, f.IsDirty())
	test.ExpectSuccess(t, len(f.DirtyRegions()) <= frame.MaxDirtyRegions)

	// clearing resets the overflow
	f.ClearDirtyRegions()
	test.ExpectFailure(t, f.AllDirty())
}

func TestCoalesce(t *testing.T) {
	in := []frame.Region{
		{Start: 50, End: 60},
		{Start: 10, End: 20},
		{Start: 20, End: 25},
		{Start: 55, End: 70},
		{Start: 100, End: 101},
	}
	out := frame.Coalesce(in)
	test.ExpectSuccess(t, slices.Equal(out, []frame.Region{
		{Start: 10, End: 25},
		{Start: 50, End: 70},
		{Start: 100, End: 101},
	}))

	// input is not modified
	test.ExpectEquality(t, in[0], frame.Region{Start: 50, End: 60})

	test.ExpectEquality(t, len(frame.Coalesce(nil)), 0)
}
