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
	"fmt"
	"slices"
)

// Region is a half-open range of scanlines. Start is the first scanline in
// the region and End is the scanline after the last scanline in the region.
type Region struct {
	Start int
	End   int
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Len returns the number of scanlines in the region.
func (r Region) Len() int {
	return max(0, r.End-r.Start)
}

// MarkRegionDirty adds the region to the list of dirty regions. The region is
// clamped to the height of the frame and empty regions are ignored.
//
// If the list already holds MaxDirtyRegions entries then the frame switches
// to being entirely dirty. AllDirty() will return true until
// ClearDirtyRegions() is called.
func (f *Frame) MarkRegionDirty(r Region) {
	f.mustBeUnsealed()

	r.Start = max(r.Start, 0)
	r.End = min(r.End, f.height)
	if r.End <= r.Start {
		return
	}

	if f.overflow {
		return
	}

	if len(f.dirty) >= MaxDirtyRegions {
		f.MarkAllDirty()
		return
	}

	f.dirty = append(f.dirty, r)
}

// MarkAllDirty marks the entire frame as dirty.
func (f *Frame) MarkAllDirty() {
	f.mustBeUnsealed()
	f.overflow = true
	f.dirty = f.dirty[:0]
}

// ClearDirtyRegions empties the list of dirty regions.
func (f *Frame) ClearDirtyRegions() {
	f.mustBeUnsealed()
	f.overflow = false
	f.dirty = f.dirty[:0]
}

// AllDirty returns true if the entire frame should be treated as dirty.
func (f *Frame) AllDirty() bool {
	return f.overflow
}

// IsDirty returns true if any part of the frame is dirty.
func (f *Frame) IsDirty() bool {
	return f.overflow || len(f.dirty) > 0
}

// DirtyRegions returns a copy of the list of dirty regions in the order they
// were added. The list is not meaningful if AllDirty() returns true.
func (f *Frame) DirtyRegions() []Region {
	return slices.Clone(f.dirty)
}

// mergeDirty adds the dirty regions of another frame to this frame. if the
// other frame has different dimensions then this frame becomes entirely dirty.
func (f *Frame) mergeDirty(o *Frame) {
	if o.width != f.width || o.height != f.height || o.depth != f.depth || o.overflow {
		f.MarkAllDirty()
		return
	}
	for _, r := range o.dirty {
		f.MarkRegionDirty(r)
	}
}

// Coalesce sorts a list of regions and merges any that overlap or are
// adjacent. The original list is not modified.
func Coalesce(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}

	s := slices.Clone(regions)
	slices.SortFunc(s, func(a, b Region) int {
		return a.Start - b.Start
	})

	merged := s[:1]
	for _, r := range s[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
		} else {
			merged = append(merged, r)
		}
	}

	return merged
}
