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

// Package statsview offers runtime statistics over a local HTTP server. The
// server is only built when the statsview build tag is present, otherwise
// Available() returns false and Launch() does nothing.
//
// Underlying functionality is provided by "github.com/go-echarts/statsview".
// After launch, graphs of memory use, goroutines and GC pauses are viewable
// at:
//
//	localhost:12601/debug/statsview
//
// The graphs are useful when comparing the allocation behaviour of the
// renderer tiers, the supersampling tier in particular.
package statsview
