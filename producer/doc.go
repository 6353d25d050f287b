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

// Package producer contains sources of frames for the display pipeline when
// there is no emulation to drive it.
//
// Pattern draws a moving test pattern, redrawing only the scanlines that
// change from frame to frame. LoadImage creates a single frame from an image
// file. Both produce frames of any of the supported bit depths.
package producer
