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

// Package digest produces cryptographic hashes of frames and rendered screens.
// A hash can be compared with a previously recorded value: if the values
// differ then something in the pipeline has changed. The hashes are the basis
// of the regression tests for the software renderer and of the -digest flag
// of the SNAPSHOT mode.
//
// The use of sha1 is fine because this is not a cryptographic task.
package digest

import (
	"crypto/sha1"
	"fmt"
	"image"
)

// Digest implementations return the current hash with Hash().
type Digest interface {
	Hash() string
	ResetDigest()
}

// Image returns the hash of the pixels of an RGBA image. Only the pixels
// inside the image bounds contribute to the hash.
func Image(img *image.RGBA) string {
	h := sha1.New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[i : i+b.Dx()*4])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
