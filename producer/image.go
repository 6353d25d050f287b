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
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/gpu"
)

// decoders by file extension. TGA files have no magic number so the format
// can't be sniffed by image.Decode()
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// LoadImage decodes the image file and returns a frame of the specified bit
// depth. PNG, JPEG, GIF, BMP, WebP and TGA files are supported, identified by
// the file extension. Every scanline of the frame is dirty.
func LoadImage(path string, depth int) (*frame.Frame, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("producer: %s: %w", path, image.ErrFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("producer: %w", err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("producer: %s: %w", path, err)
	}

	return FromImage(img, depth)
}

// FromImage converts the image to a frame of the specified bit depth.
// Transparent pixels become black. Every scanline of the frame is dirty.
func FromImage(img image.Image, depth int) (*frame.Frame, error) {
	format, err := gpu.FormatForDepth(depth)
	if err != nil {
		return nil, fmt.Errorf("producer: %w", err)
	}

	b := img.Bounds()
	f, err := frame.New(b.Dx(), b.Dy(), depth)
	if err != nil {
		return nil, fmt.Errorf("producer: %w", err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	gpu.FromRGBA(format, rgba, rgba.Rect, f.Pixels(), f.Pitch())
	f.MarkAllDirty()

	return f, nil
}
