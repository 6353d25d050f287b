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

// Package screenshot saves images of the display to disk. The encoder is
// chosen by the extension of the filename.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/resources"
)

// ErrUnsupported is returned when the file extension has no encoder.
var ErrUnsupported = errors.New("screenshot: unsupported file type")

// ErrNoScreen is returned by Capture() when the device can't read back the
// screen.
var ErrNoScreen = errors.New("screenshot: device cannot read the screen")

// DefaultExtension is the extension used by Filename() when none is given.
const DefaultExtension = ".png"

type encoder func(io.Writer, image.Image) error

var encoders = map[string]encoder{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".webp": func(w io.Writer, img image.Image) error {
		return nativewebp.Encode(w, img, nil)
	},
	".tga": tga.Encode,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
}

// Supported returns true if there is an encoder for the extension of the
// path.
func Supported(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Filename returns a unique filename for a screenshot. The label is included
// in the name if it is not empty. An empty extension means DefaultExtension.
func Filename(label string, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return resources.UniqueFilename("screenshot", label) + ext
}

// Save the image to the path. PNG, JPEG, WebP and TGA are supported. WebP
// images are lossless and JPEG images are saved at the highest quality.
func Save(img image.Image, path string) error {
	enc, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}

	err = enc(f, img)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("screenshot: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}

	logger.Logf(logger.Allow, "screenshot", "saved: %s", path)

	return nil
}

// Capture reads the screen of the device and saves it to the path.
func Capture(dev gpu.Device, path string) error {
	rd, ok := dev.(gpu.ScreenReader)
	if !ok {
		return ErrNoScreen
	}

	img, err := rd.ReadScreen()
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}

	return Save(img, path)
}
