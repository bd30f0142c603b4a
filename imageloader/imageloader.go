// Package imageloader decodes image files into pixel buffers.
//
// Decoding is pure Go: the stdlib codecs cover jpeg/png/gif and
// golang.org/x/image supplies bmp, tiff and webp. Every decoder registers
// itself with image.Decode, so Load works from content sniffing rather than
// the file extension.
package imageloader

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imagecleaner/pixelbuf"
)

// ErrDecodeFailed wraps any open or decode error for a candidate file.
var ErrDecodeFailed = errors.New("cannot decode image")

var knownExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// HasImageExtension reports whether the path carries a registered image
// extension. Used only for startup accounting; the scanner classifies every
// regular file regardless of its name.
func HasImageExtension(path string) bool {
	return knownExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load decodes the file at path and adapts it into a pixel buffer.
//
// A file that cannot be opened or decoded fails with ErrDecodeFailed; a
// decodable image with an unrecognized channel layout fails with
// pixelbuf.ErrUnsupportedLayout. Callers distinguish the two with errors.Is.
func Load(path string) (*pixelbuf.PixelBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}

	buf, err := pixelbuf.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}
