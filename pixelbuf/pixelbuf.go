package pixelbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrUnsupportedLayout is returned when a decoded image uses a channel
// layout the classifier does not recognize (palette, grayscale, CMYK, ...).
var ErrUnsupportedLayout = errors.New("unsupported channel layout")

// Layout identifies the channel ordering and sample width of decoded image
// data. BGR8 and BGRA8 are recognized but their channel order is left
// unnormalized; consumers must treat them accordingly.
type Layout int

const (
	Unsupported Layout = iota
	RGB8
	RGBA8
	RGB16
	RGBA16
	BGR8
	BGRA8
)

// String returns the layout name as stored in report rows.
func (l Layout) String() string {
	switch l {
	case RGB8:
		return "rgb8"
	case RGBA8:
		return "rgba8"
	case RGB16:
		return "rgb16"
	case RGBA16:
		return "rgba16"
	case BGR8:
		return "bgr8"
	case BGRA8:
		return "bgra8"
	default:
		return "unsupported"
	}
}

// Channels returns the number of samples per pixel, or 0 for Unsupported.
func (l Layout) Channels() int {
	switch l {
	case RGB8, RGB16, BGR8:
		return 3
	case RGBA8, RGBA16, BGRA8:
		return 4
	default:
		return 0
	}
}

// Bits returns the sample width in bits, or 0 for Unsupported.
func (l Layout) Bits() int {
	switch l {
	case RGB8, RGBA8, BGR8, BGRA8:
		return 8
	case RGB16, RGBA16:
		return 16
	default:
		return 0
	}
}

// HasAlpha reports whether the layout carries an alpha channel.
func (l Layout) HasAlpha() bool {
	return l == RGBA8 || l == RGBA16 || l == BGRA8
}

// PixelBuffer is a read-only flat view over decoded image samples. Exactly
// one of Pix8 or Pix16 is populated, matching the layout's sample width, and
// its length is always Width*Height*Channels.
type PixelBuffer struct {
	Width  int
	Height int
	Layout Layout
	Pix8   []uint8
	Pix16  []uint16
}

// Pixels returns the pixel count of the buffer.
func (b *PixelBuffer) Pixels() int {
	return b.Width * b.Height
}

// New builds a pixel buffer from raw samples, validating that the sample
// count matches the declared layout and dimensions.
func New(width, height int, layout Layout, pix8 []uint8, pix16 []uint16) (*PixelBuffer, error) {
	channels := layout.Channels()
	if channels == 0 {
		return nil, ErrUnsupportedLayout
	}

	want := width * height * channels
	switch layout.Bits() {
	case 8:
		if len(pix8) != want || pix16 != nil {
			return nil, fmt.Errorf("layout %s expects %d 8-bit samples, got %d", layout, want, len(pix8))
		}
	case 16:
		if len(pix16) != want || pix8 != nil {
			return nil, fmt.Errorf("layout %s expects %d 16-bit samples, got %d", layout, want, len(pix16))
		}
	}

	return &PixelBuffer{Width: width, Height: height, Layout: layout, Pix8: pix8, Pix16: pix16}, nil
}

// FromImage adapts a decoded image into a pixel buffer.
//
// The mapping over concrete image types is a closed set: RGBA/NRGBA become
// RGBA8, RGBA64/NRGBA64 become RGBA16, and YCbCr (the JPEG native layout)
// is converted to RGB8. Everything else, including paletted GIF frames and
// grayscale images, fails with ErrUnsupportedLayout.
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.NRGBA:
		return &PixelBuffer{Width: width, Height: height, Layout: RGBA8, Pix8: packRows(src.Pix, src.Stride, width*4, height)}, nil
	case *image.RGBA:
		return &PixelBuffer{Width: width, Height: height, Layout: RGBA8, Pix8: packRows(src.Pix, src.Stride, width*4, height)}, nil
	case *image.NRGBA64:
		return &PixelBuffer{Width: width, Height: height, Layout: RGBA16, Pix16: packRows16(src.Pix, src.Stride, width*4, height)}, nil
	case *image.RGBA64:
		return &PixelBuffer{Width: width, Height: height, Layout: RGBA16, Pix16: packRows16(src.Pix, src.Stride, width*4, height)}, nil
	case *image.YCbCr:
		return fromYCbCr(src, width, height), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedLayout, img)
	}
}

// packRows copies the visible samples of each row, dropping the stride
// padding so the result is exactly rowLen*height samples long.
func packRows(pix []uint8, stride, rowLen, height int) []uint8 {
	out := make([]uint8, 0, rowLen*height)
	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+rowLen]
		out = append(out, row...)
	}
	return out
}

// packRows16 is packRows for big-endian 16-bit sample pairs. rowLen counts
// 16-bit samples, not bytes.
func packRows16(pix []uint8, stride, rowLen, height int) []uint16 {
	out := make([]uint16, 0, rowLen*height)
	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+rowLen*2]
		for i := 0; i < len(row); i += 2 {
			out = append(out, uint16(row[i])<<8|uint16(row[i+1]))
		}
	}
	return out
}

func fromYCbCr(src *image.YCbCr, width, height int) *PixelBuffer {
	pix := make([]uint8, 0, width*height*3)
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			yi := src.YOffset(x, y)
			ci := src.COffset(x, y)
			r, g, b := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
			pix = append(pix, r, g, b)
		}
	}
	return &PixelBuffer{Width: width, Height: height, Layout: RGB8, Pix8: pix}
}
