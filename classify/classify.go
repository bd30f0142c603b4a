// Package classify applies the threshold policy that turns per-image
// statistics into a keep/delete verdict.
package classify

import (
	"math"

	"imagecleaner/pixelbuf"
	"imagecleaner/stats"
	"imagecleaner/types"
)

// Mode selects which analysis runs over each decoded image.
type Mode int

const (
	// ModeTargetColors flags images mostly covered by one of a fixed
	// palette of known-bad colors. One reduction pass per target.
	ModeTargetColors Mode = iota
	// ModeVariance flags images whose every channel is statistically flat,
	// regardless of the color. Two reduction passes.
	ModeVariance
)

// DefaultVarianceThreshold is the variance below which a channel counts as
// flat, in the squared-sample-difference domain.
const DefaultVarianceThreshold = 20.0

// DefaultQuantity is the coverage percentage a target color must exceed.
const DefaultQuantity = 80.0

// TargetColor is an 8-bit RGB palette entry with its coverage threshold.
// For 16-bit layouts the components are widened with the fixed component*2
// policy and a full-scale alpha; this is a constant approximation, not a
// true 8-to-16-bit rescale.
type TargetColor struct {
	R, G, B  uint8
	Quantity float64
}

// Config carries the classification policy for one scan.
type Config struct {
	Mode              Mode
	VarianceThreshold float64
	Targets           []TargetColor
	// Workers bounds the reduction parallelism inside a single image;
	// zero means one worker per CPU.
	Workers int
}

// DefaultTargets returns the stock palette: fully black, white, red, green
// and blue images are invalid data by definition.
func DefaultTargets() []TargetColor {
	return []TargetColor{
		{R: 0, G: 0, B: 0, Quantity: DefaultQuantity},
		{R: 255, G: 255, B: 255, Quantity: DefaultQuantity},
		{R: 255, G: 0, B: 0, Quantity: DefaultQuantity},
		{R: 0, G: 255, B: 0, Quantity: DefaultQuantity},
		{R: 0, G: 0, B: 255, Quantity: DefaultQuantity},
	}
}

// DefaultConfig returns the documented default policy: target-color mode
// with the stock palette.
func DefaultConfig() Config {
	return Config{
		Mode:              ModeTargetColors,
		VarianceThreshold: DefaultVarianceThreshold,
		Targets:           DefaultTargets(),
	}
}

// DecodeFailure is the verdict for a file that could not be decoded at all.
// An unreadable file cannot be a valid sample, so it is flagged.
func DecodeFailure() types.Verdict {
	return types.Verdict{Delete: true, Reason: types.ReasonDecodeFailure}
}

// UnsupportedLayout is the verdict for an image whose channel layout is not
// recognized. Uncertain data is discarded rather than kept.
func UnsupportedLayout() types.Verdict {
	return types.Verdict{Delete: true, Reason: types.ReasonUnsupportedLayout}
}

// Classify runs the configured analysis over a decoded pixel buffer.
//
// BGR-family layouts are kept unconditionally: their channel order is not
// normalized to RGB, so neither policy can read them correctly. This is a
// documented limitation, not a statement that such images are good.
func Classify(buf *pixelbuf.PixelBuffer, cfg Config) types.Verdict {
	switch buf.Layout {
	case pixelbuf.Unsupported:
		return UnsupportedLayout()
	case pixelbuf.BGR8, pixelbuf.BGRA8:
		return types.Verdict{}
	}

	if cfg.Mode == ModeVariance {
		return classifyVariance(buf, cfg)
	}
	return classifyTargets(buf, cfg)
}

func classifyVariance(buf *pixelbuf.PixelBuffer, cfg Config) types.Verdict {
	cs := stats.MeanVariance(buf, cfg.Workers)

	maxVariance := 0.0
	for c := 0; c < cs.Channels; c++ {
		maxVariance = math.Max(maxVariance, cs.Variance[c])
	}

	if maxVariance < cfg.VarianceThreshold {
		return types.Verdict{Delete: true, Reason: types.ReasonSolidColor, Measured: maxVariance}
	}
	return types.Verdict{Measured: maxVariance}
}

func classifyTargets(buf *pixelbuf.PixelBuffer, cfg Config) types.Verdict {
	best := 0.0
	for _, target := range cfg.Targets {
		q := stats.Quantity(buf, widenTarget(target, buf.Layout), cfg.Workers)
		if q > target.Quantity {
			return types.Verdict{Delete: true, Reason: types.ReasonTargetColorMatch, Measured: q}
		}
		best = math.Max(best, q)
	}
	return types.Verdict{Measured: best}
}

// widenTarget maps an 8-bit palette entry into the buffer's sample domain.
// The default alpha is full opacity in either domain.
func widenTarget(t TargetColor, layout pixelbuf.Layout) [4]uint16 {
	if layout.Bits() == 16 {
		return [4]uint16{uint16(t.R) * 2, uint16(t.G) * 2, uint16(t.B) * 2, math.MaxUint16}
	}
	return [4]uint16{uint16(t.R), uint16(t.G), uint16(t.B), math.MaxUint8}
}
