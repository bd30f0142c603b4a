// Package stats computes per-channel aggregates over decoded pixel buffers.
//
// Both analysis modes are data-parallel reductions: the sample sequence is
// split into pixel-aligned chunks handled by worker goroutines, and each
// chunk's partial sums are combined with plain addition. Because the combine
// step is associative and commutative, the result does not depend on the
// chunk boundaries or the worker count.
package stats

import (
	"runtime"
	"sync"

	"imagecleaner/pixelbuf"
)

// ChannelStats holds the per-channel mean and variance of one image.
// Channels says how many of the four slots are populated; the remaining
// slots stay zero and carry no information about the image.
type ChannelStats struct {
	Mean     [4]float64
	Variance [4]float64
	Channels int
}

type sample interface {
	~uint8 | ~uint16
}

// MeanVariance computes the per-channel mean and variance of the buffer
// using two reduction passes: one for the channel sums, a second for the
// sums of squared deviations from the already-known means. Deviations are
// accumulated in float64, so samples below their channel mean contribute
// their true squared distance.
func MeanVariance(buf *pixelbuf.PixelBuffer, workers int) ChannelStats {
	channels := buf.Layout.Channels()
	switch buf.Layout.Bits() {
	case 8:
		return meanVariance(buf.Pix8, channels, workers)
	case 16:
		return meanVariance(buf.Pix16, channels, workers)
	default:
		return ChannelStats{}
	}
}

// Quantity computes the percentage of pixels that exactly equal the target
// color on every channel of the buffer's layout. The target components must
// already be in the buffer's sample domain; for 3-channel layouts the alpha
// component is ignored.
func Quantity(buf *pixelbuf.PixelBuffer, target [4]uint16, workers int) float64 {
	channels := buf.Layout.Channels()
	switch buf.Layout.Bits() {
	case 8:
		var t [4]uint8
		for i, v := range target {
			t[i] = uint8(v)
		}
		return quantity(buf.Pix8, channels, t, workers)
	case 16:
		return quantity(buf.Pix16, channels, target, workers)
	default:
		return 0
	}
}

func meanVariance[T sample](samples []T, channels, workers int) ChannelStats {
	if channels == 0 {
		return ChannelStats{}
	}
	pixels := len(samples) / channels
	if pixels == 0 {
		return ChannelStats{Channels: channels}
	}

	stats := ChannelStats{Channels: channels}

	sums := reduceChunks(samples, channels, workers, func(chunk []T) [4]float64 {
		return chunkChannelSums(chunk, channels)
	})
	for c := 0; c < channels; c++ {
		stats.Mean[c] = sums[c] / float64(pixels)
	}

	devs := reduceChunks(samples, channels, workers, func(chunk []T) [4]float64 {
		return chunkSquaredDeviations(chunk, channels, stats.Mean)
	})
	for c := 0; c < channels; c++ {
		stats.Variance[c] = devs[c] / float64(pixels)
	}

	return stats
}

func quantity[T sample](samples []T, channels int, target [4]T, workers int) float64 {
	if channels == 0 {
		return 0
	}
	pixels := len(samples) / channels
	if pixels == 0 {
		return 0
	}

	matched := reduceChunks(samples, channels, workers, func(chunk []T) [4]float64 {
		return [4]float64{countExactMatches(chunk, channels, target)}
	})

	// Each match contributes influence = 100/pixels; summing the count first
	// keeps the all-match case at exactly 100.
	return matched[0] / float64(pixels) * 100.0
}

// reduceChunks splits the sample slice into pixel-aligned chunks, runs the
// partial reduction on each in its own goroutine, and adds the partials.
func reduceChunks[T sample](samples []T, channels, workers int, partial func([]T) [4]float64) [4]float64 {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pixels := len(samples) / channels
	if workers > pixels {
		workers = pixels
	}
	if workers <= 1 {
		return partial(samples)
	}

	chunkPixels := (pixels + workers - 1) / workers
	partials := make([][4]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkPixels * channels
		end := start + chunkPixels*channels
		if end > len(samples) {
			end = len(samples)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(w int, chunk []T) {
			defer wg.Done()
			partials[w] = partial(chunk)
		}(w, samples[start:end])
	}
	wg.Wait()

	var total [4]float64
	for _, p := range partials {
		for c := range total {
			total[c] += p[c]
		}
	}
	return total
}
