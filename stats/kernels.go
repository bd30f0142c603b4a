package stats

import "github.com/ajroetker/go-highway/hwy"

// The inner loops below run over one worker's chunk. Interleaved samples are
// deinterleaved one channel at a time into a float64 scratch slice so the
// hwy reductions operate on contiguous data; tails shorter than a vector are
// handled with scalar loops.

// chunkChannelSums returns the per-channel sample sums of a pixel-aligned
// chunk.
func chunkChannelSums[T sample](chunk []T, channels int) [4]float64 {
	var sums [4]float64
	pixels := len(chunk) / channels
	scratch := make([]float64, pixels)

	for c := 0; c < channels; c++ {
		for i := 0; i < pixels; i++ {
			scratch[i] = float64(chunk[i*channels+c])
		}
		sums[c] = vecSum(scratch)
	}
	return sums
}

// chunkSquaredDeviations returns the per-channel sums of squared deviations
// from the supplied means.
func chunkSquaredDeviations[T sample](chunk []T, channels int, mean [4]float64) [4]float64 {
	var sums [4]float64
	pixels := len(chunk) / channels
	scratch := make([]float64, pixels)

	for c := 0; c < channels; c++ {
		for i := 0; i < pixels; i++ {
			scratch[i] = float64(chunk[i*channels+c])
		}
		sums[c] = vecSquaredDeviation(scratch, mean[c])
	}
	return sums
}

// countExactMatches counts the pixels of a chunk whose channels all equal
// the target exactly. The alpha difference is taken from the alpha channel
// itself.
func countExactMatches[T sample](chunk []T, channels int, target [4]T) float64 {
	pixels := len(chunk) / channels
	matched := 0

	for i := 0; i < pixels; i++ {
		base := i * channels
		hit := true
		for c := 0; c < channels; c++ {
			if chunk[base+c] != target[c] {
				hit = false
				break
			}
		}
		if hit {
			matched++
		}
	}
	return float64(matched)
}

func vecSum(x []float64) float64 {
	var total float64
	hwy.ProcessWithTail[float64](len(x),
		func(offset int) {
			total += hwy.ReduceSum(hwy.Load(x[offset:]))
		},
		func(offset, count int) {
			for i := offset; i < offset+count; i++ {
				total += x[i]
			}
		},
	)
	return total
}

func vecSquaredDeviation(x []float64, mean float64) float64 {
	m := hwy.Set(mean)
	var total float64
	hwy.ProcessWithTail[float64](len(x),
		func(offset int) {
			d := hwy.Sub(hwy.Load(x[offset:]), m)
			total += hwy.ReduceSum(hwy.Mul(d, d))
		},
		func(offset, count int) {
			for i := offset; i < offset+count; i++ {
				d := x[i] - mean
				total += d * d
			}
		},
	)
	return total
}
