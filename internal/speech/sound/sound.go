// Package sound has small PCM helpers shared by the dictation pipeline.
package sound

import "math"

// CalculateRMS16 calculates the root-mean-square of the audio buffer for int16 samples.
func CalculateRMS16(buffer []int16) float64 {
	if len(buffer) == 0 {
		return 0
	}
	var sumSquares float64
	for _, sample := range buffer {
		val := float64(sample)
		sumSquares += val * val
	}
	return math.Sqrt(sumSquares / float64(len(buffer)))
}

func ConvertInt16ToInt(in []int16) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// NormalizeInt scales samples of the given bit depth into [-1, 1).
func NormalizeInt(in []int, bitDepth int) []float32 {
	scale := float32(int(1) << (bitDepth - 1))
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v) / scale
	}
	return out
}

// ResampleInt16 converts in from one sample rate to another by linear
// interpolation. The result is a new slice even when the rates match.
func ResampleInt16(in []int16, fromRate, toRate int) []int16 {
	if fromRate <= 0 || toRate <= 0 || len(in) == 0 {
		return nil
	}
	if fromRate == toRate {
		out := make([]int16, len(in))
		copy(out, in)
		return out
	}

	n := int(int64(len(in)) * int64(toRate) / int64(fromRate))
	out := make([]int16, n)
	step := float64(fromRate) / float64(toRate)
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := pos - float64(j)
		v := float64(in[j])*(1-frac) + float64(in[j+1])*frac
		out[i] = int16(math.Round(v))
	}
	return out
}
