package analysis

import (
	"errors"
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooFewSamples = errors.New("analysis: need at least 4 samples")

// FFT is the discrete Fourier transform of data. Any length is accepted.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum removes the mean, pads data with zeros to a power of two and
// returns the magnitudes of the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	n := 1 << bits.Len(uint(len(data)-1))
	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	bins := FFT(padded)
	ps := make([]float64, max(n/2, 1))
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest bin of
// samples taken dt apart. A constant signal reports 0.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if len(samples) < 4 {
		return 0, ErrTooFewSamples
	}
	if dt <= 0 {
		return 0, errors.New("analysis: sample spacing must be positive")
	}
	ps := PowerSpectrum(samples)
	best := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt), nil
}
