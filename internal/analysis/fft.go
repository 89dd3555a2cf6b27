package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: need at least 4 samples")

// PowerSpectrum returns the magnitude of the positive-frequency half of the
// spectrum. The mean is removed first so bin 0 carries no offset.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spec := fft.FFTReal(centred)
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin for samples spaced dt seconds apart, and its magnitude.
func DominantFrequency(data []float64, dt float64) (float64, float64, error) {
	if len(data) < 4 {
		return 0, 0, ErrTooShort
	}
	if !(dt > 0) {
		return 0, 0, errors.New("analysis: sample spacing must be positive")
	}

	ps := PowerSpectrum(data)
	best, peak := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			best, peak = i, ps[i]
		}
	}
	if best == 0 {
		return 0, 0, nil
	}
	return float64(best) / (float64(len(data)) * dt), peak, nil
}

// RMS is the root mean square of data about its mean.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	sum := 0.0
	for _, v := range data {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(data)))
}
