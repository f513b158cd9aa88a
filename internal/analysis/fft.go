package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// series after removing its mean and applying a Hann window.
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	buf := make([]complex128, n)
	for i, v := range series {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] = complex((v-mean)*window, 0)
	}
	spectrum := fft.FFT(buf)

	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period, in frames, of the strongest non-DC
// component of series sampled every sampleEvery frames. It returns 0 when
// the series is too short or flat.
func DominantPeriod(series []float64, sampleEvery int) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 {
		return 0
	}
	if sampleEvery < 1 {
		sampleEvery = 1
	}

	best, bestPow := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPow {
			best, bestPow = k, ps[k]
		}
	}
	if best == 0 || bestPow < 1e-12 {
		return 0
	}
	return float64(len(series)) / float64(best) * float64(sampleEvery)
}
