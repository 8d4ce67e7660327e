package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// ErrShortSeries is returned when a trace is too short to analyse.
var ErrShortSeries = errors.New("analysis: series too short")

// Series extracts one state variable from every recorded sample.
func Series(res *dynamo.Result, idx int) []float64 {
	out := make([]float64, 0, len(res.States))
	for _, x := range res.States {
		if idx < len(x) {
			out = append(out, x[idx])
		}
	}
	return out
}

// Spectrum holds the one-sided amplitude spectrum of a real series.
type Spectrum struct {
	Freqs     []float64 // Hz
	Amplitude []float64
}

// Resolution is the spacing between frequency bins.
func (s *Spectrum) Resolution() float64 {
	if len(s.Freqs) < 2 {
		return 0
	}
	return s.Freqs[1] - s.Freqs[0]
}

// NewSpectrum transforms data sampled every dt seconds. The mean is removed
// first so the zero bin only carries numerical residue.
func NewSpectrum(data []float64, dt float64) (*Spectrum, error) {
	n := len(data)
	if n < 4 {
		return nil, ErrShortSeries
	}
	if dt <= 0 {
		return nil, dynamo.ErrParameterBounds
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	s := &Spectrum{
		Freqs:     make([]float64, len(coeff)),
		Amplitude: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Amplitude[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return s, nil
}

// Peak returns the frequency of the largest non-zero bin, refined by a
// parabola through its neighbours.
func (s *Spectrum) Peak() float64 {
	best := 1
	for i := 2; i < len(s.Amplitude); i++ {
		if s.Amplitude[i] > s.Amplitude[best] {
			best = i
		}
	}
	if best+1 >= len(s.Amplitude) {
		return s.Freqs[best]
	}

	a, b, c := s.Amplitude[best-1], s.Amplitude[best], s.Amplitude[best+1]
	den := a - 2*b + c
	if den == 0 {
		return s.Freqs[best]
	}
	shift := 0.5 * (a - c) / den
	if math.Abs(shift) > 0.5 {
		shift = 0
	}
	return s.Freqs[best] + shift*s.Resolution()
}

// DominantFrequency is NewSpectrum followed by Peak.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	s, err := NewSpectrum(data, dt)
	if err != nil {
		return 0, err
	}
	return s.Peak(), nil
}
