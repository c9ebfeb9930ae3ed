// Package filter implements the per-voice resonant low-pass filter: a
// direct-form I biquad whose coefficients follow the RBJ cookbook formula,
// matching the coefficient derivation SoundFont synthesizers commonly port
// from FluidSynth's fluid_iir_filter.
package filter

import (
	"math"

	"github.com/cbegin/sf2synth-go/internal/unitconv"
)

// cutoffOpenCents is the threshold above which the filter generator is
// considered fully open; SF2 cutoff defaults to 13500 cents (~20kHz), and
// values above 13490 are treated as "no filtering" rather than recomputing
// a coefficient set that would be numerically unstable near Nyquist.
const cutoffOpenCents = 13490

// Filter is a single voice's low-pass filter. Coefficients are cached and
// only recomputed when the cutoff or resonance generator actually changes,
// since the trig calls in calculateCoefficients are too costly to repeat
// every sample.
type Filter struct {
	a0, a1, a2, a3, a4 float64
	x1, x2             float64
	y1, y2             float64

	resonanceCentibels int
	resonanceGain      float64
	cutoffCents        int
	cutoffHz           float64
	sampleRate         float64
}

// New creates a filter for the given sample rate, initialized wide open.
func New(sampleRate float64) *Filter {
	return &Filter{
		cutoffCents:   13500,
		cutoffHz:      2000,
		resonanceGain: 1,
		sampleRate:    sampleRate,
	}
}

// Apply filters buffer in place using the given resonance (centibels) and
// cutoff (absolute cents) generator values, recomputing coefficients only
// when either has changed since the previous call.
func (f *Filter) Apply(resonanceCentibels, cutoffCents int, buffer []float64) {
	if cutoffCents > cutoffOpenCents {
		return
	}

	if f.cutoffCents != cutoffCents || f.resonanceCentibels != resonanceCentibels {
		f.cutoffCents = cutoffCents
		f.resonanceCentibels = resonanceCentibels
		f.cutoffHz = unitconv.AbsCentsToHz(cutoffCents)
		// Adjust Q the way fluid_iir_filter.h does: invert the
		// attenuation and offset by -3.01dB.
		f.resonanceGain = unitconv.DecibelAttenuationToGain(-1 * (float64(resonanceCentibels)/10.0 - 3.01))
		f.calculateCoefficients()
	}

	for i, input := range buffer {
		filtered := f.a0*input + f.a1*f.x1 + f.a2*f.x2 - f.a3*f.y1 - f.a4*f.y2

		f.x2 = f.x1
		f.x1 = input
		f.y2 = f.y1
		f.y1 = filtered

		buffer[i] = filtered
	}
}

func (f *Filter) calculateCoefficients() {
	w := 2.0 * math.Pi * f.cutoffHz / f.sampleRate
	cosw := math.Cos(w)
	alpha := math.Sin(w) / (2.0 * f.resonanceGain)

	b0 := (1 - cosw) / 2
	b1 := 1 - cosw
	b2 := (1 - cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha

	f.a0 = b0 / a0
	f.a1 = b1 / a0
	f.a2 = b2 / a0
	f.a3 = a1 / a0
	f.a4 = a2 / a0
}
