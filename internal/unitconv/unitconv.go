// Package unitconv converts the raw integer units SF2 generators are
// expressed in (timecents, absolute cents, centibels) into the
// seconds/hertz/gain values the render path actually needs. The timecent
// and absolute-cent conversions are precomputed into lookup tables once and
// indexed thereafter; decibel-to-gain is computed directly with math.Pow.
package unitconv

import (
	"math"
	"sync"

	"github.com/cbegin/sf2synth-go/internal/gen"
)

var (
	initOnce          sync.Once
	timecentTable     [gen.MaxTimecent - gen.MinTimecent + 1]float64
	absoluteCentTable [gen.MaxAbsCent - gen.MinAbsCent + 1]float64
)

func initTables() {
	for i := range timecentTable {
		timecents := i + gen.MinTimecent
		timecentTable[i] = math.Pow(2.0, float64(timecents)/1200.0)
	}
	for i := range absoluteCentTable {
		absoluteCents := i + gen.MinAbsCent
		absoluteCentTable[i] = 440.0 * math.Pow(2.0, (float64(absoluteCents)-6900.0)/1200.0)
	}
}

// ensureTables lazily builds the lookup tables on first use. A package-level
// init() would also work, but Once keeps construction explicit and testable.
func ensureTables() {
	initOnce.Do(initTables)
}

// TimecentsToSeconds converts a timecent value to seconds, clamping to the
// table's supported range rather than panicking on out-of-domain generators.
func TimecentsToSeconds(timecents int) float64 {
	ensureTables()
	timecents = clamp(timecents, gen.MinTimecent, gen.MaxTimecent)
	return timecentTable[timecents-gen.MinTimecent]
}

// AbsCentsToHz converts an absolute-cent value (e.g. initialFilterFc,
// freqVibLFO) to hertz.
func AbsCentsToHz(absoluteCents int) float64 {
	ensureTables()
	absoluteCents = clamp(absoluteCents, gen.MinAbsCent, gen.MaxAbsCent)
	return absoluteCentTable[absoluteCents-gen.MinAbsCent]
}

// DecibelAttenuationToGain converts decibels of attenuation (not gain in
// dB — larger means quieter) to a linear amplitude multiplier.
func DecibelAttenuationToGain(decibels float64) float64 {
	return math.Pow(10.0, -decibels/20.0)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
