package unitconv

import (
	"math"
	"testing"
)

const tolerance = 1e-4

func approxEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestTimecentsToSecondsZero(t *testing.T) {
	got := TimecentsToSeconds(0)
	if !approxEqual(got, 1.0, tolerance) {
		t.Errorf("TimecentsToSeconds(0) = %f, want 1.0", got)
	}
}

func TestTimecentsToSecondsOctave(t *testing.T) {
	// 1200 timecents is exactly one doubling.
	got := TimecentsToSeconds(1200)
	if !approxEqual(got, 2.0, tolerance) {
		t.Errorf("TimecentsToSeconds(1200) = %f, want 2.0", got)
	}
}

func TestTimecentsToSecondsClampsOutOfRange(t *testing.T) {
	got := TimecentsToSeconds(999999)
	want := TimecentsToSeconds(15000)
	if got != want {
		t.Errorf("out-of-range timecents should clamp to the table max, got %f want %f", got, want)
	}
}

func TestAbsCentsToHzConcertPitch(t *testing.T) {
	// 6900 absolute cents is defined as 440 Hz.
	got := AbsCentsToHz(6900)
	if !approxEqual(got, 440.0, tolerance) {
		t.Errorf("AbsCentsToHz(6900) = %f, want 440.0", got)
	}
}

func TestDecibelAttenuationToGain(t *testing.T) {
	cases := []struct {
		db   float64
		gain float64
	}{
		{0, 1.0},
		{20, 0.1},
		{-20, 10.0},
	}
	for _, c := range cases {
		got := DecibelAttenuationToGain(c.db)
		if !approxEqual(got, c.gain, tolerance) {
			t.Errorf("DecibelAttenuationToGain(%f) = %f, want %f", c.db, got, c.gain)
		}
	}
}
