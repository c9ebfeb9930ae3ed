package filter

import (
	"math"
	"testing"
)

func TestApplyWideOpenIsNoOp(t *testing.T) {
	f := New(44100)
	buf := []float64{0.5, -0.3, 0.8}
	want := append([]float64{}, buf...)

	f.Apply(0, 13500, buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("wide-open filter modified sample %d: got %f, want %f", i, buf[i], want[i])
		}
	}
}

func TestApplyAttenuatesHighFrequencyImpulse(t *testing.T) {
	f := New(44100)
	buf := make([]float64, 256)
	buf[0] = 1.0 // impulse: broadband energy

	f.Apply(0, 6000, buf) // a low cutoff, well below Nyquist

	// A low-pass filter should not blow up; output magnitude should
	// stay bounded.
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 10 {
			t.Fatalf("filtered sample %d unstable: %f", i, v)
		}
	}
	// The impulse's first output sample is the direct-path gain, far below
	// 1 at a cutoff of ~262 Hz.
	if math.Abs(buf[0]) >= 0.01 {
		t.Errorf("filtered impulse onset = %f, want it attenuated below 0.01", buf[0])
	}
}

func TestApplyCachesCoefficientsUntilParamsChange(t *testing.T) {
	f := New(44100)
	buf1 := make([]float64, 4)
	f.Apply(0, 6000, buf1)
	a0First := f.a0

	buf2 := make([]float64, 4)
	f.Apply(0, 6000, buf2)
	if f.a0 != a0First {
		t.Errorf("coefficients should not change when params are unchanged")
	}

	buf3 := make([]float64, 4)
	f.Apply(0, 4000, buf3)
	if f.a0 == a0First {
		t.Errorf("coefficients should be recalculated when cutoff changes")
	}
}
