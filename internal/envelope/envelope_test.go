package envelope

import (
	"math"
	"testing"

	"github.com/cbegin/sf2synth-go/internal/gen"
)

const tolerance = 1e-3

func approxEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func newGenerators() []int {
	return make([]int, gen.GeneratorsAmountTotal)
}

func TestModulationDelayIsZero(t *testing.T) {
	g := newGenerators()
	g[gen.DelayModEnv] = 1200 // 2 seconds
	m := NewModulation(g, 60, 0)
	var captured float64
	v := m.Value(0.1, false, math.Inf(1), 0, &captured)
	if v != 0 {
		t.Errorf("value during delay = %f, want 0", v)
	}
}

func TestModulationReachesSustain(t *testing.T) {
	g := newGenerators()
	g[gen.SustainModEnv] = 300 // sustain = 1 - 300/1000 = 0.7
	m := NewModulation(g, 60, 0)
	var captured float64
	v := m.Value(1000, false, math.Inf(1), 0, &captured)
	if !approxEqual(v, 0.7, tolerance) {
		t.Errorf("sustain value = %f, want 0.7", v)
	}
}

func TestModulationReleaseBelowThresholdReturnsCapturedValue(t *testing.T) {
	g := newGenerators()
	g[gen.ReleaseModEnv] = -7200 // below the instantaneous-release threshold
	m := NewModulation(g, 60, 0)
	var captured float64
	v := m.Value(5.0, true, 1.0, 0.42, &captured)
	if v != 0.42 {
		t.Errorf("instantaneous release should return captured value, got %f want 0.42", v)
	}
}

func TestModulationReleaseRampsToZero(t *testing.T) {
	g := newGenerators()
	g[gen.ReleaseModEnv] = 1200 // 2 seconds
	m := NewModulation(g, 60, 0)
	var captured float64
	// Halfway through release, value should be half the captured value.
	v := m.Value(1.0, true, 0.0, 1.0, &captured)
	if !approxEqual(v, 0.5, tolerance) {
		t.Errorf("mid-release value = %f, want ~0.5", v)
	}
}

func TestModulationPicksUpGeneratorChanges(t *testing.T) {
	g := newGenerators()
	m := NewModulation(g, 60, 0)
	var captured float64
	if got := m.Value(1000, false, math.Inf(1), 0, &captured); !approxEqual(got, 1.0, tolerance) {
		t.Fatalf("default sustain = %f, want 1.0", got)
	}

	// Rewriting the shared generator slice must be visible immediately.
	g[gen.SustainModEnv] = 1000
	if got := m.Value(1000, false, math.Inf(1), 0, &captured); !approxEqual(got, 0.0, tolerance) {
		t.Errorf("sustain after generator change = %f, want 0.0", got)
	}
}

func TestVolumeAttenuationAndSustainLevels(t *testing.T) {
	g := newGenerators()
	g[gen.InitialAttenuation] = 100 // 10 dB
	g[gen.SustainVolEnv] = 50      // +5 dB from attenuation
	v := NewVolume(g, 60, 0)
	if !approxEqual(v.AttenuationDb(), 10.0, tolerance) {
		t.Errorf("AttenuationDb() = %f, want 10.0", v.AttenuationDb())
	}
	if !approxEqual(v.SustainDb(), 15.0, tolerance) {
		t.Errorf("SustainDb() = %f, want 15.0", v.SustainDb())
	}
}

func TestVolumeApplySilentDuringDelay(t *testing.T) {
	g := newGenerators()
	g[gen.DelayVolEnv] = 1200 // 2 seconds
	v := NewVolume(g, 60, 0)
	buf := []float64{1, 1, 1, 1}
	v.Apply(buf, 0, 0.1, 0, false, math.Inf(1))
	for i, s := range buf {
		if s != 0 {
			t.Errorf("sample %d during delay = %f, want 0", i, s)
		}
	}
}

func TestVolumeApplyHoldIsFullGain(t *testing.T) {
	g := newGenerators()
	// Near-instant delay/attack, long hold, so a block sampled well after
	// note-on sits entirely in hold at 0dB.
	g[gen.DelayVolEnv] = -15000
	g[gen.AttackVolEnv] = -15000
	g[gen.HoldVolEnv] = 15000
	v := NewVolume(g, 60, 0)

	buf := []float64{1, 1, 1, 1}
	v.Apply(buf, 0.01, 0.001, 0, false, math.Inf(1))
	for i, s := range buf {
		if !approxEqual(s, 1.0, 0.01) {
			t.Errorf("sample %d during hold = %f, want ~1.0", i, s)
		}
	}
}

func TestVolumeReleaseRampsToSilence(t *testing.T) {
	g := newGenerators()
	g[gen.DelayVolEnv] = -15000
	g[gen.AttackVolEnv] = -15000
	g[gen.HoldVolEnv] = 15000
	g[gen.ReleaseVolEnv] = 1200 // 2 seconds
	v := NewVolume(g, 60, 0)

	// Warm up well past delay+attack so the phase cursor settles into hold
	// before release begins.
	warm := make([]float64, 1000)
	for i := range warm {
		warm[i] = 1
	}
	v.Apply(warm, 0, 0.0001, 0, false, math.Inf(1))

	// Sampled at releaseStartTime + release/2, the ramp from 0dB to the
	// silence floor should sit exactly halfway in dB.
	buf := []float64{1}
	v.Apply(buf, 0.1+1.0, 0.001, 0, true, 0.1)
	want := dbToGain((0 + gen.DbSilence) / 2)
	if math.Abs(buf[0]-want) > 1e-4 {
		t.Errorf("mid-release gain = %f, want %f", buf[0], want)
	}
}

func TestVolumeFastReleaseGeneratorChangeShortensTail(t *testing.T) {
	g := newGenerators()
	g[gen.DelayVolEnv] = -15000
	g[gen.AttackVolEnv] = -15000
	g[gen.HoldVolEnv] = 15000
	g[gen.ReleaseVolEnv] = 1200 // 2 seconds to start with
	v := NewVolume(g, 60, 0)

	warm := make([]float64, 100)
	for i := range warm {
		warm[i] = 1
	}
	v.Apply(warm, 0, 0.0001, 0, false, math.Inf(1))

	// Pin the release generator to the choke value mid-release; 50ms after
	// release start the ~10ms ramp must already have hit the floor.
	g[gen.ReleaseVolEnv] = -7900
	buf := []float64{1}
	silent := v.Apply(buf, 0.1+0.05, 0.001, 0, true, 0.1)
	if !silent {
		t.Errorf("choked release should reach silence within 50ms")
	}
}

func dbToGain(db float64) float64 {
	return math.Pow(10, -db/20)
}
