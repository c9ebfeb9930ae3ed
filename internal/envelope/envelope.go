// Package envelope implements the two SF2 DAHDSR envelopes a voice runs:
// the modulation envelope (a 0..1 value feeding pitch/filter modulation)
// and the volume envelope (an attenuation in dB feeding per-sample gain).
// Both share the delay/attack/hold/decay/sustain/release phase structure
// and SoundFont timecent timing, but differ enough in their release-phase
// behavior and per-sample application that they are kept as separate types
// rather than one generic envelope.
//
// Both envelopes re-derive their phase timing from the voice's modulated
// generator array on every call. A controller change that retargets an
// envelope generator mid-note (CC72 release time, an exclusive-class choke
// pinning releaseVolEnv) must take effect on the very next block, so
// nothing here is cached beyond the volume envelope's phase cursor.
package envelope

import (
	"math"

	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/unitconv"
)

// modEnvAttackCurve is the convex attack-shape lookup used by the
// modulation envelope, built once from the same FluidSynth-derived formula
// as the modulator transform tables (see internal/modulator), just sampled
// over 1000 points instead of 16384.
var modEnvAttackCurve = buildModEnvAttackCurve()

func buildModEnvAttackCurve() [gen.ModulationEnvelopeConvexLength + 1]float64 {
	var table [gen.ModulationEnvelopeConvexLength + 1]float64
	n := float64(gen.ModulationEnvelopeConvexLength)
	table[0] = 0
	table[gen.ModulationEnvelopeConvexLength] = 1
	for i := 1; i < gen.ModulationEnvelopeConvexLength; i++ {
		x := -200.0 * 2.0 / 960.0 * math.Log(float64(i)/n) / math.Ln10
		table[i] = 1 - x
	}
	return table
}

func lookupModEnvAttack(fraction float64) float64 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 1
	}
	return modEnvAttackCurve[int(fraction*gen.ModulationEnvelopeConvexLength)]
}

// Modulation is the 0..1 DAHDSR envelope that drives pitch and filter
// modulation depths. It is stateless apart from the generator view: the
// value at any instant is a function of the current generators and the
// render clock, with release continuing from whatever value the caller
// captured when the voice released.
type Modulation struct {
	g         []int
	midiNote  int
	startTime float64
}

// NewModulation builds a modulation envelope over the voice's live
// modulated-generator array. The slice is retained, not copied, so later
// modulator recomputation is picked up automatically.
func NewModulation(g []int, midiNote int, startTime float64) *Modulation {
	return &Modulation{g: g, midiNote: midiNote, startTime: startTime}
}

// Value returns the envelope's value at time t, writing the result into
// *currentValue when not in release so a later release phase can capture
// it. The key-tracking terms for hold and decay are added in timecents
// before conversion to seconds, keeping the units consistent.
func (m *Modulation) Value(t float64, isInRelease bool, releaseStartTime, releaseStartValue float64, currentValue *float64) float64 {
	if isInRelease {
		// A release shorter than ~16ms is treated as instantaneous: hold
		// the captured value and let the volume envelope do the fade.
		if m.g[gen.ReleaseModEnv] < -7199 {
			return releaseStartValue
		}
		release := unitconv.TimecentsToSeconds(m.g[gen.ReleaseModEnv])
		elapsed := t - releaseStartTime
		if elapsed >= release {
			return 0
		}
		return (1 - elapsed/release) * releaseStartValue
	}

	attack := unitconv.TimecentsToSeconds(m.g[gen.AttackModEnv])
	hold := unitconv.TimecentsToSeconds(m.g[gen.HoldModEnv] + (60-m.midiNote)*m.g[gen.KeyNumToModEnvHold])
	decay := unitconv.TimecentsToSeconds(m.g[gen.DecayModEnv] + (60-m.midiNote)*m.g[gen.KeyNumToModEnvDecay])
	sustain := 1.0 - float64(m.g[gen.SustainModEnv])/1000.0

	delayEnd := m.startTime + unitconv.TimecentsToSeconds(m.g[gen.DelayModEnv])
	attackEnd := delayEnd + attack
	holdEnd := attackEnd + hold
	decayEnd := holdEnd + decay

	var value float64
	switch {
	case t < delayEnd:
		value = 0
	case t < attackEnd:
		value = lookupModEnvAttack(1 - (attackEnd-t)/attack)
	case t < holdEnd:
		value = gen.ModulationEnvelopePeak
	case t < decayEnd:
		elapsed := 1 - (decayEnd-t)/decay
		value = gen.ModulationEnvelopePeak + elapsed*(sustain-gen.ModulationEnvelopePeak)
	default:
		value = sustain
	}
	*currentValue = value
	return value
}

// volumeState names the phase of a Volume envelope's cursor. Release is not
// a state here: the voice's isInRelease flag selects the release branch,
// and the pre-release state is what the release ramp's starting level is
// derived from.
type volumeState int

const (
	stateDelay volumeState = iota
	stateAttack
	stateHold
	stateDecay
	stateSustain
)

// Volume is the attenuation-in-dB DAHDSR envelope that drives a voice's
// per-sample gain. Unlike Modulation it steps per sample within Apply so a
// phase boundary crossed mid-block takes effect at exactly the right
// sample instead of waiting for the next block.
type Volume struct {
	g         []int
	midiNote  int
	startTime float64

	state volumeState
}

// volumeTiming is the per-call snapshot of everything the generator array
// implies about the envelope's shape.
type volumeTiming struct {
	delayEnd  float64
	attackEnd float64
	holdEnd   float64
	decayEnd  float64
	attack    float64
	decay     float64
	release   float64

	attenuationDb float64
	sustainDb     float64
}

// NewVolume builds a volume envelope over the voice's live
// modulated-generator array. The slice is retained, not copied.
func NewVolume(g []int, midiNote int, startTime float64) *Volume {
	return &Volume{g: g, midiNote: midiNote, startTime: startTime}
}

func (v *Volume) timing() volumeTiming {
	attack := unitconv.TimecentsToSeconds(v.g[gen.AttackVolEnv])
	hold := unitconv.TimecentsToSeconds(v.g[gen.HoldVolEnv] + (60-v.midiNote)*v.g[gen.KeyNumToVolEnvHold])
	decay := unitconv.TimecentsToSeconds(v.g[gen.DecayVolEnv] + (60-v.midiNote)*v.g[gen.KeyNumToVolEnvDecay])

	attenuation := float64(v.g[gen.InitialAttenuation]) / 10.0

	delayEnd := v.startTime + unitconv.TimecentsToSeconds(v.g[gen.DelayVolEnv])
	attackEnd := delayEnd + attack
	holdEnd := attackEnd + hold

	return volumeTiming{
		delayEnd:      delayEnd,
		attackEnd:     attackEnd,
		holdEnd:       holdEnd,
		decayEnd:      holdEnd + decay,
		attack:        attack,
		decay:         decay,
		release:       unitconv.TimecentsToSeconds(v.g[gen.ReleaseVolEnv]),
		attenuationDb: attenuation,
		sustainDb:     attenuation + float64(v.g[gen.SustainVolEnv])/10.0,
	}
}

// AttenuationDb and SustainDb expose the current static levels (in dB of
// attenuation, larger = quieter) for callers that need a release starting
// point or a debug readout.
func (v *Volume) AttenuationDb() float64 { return float64(v.g[gen.InitialAttenuation]) / 10.0 }
func (v *Volume) SustainDb() float64 {
	return v.AttenuationDb() + float64(v.g[gen.SustainVolEnv])/10.0
}

// releaseStartDb derives the attenuation the envelope had reached when the
// voice released, from the phase its cursor sat in at that moment. It is
// recomputed every release block rather than captured once: the underlying
// generators can still change during release (volume pulled to zero should
// cut the tail short).
func (v *Volume) releaseStartDb(tm volumeTiming, releaseStartTime, decibelOffset float64) float64 {
	switch v.state {
	case stateDelay, stateHold:
		return tm.attenuationDb
	case stateAttack:
		// Attack ramps linearly in gain, so invert the ramp to get dB.
		elapsed := 1 - (tm.attackEnd-releaseStartTime)/tm.attack
		attackGain := elapsed * unitconv.DecibelAttenuationToGain(tm.attenuationDb+decibelOffset)
		if attackGain <= 0 {
			return gen.DbSilence
		}
		return -20 * math.Log10(attackGain)
	case stateDecay:
		return (1-(tm.decayEnd-releaseStartTime)/tm.decay)*(tm.sustainDb-tm.attenuationDb) + tm.attenuationDb
	default:
		return tm.sustainDb
	}
}

// Apply multiplies buffer in place by the envelope's linear gain.
// centibelOffset (from the modulation LFO routed to volume) shifts every
// phase uniformly. t is the render time of buffer[0]; sampleTime is
// 1/sampleRate. The returned flag reports whether the block ended at or
// below the audible-gain floor; it is only meaningful while releasing.
func (v *Volume) Apply(buffer []float64, t, sampleTime, centibelOffset float64, isInRelease bool, releaseStartTime float64) (silent bool) {
	tm := v.timing()
	decibelOffset := centibelOffset / 10.0

	if isInRelease {
		startDb := v.releaseStartDb(tm, releaseStartTime, decibelOffset)
		dbDifference := gen.DbSilence - startDb
		elapsed := t - releaseStartTime
		gain := 0.0
		for i := range buffer {
			db := startDb + (elapsed/tm.release)*dbDifference
			if db > gen.DbSilence {
				db = gen.DbSilence
			}
			gain = unitconv.DecibelAttenuationToGain(db + decibelOffset)
			buffer[i] *= gain
			elapsed += sampleTime
		}
		return gain <= gen.GainSilence
	}

	for i := range buffer {
		v.advance(t, tm)

		var db float64
		switch v.state {
		case stateDelay:
			buffer[i] = 0
			t += sampleTime
			continue
		case stateAttack:
			// Linear ramp in gain, not dB.
			elapsed := 1 - (tm.attackEnd-t)/tm.attack
			buffer[i] *= elapsed * unitconv.DecibelAttenuationToGain(tm.attenuationDb+decibelOffset)
			t += sampleTime
			continue
		case stateHold:
			db = tm.attenuationDb
		case stateDecay:
			elapsed := 1 - (tm.decayEnd-t)/tm.decay
			db = tm.attenuationDb + elapsed*(tm.sustainDb-tm.attenuationDb)
		default:
			db = tm.sustainDb
		}

		buffer[i] *= unitconv.DecibelAttenuationToGain(db + decibelOffset)
		t += sampleTime
	}
	return false
}

// advance moves the phase cursor forward across every boundary t has
// passed, so a single sample can cross several zero-length phases at once.
func (v *Volume) advance(t float64, tm volumeTiming) {
	for {
		switch v.state {
		case stateDelay:
			if t < tm.delayEnd {
				return
			}
		case stateAttack:
			if t < tm.attackEnd {
				return
			}
		case stateHold:
			if t < tm.holdEnd {
				return
			}
		case stateDecay:
			if t < tm.decayEnd {
				return
			}
		default:
			return
		}
		v.state++
	}
}
