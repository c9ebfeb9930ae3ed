// Package voice implements a single sounding note: the tuning math, and the
// orchestration of the oscillator, filter, envelopes and panner into one
// block of stereo output. A Voice is owned by exactly one channel for its
// entire lifetime, from note-on to being reaped after it reports Finished.
package voice

import (
	"math"

	"github.com/cbegin/sf2synth-go/internal/envelope"
	"github.com/cbegin/sf2synth-go/internal/filter"
	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/lfo"
	"github.com/cbegin/sf2synth-go/internal/modulator"
	"github.com/cbegin/sf2synth-go/internal/pan"
	"github.com/cbegin/sf2synth-go/internal/sampledump"
	"github.com/cbegin/sf2synth-go/internal/unitconv"
	"github.com/cbegin/sf2synth-go/internal/wavetable"
)

// CreateParams bundles the control-surface inputs for building a new voice:
// where the note came from, which stored sample it plays and how, and the
// composed generator/modulator set the host resolved for it.
type CreateParams struct {
	MidiNote     int
	Velocity     int
	TargetKey    int
	RootKey      int
	Now          float64
	SampleID     int
	PlaybackRate float64
	LoopStart    int
	LoopEnd      int
	SampleStart  int
	SampleEnd    int
	LoopingMode  wavetable.LoopingMode
	Generators   [gen.GeneratorsAmountTotal]int
	Modulators   []modulator.Spec
}

// Voice is one active note. Rendering mutates internal oscillator cursor,
// filter history, and envelope state in place; nothing here allocates once
// the voice has been constructed.
type Voice struct {
	sample *wavetable.VoiceSample
	filter *filter.Filter

	modulators          []modulator.Spec
	generators          [gen.GeneratorsAmountTotal]int
	modulatedGenerators [gen.GeneratorsAmountTotal]int

	midiNote  int
	velocity  int
	targetKey int
	rootKey   int

	startTime        float64
	releaseStartTime float64
	isInRelease      bool

	modEnv *envelope.Modulation
	volEnv *envelope.Volume

	currentModEnvValue float64
	releaseStartModEnv float64

	lastTuningFinalCents float64
	tuningRatio          float64

	finished bool

	scratch    []float64
	sampleRate float64
}

// New constructs a voice ready to render starting at p.Now. maxBlockLength
// sizes the preallocated mono scratch buffer, the one per-voice allocation;
// rendering itself never touches the heap.
func New(p CreateParams, maxBlockLength int, sampleRate float64) *Voice {
	v := &Voice{
		sample: &wavetable.VoiceSample{
			SampleID:     p.SampleID,
			PlaybackRate: p.PlaybackRate,
			Cursor:       float64(p.SampleStart),
			RootKey:      p.RootKey,
			LoopStart:    p.LoopStart,
			LoopEnd:      p.LoopEnd,
			End:          p.SampleEnd,
			LoopingMode:  p.LoopingMode,
		},
		filter:              filter.New(sampleRate),
		modulators:          p.Modulators,
		generators:          p.Generators,
		modulatedGenerators: p.Generators,
		midiNote:            p.MidiNote,
		velocity:            p.Velocity,
		targetKey:           p.TargetKey,
		rootKey:             p.RootKey,
		startTime:           p.Now,
		releaseStartTime:    math.Inf(1),
		releaseStartModEnv:  1.0,
		tuningRatio:         1.0,
		scratch:             make([]float64, maxBlockLength),
		sampleRate:          sampleRate,
	}
	// The envelopes view modulatedGenerators directly, so modulator
	// recomputation reaches them without any refresh call.
	v.modEnv = envelope.NewModulation(v.modulatedGenerators[:], v.midiNote, v.startTime)
	v.volEnv = envelope.NewVolume(v.modulatedGenerators[:], v.midiNote, v.startTime)
	return v
}

// Finished reports whether the voice has completed (sample exhausted with
// no loop, or volume envelope decayed to silence during release) and is
// ready to be reaped by its channel.
func (v *Voice) Finished() bool { return v.finished }

// MarkFinished force-finishes the voice; used for hard stop / voice
// stealing where no further fade-out is wanted.
func (v *Voice) MarkFinished() { v.finished = true }

// Velocity exposes the note-on velocity, the selection key for
// lowest-velocity voice stealing.
func (v *Voice) Velocity() int { return v.velocity }

// MidiNote reports the key this voice was triggered on, used by noteOff
// matching.
func (v *Voice) MidiNote() int { return v.midiNote }

// StartTime reports the voice's birth time, used to distinguish voices of
// the same exclusive class from each other.
func (v *Voice) StartTime() float64 { return v.startTime }

// ExclusiveClass returns the generator's exclusiveClass value (0 = none).
func (v *Voice) ExclusiveClass() int { return v.generators[gen.ExclusiveClass] }

// IsInRelease reports whether the voice has begun its release phase.
func (v *Voice) IsInRelease() bool { return v.isInRelease }

// SampleID exposes which sample store slot this voice plays, so a channel
// can find voices to reposition after a deferred dump.
func (v *Voice) SampleID() int { return v.sample.SampleID }

// Release schedules the voice's release no sooner than MinimumNoteLength
// after its start, so even the shortest note-off leaves an audible note.
// If the scheduled time has already arrived the voice enters release
// immediately; otherwise rendering flips it once the clock crosses the
// scheduled time. Calling Release again is a no-op: releaseStartTime and
// releaseStartModEnv are frozen once set.
func (v *Voice) Release(now float64) {
	if v.isInRelease || !math.IsInf(v.releaseStartTime, 1) {
		return
	}
	v.releaseStartTime = math.Max(now, v.startTime+gen.MinimumNoteLength)
	if now >= v.releaseStartTime {
		v.releaseStartModEnv = v.currentModEnvValue
		v.isInRelease = true
	}
}

// ForceFastRelease is used by exclusive-class choking: it pins the voice's
// release-time generator so it fades in roughly 10ms instead of its natural
// release, recomputes the modulated generators so the envelope sees the new
// value, and schedules the release. A voice already releasing keeps its
// release start but picks up the shortened ramp on its next block.
func (v *Voice) ForceFastRelease(controllerTable []int, now float64) {
	v.generators[gen.ReleaseVolEnv] = -7900
	v.RecomputeModulators(controllerTable)
	v.Release(now)
}

// RecomputeModulators rebuilds modulatedGenerators from the immutable base
// generators plus every modulator's contribution against the channel's
// current controller table. Called at birth and on every controller change.
func (v *Voice) RecomputeModulators(controllerTable []int) {
	v.modulatedGenerators = v.generators
	for _, m := range v.modulators {
		m.Apply(controllerTable, v.modulatedGenerators[:], v.midiNote, v.velocity)
	}
}

// Vibrato carries the owning channel's vibrato LFO parameters into a render
// call.
type Vibrato struct {
	DepthCents   float64
	DelaySeconds float64
	FrequencyHz  float64
}

// Render fills the voice's scratch buffer with one block of its signal and
// mixes it into the dry/reverb/chorus buses via pan.Mix. store resolves the
// voice's sample; if it is not yet present the voice renders silence and
// leaves all state untouched so a deferred SF3 dump can resume it later
// without desync. now is the block's start time, sampleTime is
// 1/outputSampleRate, and controllerTable is the owning channel's live
// controller table (read directly here for pitch wheel / channel tuning /
// transpose, which are not routed through the modulator system).
func (v *Voice) Render(blockLength int, now, sampleTime float64, store *sampledump.Store, channelVibrato Vibrato, controllerTable []int, dryL, dryR, reverbL, reverbR, chorusL, chorusR []float32) {
	if v.finished {
		return
	}

	sample, present := store.Get(v.sample.SampleID)
	if !present {
		return
	}

	if !v.isInRelease && now >= v.releaseStartTime {
		v.releaseStartModEnv = v.currentModEnvValue
		v.isInRelease = true
	}

	// Above 100dB of attenuation nothing is audible; skip the whole chain.
	if v.modulatedGenerators[gen.InitialAttenuation] > 2500 {
		if v.isInRelease {
			v.finished = true
		}
		return
	}

	g := v.modulatedGenerators

	modLfoDepthPitch := g[gen.ModLfoToPitch]
	modLfoDepthFilter := g[gen.ModLfoToFilterFc]
	modLfoDepthVolume := g[gen.ModLfoToVolume]
	var modLfoValue float64
	if modLfoDepthPitch != 0 || modLfoDepthFilter != 0 || modLfoDepthVolume != 0 {
		delay := v.startTime + unitconv.TimecentsToSeconds(g[gen.DelayModLFO])
		freq := unitconv.AbsCentsToHz(g[gen.FreqModLFO])
		modLfoValue = lfo.Triangle(delay, freq, now)
	}

	centTuning := float64(g[gen.FineTune]) + float64(v.targetKey-v.rootKey)*float64(g[gen.ScaleTuning])
	centTuning += pitchWheelCents(controllerTable)
	centTuning += float64(controllerTable[gen.NonCCIndexOffset+gen.SourceChannelTuning])
	centTuning += float64(controllerTable[gen.NonCCIndexOffset+gen.SourceChannelTranspose])
	centTuning += modLfoValue * float64(modLfoDepthPitch)

	if depth := g[gen.VibLfoToPitch]; depth > 0 {
		delay := v.startTime + unitconv.TimecentsToSeconds(g[gen.DelayVibLFO])
		freq := unitconv.AbsCentsToHz(g[gen.FreqVibLFO])
		centTuning += lfo.Triangle(delay, freq, now) * float64(depth)
	}

	if channelVibrato.DepthCents > 0 {
		delay := v.startTime + channelVibrato.DelaySeconds
		centTuning += lfo.Triangle(delay, channelVibrato.FrequencyHz, now) * channelVibrato.DepthCents
	}

	cutoffCents := g[gen.InitialFilterFc]
	cutoffCents += int(modLfoValue * float64(modLfoDepthFilter))

	centibelOffset := modLfoValue * float64(modLfoDepthVolume)

	modEnvValue := v.modEnv.Value(now, v.isInRelease, v.releaseStartTime, v.releaseStartModEnv, &v.currentModEnvValue)
	centTuning += modEnvValue * float64(g[gen.ModEnvToPitch])
	cutoffCents += int(modEnvValue * float64(g[gen.ModEnvToFilterFc]))

	centTuningFinal := centTuning + 100*float64(g[gen.CoarseTune])
	if centTuningFinal != v.lastTuningFinalCents {
		v.lastTuningFinalCents = centTuningFinal
		v.tuningRatio = math.Pow(2, centTuningFinal/1200.0)
	}

	panValue := (float64(clampInt(g[gen.Pan], gen.GeneratorsPanMinimum, gen.GeneratorsPanMaximum)) + 500) / 1000.0

	buffer := v.scratch[:blockLength]
	sampleFinished := wavetable.Render(v.sample, v.isInRelease, sample.Data, buffer, v.tuningRatio)

	v.filter.Apply(g[gen.InitialFilterQ], cutoffCents, buffer)

	silent := v.volEnv.Apply(buffer, now, sampleTime, centibelOffset, v.isInRelease, v.releaseStartTime)

	pan.Mix(buffer, panValue, g[gen.ReverbEffectsSend], g[gen.ChorusEffectsSend], dryL, dryR, reverbL, reverbR, chorusL, chorusR)

	// An exhausted non-looping sample has nothing left to play; the tail of
	// the buffer was already zero-filled.
	if sampleFinished {
		v.finished = true
	}
	if v.isInRelease && silent {
		v.finished = true
	}
}

// AdjustAfterDump repositions the voice's cursor after its sample finally
// arrives in the store, so it resumes as if the sample had been present
// since note-on. now is the dump's time.
func (v *Voice) AdjustAfterDump(sampleLength int, now float64) {
	g := v.modulatedGenerators
	end := sampleLength - 1 + g[gen.EndAddrOffset] + 32768*g[gen.EndAddrsCoarseOffset]
	if end >= sampleLength {
		end = sampleLength - 1
	}
	v.sample.End = end

	cursor := v.sample.PlaybackRate * v.sampleRate * (now - v.startTime)
	isLooped := v.sample.LoopingMode == wavetable.Loop ||
		(v.sample.LoopingMode == wavetable.LoopThenPlay && !v.isInRelease)
	if isLooped && v.sample.LoopEnd > v.sample.LoopStart {
		loopLength := float64(v.sample.LoopEnd - v.sample.LoopStart)
		for cursor >= float64(v.sample.LoopEnd) {
			cursor -= loopLength
		}
	} else if cursor >= float64(v.sample.End) {
		v.finished = true
	}
	v.sample.Cursor = cursor
}

// pitchWheelCents converts the 14-bit pitch wheel controller (centered at
// 8192) into cents, scaled by the channel's pitchWheelRange controller
// (semitones, stored pre-multiplied by 128 like every other 7-bit CC).
func pitchWheelCents(controllerTable []int) float64 {
	wheel := controllerTable[gen.NonCCIndexOffset+gen.SourcePitchWheel]
	rangeSemitones := float64(controllerTable[gen.NonCCIndexOffset+gen.SourcePitchWheelRange]) / 128.0
	return (float64(wheel) - 8192.0) / 8192.0 * rangeSemitones * 100.0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
