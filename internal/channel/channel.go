// Package channel implements one MIDI channel: its live and sustained
// voices, its 147-entry controller table, hold-pedal and exclusive-class
// bookkeeping, and its channel-wide vibrato LFO.
package channel

import (
	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/sampledump"
	"github.com/cbegin/sf2synth-go/internal/voice"
)

// Vibrato holds a channel's vibrato LFO parameters (the GS NRPN vibrato
// that applies to every voice on the channel, on top of each voice's own
// vibrato LFO generator).
type Vibrato struct {
	DepthCents   float64
	DelaySeconds float64
	FrequencyHz  float64
}

func (v Vibrato) toVoiceVibrato() voice.Vibrato {
	return voice.Vibrato{DepthCents: v.DepthCents, DelaySeconds: v.DelaySeconds, FrequencyHz: v.FrequencyHz}
}

// defaultControllers builds the reset array: the controller values a
// channel starts with and returns to on ResetControllers.
func defaultControllers() [gen.MIDIControllerTableSize]int {
	var t [gen.MIDIControllerTableSize]int
	t[gen.CCMainVolume] = 100 * 128
	t[gen.CCExpression] = 127 * 128
	t[gen.CCPan] = 64 * 128
	t[gen.CCReleaseTime] = 64 * 128
	t[gen.CCBrightness] = 64 * 128
	t[gen.NonCCIndexOffset+gen.SourcePitchWheel] = 8192
	t[gen.NonCCIndexOffset+gen.SourcePitchWheelRange] = 2 * 128
	t[gen.NonCCIndexOffset+gen.SourceChannelPressure] = 127 * 128
	t[gen.NonCCIndexOffset+gen.SourceChannelTuning] = 0
	return t
}

// Channel owns one MIDI channel's voices and controller state. Voices are
// held in a slice that addVoice appends to and renderAudio compacts after
// reaping finished voices; sustainedVoices holds voices whose note-off
// arrived while the hold pedal was down, deferred until the pedal lifts.
type Channel struct {
	voices          []*voice.Voice
	sustainedVoices []*voice.Voice

	controllerTable [gen.MIDIControllerTableSize]int
	resetArray      [gen.MIDIControllerTableSize]int

	holdPedal bool
	isMuted   bool
	vibrato   Vibrato
}

// New constructs a channel with the default controller table already
// applied.
func New() *Channel {
	defaults := defaultControllers()
	c := &Channel{resetArray: defaults}
	c.controllerTable = defaults
	return c
}

// VoicesAmount reports the number of live voices.
func (c *Channel) VoicesAmount() int { return len(c.voices) }

// ControllerChange writes value into the controller table and recomputes
// every live voice's modulated generators. The sustain pedal additionally
// engages the hold pedal (value >= 64) or, when lifted, schedules the
// release of every sustained voice and empties the sustained set. Reset
// All Controllers (CC121) restores the default table instead of being
// stored.
func (c *Channel) ControllerChange(index, value int, now float64) {
	if index < 0 || index >= gen.MIDIControllerTableSize {
		return
	}
	if index == gen.CCResetAllControllers {
		c.ResetControllers()
		return
	}
	if index == gen.CCSustainPedal {
		if value >= 64 {
			c.holdPedal = true
		} else {
			c.holdPedal = false
			for _, v := range c.sustainedVoices {
				c.releaseVoice(v, now)
			}
			c.sustainedVoices = c.sustainedVoices[:0]
		}
	}

	c.controllerTable[index] = value
	for _, v := range c.voices {
		v.RecomputeModulators(c.controllerTable[:])
	}
}

// NoteOff releases (or, under the hold pedal, defers releasing) every live
// voice matching midiNote that has not already begun release. A voice held
// by the pedal stays in the live voices list (it is still sounding) and
// gains a reference in sustainedVoices so the pedal lift can find it
// directly instead of re-matching by note.
func (c *Channel) NoteOff(midiNote int, now float64) {
	for _, v := range c.voices {
		if v.MidiNote() != midiNote || v.IsInRelease() {
			continue
		}
		if c.holdPedal {
			c.sustainedVoices = append(c.sustainedVoices, v)
			continue
		}
		c.releaseVoice(v, now)
	}
}

// releaseVoice schedules v's release no sooner than MinimumNoteLength
// after its note-on.
func (c *Channel) releaseVoice(v *voice.Voice, now float64) {
	v.Release(now)
}

// AddVoice inserts a newly created voice, first choking any existing voice
// sharing its nonzero exclusive class (closed hi-hat cutting off the open
// one). The new voice's modulators are computed against the current
// controller table before it is appended.
func (c *Channel) AddVoice(v *voice.Voice, now float64) {
	if class := v.ExclusiveClass(); class != 0 {
		for _, existing := range c.voices {
			if existing.ExclusiveClass() == class && existing.StartTime() != v.StartTime() {
				existing.ForceFastRelease(c.controllerTable[:], now)
			}
		}
	}

	v.RecomputeModulators(c.controllerTable[:])
	c.voices = append(c.voices, v)
}

// RenderAudio renders every live voice into the supplied buses and then
// compacts out finished voices. A muted channel renders nothing.
func (c *Channel) RenderAudio(blockLength int, now, sampleTime float64, store *sampledump.Store, dryL, dryR, reverbL, reverbR, chorusL, chorusR []float32) {
	if c.isMuted {
		return
	}

	vibrato := c.vibrato.toVoiceVibrato()
	for _, v := range c.voices {
		v.Render(blockLength, now, sampleTime, store, vibrato, c.controllerTable[:], dryL, dryR, reverbL, reverbR, chorusL, chorusR)
	}

	c.reapFinished()
}

func (c *Channel) reapFinished() {
	kept := c.voices[:0]
	for _, v := range c.voices {
		if !v.Finished() {
			kept = append(kept, v)
		}
	}
	c.voices = kept

	keptSustained := c.sustainedVoices[:0]
	for _, v := range c.sustainedVoices {
		if !v.Finished() {
			keptSustained = append(keptSustained, v)
		}
	}
	c.sustainedVoices = keptSustained
}

// ResetControllers copies the default controller table back over the live
// one and recomputes every live voice's modulated generators against it.
func (c *Channel) ResetControllers() {
	c.controllerTable = c.resetArray
	for _, v := range c.voices {
		v.RecomputeModulators(c.controllerTable[:])
	}
}

// AdjustVoices repositions every voice playing sampleID after it has just
// been dumped into the store. Sustained voices stay in the live list until
// reaped, so one pass covers them too.
func (c *Channel) AdjustVoices(sampleID, length int, now float64) {
	for _, v := range c.voices {
		if v.SampleID() == sampleID {
			v.AdjustAfterDump(length, now)
		}
	}
}

// StopAll either hard-drops every voice (force=true) or schedules every
// voice's normal release (force=false). Calling StopAll(force=true) twice
// in a row is a no-op the second time: there is nothing left to drop.
func (c *Channel) StopAll(force bool, now float64) {
	if force {
		c.voices = c.voices[:0]
		c.sustainedVoices = c.sustainedVoices[:0]
		return
	}
	for _, v := range c.voices {
		if !v.IsInRelease() {
			v.Release(now)
		}
	}
	c.sustainedVoices = c.sustainedVoices[:0]
}

// SetVibrato assigns the channel's vibrato LFO parameters.
func (c *Channel) SetVibrato(rateHz, delaySeconds, depthCents float64) {
	c.vibrato = Vibrato{DepthCents: depthCents, DelaySeconds: delaySeconds, FrequencyHz: rateHz}
}

// SetMuted suppresses (or resumes) this channel's rendering.
func (c *Channel) SetMuted(muted bool) { c.isMuted = muted }

// Muted reports the current mute state.
func (c *Channel) Muted() bool { return c.isMuted }

// Controller reads a raw controller-table slot; an out-of-range index
// returns 0 rather than panicking.
func (c *Channel) Controller(index int) int {
	if index < 0 || index >= len(c.controllerTable) {
		return 0
	}
	return c.controllerTable[index]
}

// Voices exposes the live voice list so Engine.KillVoices can select the
// globally lowest-velocity voices across every channel; the returned slice
// must not be retained past the current control-surface call.
func (c *Channel) Voices() []*voice.Voice { return c.voices }

// Reap compacts out any voice (live or sustained) that finished since the
// last render call; exposed so Engine-level operations like killVoices can
// force an immediate compaction without waiting for the next RenderAudio.
func (c *Channel) Reap() { c.reapFinished() }
