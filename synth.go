// Package sf2synth is a realtime, polyphonic, sample-based synthesizer
// engine compatible with the SoundFont 2 (SF2/SF3) synthesis model. It
// renders audio for a bank of MIDI channels into caller-supplied stereo
// output buses, driven entirely by a control surface a host invokes
// between render calls (see Engine's methods below).
//
// SoundFont file parsing, MIDI sequencing, reverb/chorus DSP, audio I/O,
// and patch/preset selection all live outside this package: the engine only
// produces the auxiliary bus signals a host-owned reverb/chorus would
// consume, and only accepts already-decoded PCM sample data and
// already-resolved generators/modulators.
package sf2synth

import (
	"errors"

	"github.com/cbegin/sf2synth-go/internal/channel"
	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/modulator"
	"github.com/cbegin/sf2synth-go/internal/sampledump"
	"github.com/cbegin/sf2synth-go/internal/voice"
	"github.com/cbegin/sf2synth-go/internal/wavetable"
)

// Errors returned by control-surface operations whose inputs can be
// validated cheaply at the API boundary. Render-path conditions (absent
// sample, out-of-domain generator, unsupported modulator) never error;
// they clamp or skip so the render path stays total.
var (
	ErrChannelOutOfRange      = errors.New("sf2synth: channel index out of range")
	ErrModulatorArrayMismatch = errors.New("sf2synth: serialized modulator array length is not a multiple of 5")
)

// Engine is the synthesizer facade: it owns the sample store and the
// ordered channel list, and fans each render call out across every
// channel, mixing into the caller's output buses.
type Engine struct {
	sampleRate     float64
	maxBlockLength int
	store          *sampledump.Store
	channels       []*channel.Channel
}

// New constructs an engine at sampleRate with its sample store reserved
// for totalSamples slots. maxBlockLength bounds the largest buffer any
// RenderAudio call will be asked to fill; voices preallocate their scratch
// buffer to this size so rendering never allocates.
func New(sampleRate float64, totalSamples, maxBlockLength int) *Engine {
	return &Engine{
		sampleRate:     sampleRate,
		maxBlockLength: maxBlockLength,
		store:          sampledump.NewStore(totalSamples),
	}
}

// AddNewChannel appends a channel with default controllers and returns its
// index.
func (e *Engine) AddNewChannel() int {
	e.channels = append(e.channels, channel.New())
	return len(e.channels) - 1
}

// ChannelsAmount reports how many channels have been added.
func (e *Engine) ChannelsAmount() int { return len(e.channels) }

func (e *Engine) channelAt(ch int) (*channel.Channel, error) {
	if ch < 0 || ch >= len(e.channels) {
		return nil, ErrChannelOutOfRange
	}
	return e.channels[ch], nil
}

// RenderAudio advances every unmuted channel by bufferLength samples
// starting at currentTime (seconds) and mixes the result into the caller's
// buses. By convention outputsLeft[0]/outputsRight[0] is the reverb bus,
// [1] is the chorus bus, and dry channel buses begin at index 2; channel i
// is mixed into bus 2+(i % (len(outputsLeft)-2)) as well as always into
// the reverb and chorus buses. Every bus must already be sized to at least
// bufferLength and is only added into, never cleared. A call with no dry
// bus (fewer than three buses on either side) renders nothing.
func (e *Engine) RenderAudio(bufferLength int, currentTime float64, outputsLeft, outputsRight [][]float32) {
	if len(outputsLeft) < 2 || len(outputsRight) < 2 {
		return
	}
	if bufferLength > e.maxBlockLength {
		bufferLength = e.maxBlockLength
	}
	dryBusCount := len(outputsLeft) - 2
	if n := len(outputsRight) - 2; n < dryBusCount {
		dryBusCount = n
	}
	if dryBusCount <= 0 {
		return
	}
	sampleTime := 1.0 / e.sampleRate

	for i, ch := range e.channels {
		dryIdx := 2 + (i % dryBusCount)
		ch.RenderAudio(bufferLength, currentTime, sampleTime, e.store,
			outputsLeft[dryIdx], outputsRight[dryIdx],
			outputsLeft[0], outputsRight[0],
			outputsLeft[1], outputsRight[1])
	}
}

// ControllerChange updates ch's controller table and reprocesses its live
// voices' modulated generators.
func (e *Engine) ControllerChange(ch, ccIndex, value int, now float64) error {
	c, err := e.channelAt(ch)
	if err != nil {
		return err
	}
	c.ControllerChange(ccIndex, value, now)
	return nil
}

// NoteOff releases (or, under the hold pedal, sustains) every voice on ch
// matching midiNote.
func (e *Engine) NoteOff(ch, midiNote int, now float64) error {
	c, err := e.channelAt(ch)
	if err != nil {
		return err
	}
	c.NoteOff(midiNote, now)
	return nil
}

// CreateVoiceParams bundles everything the host resolved for a new note,
// including the flat modulator wire format (5 ints per modulator:
// sourceEnum, secSourceEnum, destination, transformAmount, transformType).
type CreateVoiceParams struct {
	Channel      int
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
	LoopingMode  int
	Generators   [gen.GeneratorsAmountTotal]int

	// SerializedModulators is a flat array of length 5*N, N modulators of
	// five fields each.
	SerializedModulators []int
}

// CreateVoice decodes SerializedModulators, builds a Voice, and adds it to
// the given channel.
func (e *Engine) CreateVoice(p CreateVoiceParams) error {
	c, err := e.channelAt(p.Channel)
	if err != nil {
		return err
	}
	if len(p.SerializedModulators)%5 != 0 {
		return ErrModulatorArrayMismatch
	}

	n := len(p.SerializedModulators) / 5
	mods := make([]modulator.Spec, 0, n)
	for i := 0; i < n; i++ {
		base := i * 5
		destination := p.SerializedModulators[base+2]
		if destination < 0 || destination >= gen.GeneratorsAmountTotal {
			continue
		}
		mods = append(mods, modulator.NewSpec(
			p.SerializedModulators[base],
			p.SerializedModulators[base+1],
			gen.Index(destination),
			p.SerializedModulators[base+3],
			p.SerializedModulators[base+4],
		))
	}

	v := voice.New(voice.CreateParams{
		MidiNote:     p.MidiNote,
		Velocity:     p.Velocity,
		TargetKey:    p.TargetKey,
		RootKey:      p.RootKey,
		Now:          p.Now,
		SampleID:     p.SampleID,
		PlaybackRate: p.PlaybackRate,
		LoopStart:    p.LoopStart,
		LoopEnd:      p.LoopEnd,
		SampleStart:  p.SampleStart,
		SampleEnd:    p.SampleEnd,
		LoopingMode:  wavetable.LoopingMode(p.LoopingMode),
		Generators:   p.Generators,
		Modulators:   mods,
	}, e.maxBlockLength, e.sampleRate)

	c.AddVoice(v, p.Now)
	return nil
}

// DumpSample delivers a decoded sample's PCM payload into the store and
// repositions every channel's voices waiting on it. data is not copied;
// the caller must keep it alive until the next ClearDumpedSamples.
func (e *Engine) DumpSample(sampleID int, data []float32, now float64) {
	e.store.Dump(sampleID, data)
	for _, c := range e.channels {
		c.AdjustVoices(sampleID, len(data), now)
	}
}

// ClearDumpedSamples discards the sample store and reallocates it empty
// for total new slots, releasing every payload reference it held.
func (e *Engine) ClearDumpedSamples(total int) {
	e.store.Reset(total)
}

// MuteChannel suppresses or resumes ch's rendering.
func (e *Engine) MuteChannel(ch int, muted bool) error {
	c, err := e.channelAt(ch)
	if err != nil {
		return err
	}
	c.SetMuted(muted)
	return nil
}

// KillVoices steals amount voices globally, selecting the lowest-velocity
// ones first and breaking ties by insertion (channel, then voice) order.
// It returns how many voices were actually stolen, which can be less than
// amount if fewer voices exist.
func (e *Engine) KillVoices(amount int) int {
	type candidate struct {
		ch *channel.Channel
		v  *voice.Voice
	}
	var candidates []candidate
	for _, c := range e.channels {
		for _, v := range c.Voices() {
			if !v.Finished() {
				candidates = append(candidates, candidate{c, v})
			}
		}
	}

	killed := 0
	for killed < amount && len(candidates) > 0 {
		lowest := 0
		for i, cand := range candidates {
			if cand.v.Velocity() < candidates[lowest].v.Velocity() {
				lowest = i
			}
		}
		candidates[lowest].v.MarkFinished()
		candidates = append(candidates[:lowest], candidates[lowest+1:]...)
		killed++
	}

	for _, c := range e.channels {
		c.Reap()
	}
	return killed
}

// StopAll hard-drops (force=true) or releases (force=false) every voice on
// every channel.
func (e *Engine) StopAll(force bool, now float64) {
	for _, c := range e.channels {
		c.StopAll(force, now)
	}
}

// SetChannelVibrato assigns ch's channel-wide vibrato LFO.
func (e *Engine) SetChannelVibrato(ch int, rateHz, delaySeconds, depthCents float64) error {
	c, err := e.channelAt(ch)
	if err != nil {
		return err
	}
	c.SetVibrato(rateHz, delaySeconds, depthCents)
	return nil
}

// VoicesAmount reports ch's live voice count.
func (e *Engine) VoicesAmount(ch int) (int, error) {
	c, err := e.channelAt(ch)
	if err != nil {
		return 0, err
	}
	return c.VoicesAmount(), nil
}
