package main

import (
	"math"

	sf2synth "github.com/cbegin/sf2synth-go"
	"github.com/cbegin/sf2synth-go/internal/gen"
)

const (
	demoSampleRate  = 44100
	demoRootKey     = 60
	demoSampleLen   = demoSampleRate * 2
	demoLoopStart   = demoSampleRate / 10
	demoLoopEnd     = demoSampleRate
	demoTotalSlots  = 1
	demoSampleID    = 0
)

// buildDemoSample synthesizes a harmonically rich, slowly decaying tone at
// demoRootKey so the engine has something to play without a SoundFont asset.
// A few odd harmonics give the low-pass filter and modulators something
// audible to act on.
func buildDemoSample() []float32 {
	data := make([]float32, demoSampleLen)
	freq := 440.0 * math.Pow(2, float64(demoRootKey-69)/12.0)
	for i := range data {
		t := float64(i) / demoSampleRate
		decay := math.Exp(-t * 0.6)
		v := math.Sin(2*math.Pi*freq*t)*0.6 +
			math.Sin(2*math.Pi*freq*3*t)*0.25 +
			math.Sin(2*math.Pi*freq*5*t)*0.15
		data[i] = float32(v * decay)
	}
	return data
}

// demoGenerators returns a pluck-like DAHDSR shape: fast attack, a brief
// hold, moderate decay to a sustain well below unity, and a half-second
// release, with the filter wide open so the sample's own harmonics carry
// the timbre.
func demoGenerators() [gen.GeneratorsAmountTotal]int {
	var g [gen.GeneratorsAmountTotal]int
	g[gen.DelayVolEnv] = -12000
	g[gen.AttackVolEnv] = -7000 // ~17ms
	g[gen.HoldVolEnv] = -9000   // ~5ms
	g[gen.DecayVolEnv] = -1200  // ~0.5s
	g[gen.SustainVolEnv] = 200  // 20dB below peak
	g[gen.ReleaseVolEnv] = -1200
	g[gen.InitialFilterFc] = 13500 // fully open
	g[gen.ScaleTuning] = 100
	return g
}

// newDemoEngine builds an Engine with channels ready channels and the demo
// sample already dumped, so callers only need to drive note on/off.
func newDemoEngine(channels int) (*sf2synth.Engine, error) {
	engine := sf2synth.New(demoSampleRate, demoTotalSlots, 1024)
	for i := 0; i < channels; i++ {
		engine.AddNewChannel()
	}
	engine.DumpSample(demoSampleID, buildDemoSample(), 0)
	return engine, nil
}

func noteOn(engine *sf2synth.Engine, channel, midiNote, velocity int, now float64) error {
	return engine.CreateVoice(sf2synth.CreateVoiceParams{
		Channel:      channel,
		MidiNote:     midiNote,
		Velocity:     velocity,
		TargetKey:    midiNote,
		RootKey:      demoRootKey,
		Now:          now,
		SampleID:     demoSampleID,
		PlaybackRate: 1.0,
		LoopStart:    demoLoopStart,
		LoopEnd:      demoLoopEnd,
		SampleEnd:    demoSampleLen,
		LoopingMode:  1, // wavetable.Loop
		Generators:   demoGenerators(),
	})
}
