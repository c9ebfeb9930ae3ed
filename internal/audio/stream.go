// Package audio owns the ebiten audio output path: a process-wide float32
// audio context, a reader that pulls interleaved stereo samples from a
// SampleSource, and the small player wrapper the demo hosts drive. The
// engine never sees any of this; it only fills the buses a SampleSource
// implementation hands it.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with interleaved stereo float32 samples. The
// audio device pulls; the source renders exactly as much as asked for.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the io.Reader the ebiten player
// consumes: 8 bytes per frame, two little-endian float32s.
type StreamReader struct {
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide ebiten context. ebiten
// allows exactly one context per process, so the first caller fixes the
// sample rate and later mismatches are an error.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Player streams a SampleSource to the system audio output.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play() { p.player.Play() }

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
