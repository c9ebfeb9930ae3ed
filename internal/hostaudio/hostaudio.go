// Package hostaudio adapts a sf2synth.Engine to internal/audio's
// SampleSource interface, so it can be driven by an ebiten audio player
// the way the rest of this module's playback stack is driven. The engine
// itself only produces dry/reverb/chorus bus signals; this package is
// where those buses actually get processed by the host's reverb/chorus
// effects and mixed down into the interleaved stereo stream a player
// consumes.
package hostaudio

import (
	"sync"

	"github.com/cbegin/sf2synth-go/internal/effects"
)

// Engine is the subset of sf2synth.Engine's control surface this adapter
// needs. Depending on the interface rather than the concrete type keeps
// this package free of an import cycle and lets tests substitute a fake.
type Engine interface {
	RenderAudio(bufferLength int, currentTime float64, outputsLeft, outputsRight [][]float32)
}

// busCount is the number of dry buses requested from the engine per
// render block, in addition to the reverb (index 0) and chorus (index 1)
// buses it always produces. A single stereo dry bus is enough for a
// straightforward host player; a mixing host wanting per-channel stems
// would size this differently.
const busCount = 1

// Source drives an Engine one block at a time: it runs the reverb and
// chorus send buses through their effects, sums them with the dry bus
// into a stereo mix, applies an optional master chain, and serves the
// result interleaved as internal/audio.SampleSource.
type Source struct {
	mu sync.Mutex

	engine     Engine
	sampleRate int

	reverb *effects.Reverb
	chorus *effects.Chorus
	master *effects.Chain

	now        float64
	blockSize  int
	left       [][]float32
	right      [][]float32
	mixL, mixR []float32
	cursor     int
	filled     int
}

// New builds a Source rendering engine at sampleRate, with its reverb and
// chorus auxiliary buses run through the given effects (either may be nil
// to mute that send entirely), and the final stereo mix run through
// master (nil for a clean mix). master is typically an effects.NewChain
// of the compressor/delay/distortion stages — none of those have an SF2
// send generator of their own, so they live on the host's master bus
// rather than per-voice.
func New(engine Engine, sampleRate int, reverb *effects.Reverb, chorus *effects.Chorus, master *effects.Chain) *Source {
	const blockSize = 1024
	left := make([][]float32, 2+busCount)
	right := make([][]float32, 2+busCount)
	for i := range left {
		left[i] = make([]float32, blockSize)
		right[i] = make([]float32, blockSize)
	}
	return &Source{
		engine:     engine,
		sampleRate: sampleRate,
		reverb:     reverb,
		chorus:     chorus,
		master:     master,
		blockSize:  blockSize,
		left:       left,
		right:      right,
		mixL:       make([]float32, blockSize),
		mixR:       make([]float32, blockSize),
	}
}

// Process fills dst with interleaved stereo float32 samples, rendering
// additional engine blocks as needed. It never allocates once warmed up.
func (s *Source) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		if s.cursor >= s.filled {
			s.renderBlock()
		}
		dst[i*2] = s.mixL[s.cursor]
		dst[i*2+1] = s.mixR[s.cursor]
		s.cursor++
	}
}

func (s *Source) renderBlock() {
	for i := range s.left {
		for j := range s.left[i] {
			s.left[i][j] = 0
			s.right[i][j] = 0
		}
	}
	s.engine.RenderAudio(s.blockSize, s.now, s.left, s.right)
	s.now += float64(s.blockSize) / float64(s.sampleRate)

	reverbL, reverbR := s.left[0][:s.blockSize], s.right[0][:s.blockSize]
	chorusL, chorusR := s.left[1][:s.blockSize], s.right[1][:s.blockSize]
	if s.reverb != nil {
		s.reverb.Process(reverbL, reverbR)
	} else {
		zero(reverbL, reverbR)
	}
	if s.chorus != nil {
		s.chorus.Process(chorusL, chorusR)
	} else {
		zero(chorusL, chorusR)
	}

	for j := 0; j < s.blockSize; j++ {
		s.mixL[j] = s.left[2][j] + reverbL[j] + chorusL[j]
		s.mixR[j] = s.right[2][j] + reverbR[j] + chorusR[j]
	}
	if s.master != nil {
		s.master.Process(s.mixL[:s.blockSize], s.mixR[:s.blockSize])
	}

	s.cursor = 0
	s.filled = s.blockSize
}

func zero(left, right []float32) {
	for i := range left {
		left[i] = 0
		right[i] = 0
	}
}
