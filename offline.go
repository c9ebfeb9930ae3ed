package sf2synth

import (
	"encoding/binary"
	"math"
	"sort"
)

// OfflineEvent is one control-surface call scheduled on the render clock,
// used for faster-than-realtime rendering where no audio device drives the
// timing.
type OfflineEvent struct {
	AtSeconds float64
	Apply     func(e *Engine, now float64) error
}

// RenderOffline drives e block by block for the given duration, applying
// each event at the first block boundary at or after its timestamp, and
// returns the interleaved stereo mix. The reverb and chorus buses are
// summed into the dry signal unprocessed; effects are a playback concern
// and an offline consumer can always re-render with its own.
func RenderOffline(e *Engine, events []OfflineEvent, sampleRate int, seconds float64) []float32 {
	const blockSize = 512

	sorted := make([]OfflineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AtSeconds < sorted[j].AtSeconds })

	left := make([][]float32, 3)
	right := make([][]float32, 3)
	for i := range left {
		left[i] = make([]float32, blockSize)
		right[i] = make([]float32, blockSize)
	}

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)

	next := 0
	for frame := 0; frame < frames; frame += blockSize {
		now := float64(frame) / float64(sampleRate)
		for next < len(sorted) && sorted[next].AtSeconds <= now {
			_ = sorted[next].Apply(e, now)
			next++
		}

		n := blockSize
		if frames-frame < n {
			n = frames - frame
		}
		for i := range left {
			for j := 0; j < n; j++ {
				left[i][j] = 0
				right[i][j] = 0
			}
		}
		e.RenderAudio(n, now, left, right)

		for j := 0; j < n; j++ {
			out[(frame+j)*2] = left[2][j] + left[0][j] + left[1][j]
			out[(frame+j)*2+1] = right[2][j] + right[0][j] + right[1][j]
		}
	}
	return out
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a RIFF/WAVE
// container (format 3, IEEE float, little-endian).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
