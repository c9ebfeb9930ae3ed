// Package wavetable resamples a stored PCM sample at an arbitrary playback
// rate using linear interpolation, honoring the sample's loop points and
// looping mode. It is the innermost render step of a voice: everything else
// (filter, envelopes, panning) operates on the buffer this package fills.
package wavetable

// LoopingMode selects how VoiceSample.Cursor wraps once it reaches the end
// of the sample (or the loop region).
type LoopingMode int

const (
	// NoLoop plays the sample once from start to end and then finishes.
	NoLoop LoopingMode = 0
	// Loop repeats [LoopStart, LoopEnd) forever.
	Loop LoopingMode = 1
	// LoopThenPlay repeats the loop region while the voice is sounding,
	// then plays straight through to End once release begins.
	LoopThenPlay LoopingMode = 3
)

// VoiceSample is a voice's view into a stored sample: which sample, at what
// rate, and where playback currently sits. The cursor is advanced in place
// by Render so the voice can resume across render calls.
type VoiceSample struct {
	SampleID     int
	PlaybackRate float64
	Cursor       float64
	RootKey      int
	LoopStart    int
	LoopEnd      int
	End          int
	LoopingMode  LoopingMode
}

// Render fills output with outputBufferLength samples of data, resampled
// from sampleData at the voice's current tuning ratio, advancing vs.Cursor
// in place. It reports whether the voice has finished (reached End without
// looping).
//
// tuningRatio further scales the voice's own PlaybackRate — it carries
// the voice's pitch modulation (pitch wheel, pitch LFO, envelope), which
// can change every render call and is held constant across one block, whereas PlaybackRate is the voice's constant
// base rate set at note-on.
func Render(vs *VoiceSample, isVoiceInRelease bool, sampleData []float32, output []float64, tuningRatio float64) bool {
	cursor := vs.Cursor
	isLooped := vs.LoopingMode == Loop || (vs.LoopingMode == LoopThenPlay && !isVoiceInRelease)
	loopLength := float64(vs.LoopEnd - vs.LoopStart)
	step := vs.PlaybackRate * tuningRatio

	if isLooped {
		for i := range output {
			for cursor >= float64(vs.LoopEnd) {
				cursor -= loopLength
			}

			floorIndex := int(cursor)
			ceilIndex := floorIndex + 1
			for ceilIndex >= vs.LoopEnd {
				ceilIndex -= int(loopLength)
			}

			fraction := cursor - float64(floorIndex)
			lower := float64(sampleData[floorIndex])
			upper := float64(sampleData[ceilIndex])
			output[i] = lower + (upper-lower)*fraction

			cursor += step
		}
		vs.Cursor = cursor
		return false
	}

	end := vs.End
	if end >= len(sampleData) {
		end = len(sampleData) - 1
	}

	for i := range output {
		floorIndex := int(cursor)
		ceilIndex := floorIndex + 1

		if ceilIndex >= end {
			for j := i; j < len(output); j++ {
				output[j] = 0.0
			}
			vs.Cursor = cursor
			return true
		}

		fraction := cursor - float64(floorIndex)
		lower := float64(sampleData[floorIndex])
		upper := float64(sampleData[ceilIndex])
		output[i] = lower + (upper-lower)*fraction

		cursor += step
	}
	vs.Cursor = cursor
	return false
}
