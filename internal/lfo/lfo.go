// Package lfo computes the triangle low-frequency oscillator used for a
// voice's modulation LFO and a channel's vibrato LFO. Both are stateless:
// the oscillator's value at any instant is a pure function of when it
// started and the current render time, so no per-voice phase accumulator
// needs to survive across render calls.
package lfo

import "math"

// Triangle returns the oscillator's value in [-1, 1] at currentTime, given
// the time the LFO was triggered (startTime, typically a voice's note-on or
// delay-end time) and its rate in Hz. Before startTime the LFO is silent.
//
// The waveform is offset by a quarter period so it starts at 0 rather than
// -1; starting at -1 produces an audible jump in pitch or filter cutoff the
// instant a voice's LFO kicks in.
func Triangle(startTime, frequencyHz, currentTime float64) float64 {
	if currentTime < startTime {
		return 0.0
	}
	if frequencyHz == 0 {
		return 0.0
	}

	x := (currentTime-startTime)/(1.0/frequencyHz) - 0.25
	return math.Abs(x-math.Floor(x+0.5))*4.0 - 1.0
}
