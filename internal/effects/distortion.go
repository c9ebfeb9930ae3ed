package effects

import "math"

// Distortion is a master-bus soft clipper: tanh waveshaping between a pre
// and post gain, with an optional one-pole lowpass to tame the harmonics
// the shaping adds.
type Distortion struct {
	preGain  float32
	postGain float32
	lpfAlpha float32
	lpfL     float32
	lpfR     float32
}

// NewDistortion creates a distortion stage.
// preGain: input gain (higher = harder clipping)
// postGain: output gain
// lpfCutoff: lowpass cutoff in Hz (0 disables the filter)
func NewDistortion(sampleRate int, preGain, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{preGain: preGain, postGain: postGain}
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		dt := 1.0 / float64(sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) Process(left, right []float32) {
	for i := range left {
		l := float32(math.Tanh(float64(left[i]*d.preGain))) * d.postGain
		r := float32(math.Tanh(float64(right[i]*d.preGain))) * d.postGain
		if d.lpfAlpha > 0 {
			d.lpfL += d.lpfAlpha * (l - d.lpfL)
			d.lpfR += d.lpfAlpha * (r - d.lpfR)
			l = d.lpfL
			r = d.lpfR
		}
		left[i] = l
		right[i] = r
	}
}

func (d *Distortion) Reset() {
	d.lpfL = 0
	d.lpfR = 0
}
