package effects

import "math"

// Compressor is a master-bus dynamics stage with a shared stereo envelope
// follower, so loud content on one side pulls both channels down together
// and the stereo image doesn't wander under compression.
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32 // envelope coefficient per sample
	release   float32 // envelope coefficient per sample
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor.
// thresholdDB: threshold in dB (e.g. -20)
// ratio: compression ratio (e.g. 4 for 4:1)
// attackMs, releaseMs: envelope times in ms
// makeupDB: output makeup gain in dB
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	sr := float64(sampleRate)
	return &Compressor{
		threshold: float32(math.Pow(10, float64(thresholdDB)/20)),
		ratio:     ratio,
		attack:    float32(1.0 - math.Exp(-1.0/(float64(attackMs)*sr/1000.0))),
		release:   float32(1.0 - math.Exp(-1.0/(float64(releaseMs)*sr/1000.0))),
		makeup:    float32(math.Pow(10, float64(makeupDB)/20)),
	}
}

func (c *Compressor) Process(left, right []float32) {
	for i := range left {
		level := float32(math.Abs(float64(left[i])))
		if r := float32(math.Abs(float64(right[i]))); r > level {
			level = r
		}

		if level > c.env {
			c.env += c.attack * (level - c.env)
		} else {
			c.env += c.release * (level - c.env)
		}

		gain := c.gainFor(c.env) * c.makeup
		left[i] *= gain
		right[i] *= gain
	}
}

func (c *Compressor) gainFor(env float32) float32 {
	if env <= c.threshold || c.threshold <= 0 {
		return 1.0
	}
	over := env / c.threshold
	return float32(math.Pow(float64(over), float64(1.0/c.ratio-1)))
}

func (c *Compressor) Reset() {
	c.env = 0
}
