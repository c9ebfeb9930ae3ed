package effects

import "math"

// Chorus processes the engine's chorus send bus: a modulated fractional
// delay whose left and right read taps run in quadrature, spreading the
// send across the stereo field. Like Reverb it is wet-only — the bus
// carries nothing but the voices' chorus amounts.
type Chorus struct {
	bufL, bufR []float32
	pos        int
	size       int
	base       float64 // centre delay in samples
	depth      float64 // modulation depth in samples
	rate       float64 // modulation rate in radians per sample
	phase      float64
	feedback   float32
	level      float32
}

// NewChorus creates a chorus sized for sampleRate.
// delayMs: base delay time in ms (typically 5-30ms)
// feedback: feedback amount 0..1
// depthMs: modulation depth in ms
// rateHz: modulation rate in Hz (typically 0.1-5Hz)
// level: output level of the processed send
func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, level float32) *Chorus {
	baseSamples := int(float64(delayMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	return &Chorus{
		bufL:     make([]float32, size),
		bufR:     make([]float32, size),
		size:     size,
		base:     float64(baseSamples),
		depth:    depthSamples,
		rate:     2.0 * math.Pi * float64(rateHz) / float64(sampleRate),
		feedback: clamp(feedback, 0, 0.9),
		level:    clamp(level, 0, 1),
	}
}

// Process replaces the send block with its chorused form.
func (c *Chorus) Process(left, right []float32) {
	for i := range left {
		modL := math.Sin(c.phase) * c.depth
		modR := math.Cos(c.phase) * c.depth
		c.phase += c.rate
		if c.phase > 2*math.Pi {
			c.phase -= 2 * math.Pi
		}

		c.bufL[c.pos] = left[i]
		c.bufR[c.pos] = right[i]

		wetL := c.tap(c.bufL, c.base+modL)
		wetR := c.tap(c.bufR, c.base+modR)

		c.bufL[c.pos] += wetL * c.feedback
		c.bufR[c.pos] += wetR * c.feedback

		c.pos++
		if c.pos >= c.size {
			c.pos = 0
		}

		left[i] = wetL * c.level
		right[i] = wetR * c.level
	}
}

// tap reads the delay line at a fractional offset behind the write head,
// linearly interpolating between the neighboring samples.
func (c *Chorus) tap(buf []float32, delay float64) float32 {
	readPos := float64(c.pos) - delay
	for readPos < 0 {
		readPos += float64(c.size)
	}
	for readPos >= float64(c.size) {
		readPos -= float64(c.size)
	}
	idx := int(readPos)
	frac := float32(readPos - float64(idx))
	next := idx + 1
	if next >= c.size {
		next = 0
	}
	return buf[idx]*(1-frac) + buf[next]*frac
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.phase = 0
}
