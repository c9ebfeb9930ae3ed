package effects

// Reverb turns the engine's reverb send bus into a diffuse tail: a
// Schroeder reverberator (four parallel combs into two series allpasses)
// fed by the mono sum of the bus block. The output replaces the bus
// content entirely — the send already carries only the voices' reverb
// amounts, so the untouched dry signal is on the dry bus, not here.
type Reverb struct {
	combs   [4]comb
	allpass [2]allpass
	level   float32
}

type comb struct {
	buf []float32
	pos int
	fb  float32
}

type allpass struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb sized for sampleRate.
// roomSize: 0..1 scales the comb delay lengths
// feedback: 0..1 controls decay time
// level: output level of the processed send, 0 muting the bus
func NewReverb(sampleRate int, roomSize, feedback, level float32) *Reverb {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(feedback, 0, 0.95)
	r := &Reverb{level: clamp(level, 0, 1)}

	// Prime-ish length ratios so the combs don't reinforce one resonance.
	combLengths := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i] = comb{buf: make([]float32, combLengths[i]), fb: fb}
	}
	allpassLengths := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		n := allpassLengths[i]
		if n < 1 {
			n = 1
		}
		r.allpass[i] = allpass{buf: make([]float32, n), fb: 0.5}
	}
	return r
}

// Process replaces the send block with its reverberated form.
func (r *Reverb) Process(left, right []float32) {
	for i := range left {
		in := (left[i] + right[i]) * 0.5

		var acc float32
		for c := range r.combs {
			acc += r.combs[c].process(in)
		}
		acc *= 0.25
		for a := range r.allpass {
			acc = r.allpass[a].process(acc)
		}

		out := acc * r.level
		left[i] = out
		right[i] = out
	}
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].clear()
	}
	for i := range r.allpass {
		r.allpass[i].clear()
	}
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *comb) clear() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
}

func (a *allpass) process(in float32) float32 {
	buffered := a.buf[a.pos]
	out := buffered - in
	a.buf[a.pos] = in + buffered*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpass) clear() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}
