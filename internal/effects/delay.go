package effects

// Delay is a master-bus echo with feedback and cross-channel bleed. Unlike
// the send-bus effects it processes the full mix, so the input is kept and
// the echo is added on top at the wet level.
type Delay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	cross      float32
	wet        float32
}

// NewDelay creates a delay sized for sampleRate.
// delayMs: echo time in milliseconds
// feedback: repeat amount 0..1
// cross: how much each repeat bleeds into the opposite channel, 0..1
// wet: echo level added onto the mix, 0..1
func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *Delay {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	return &Delay{
		bufL:     make([]float32, samples),
		bufR:     make([]float32, samples),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(left, right []float32) {
	for i := range left {
		echoL := d.bufL[d.pos]
		echoR := d.bufR[d.pos]

		d.bufL[d.pos] = left[i] + echoL*d.feedback*(1-d.cross) + echoR*d.feedback*d.cross
		d.bufR[d.pos] = right[i] + echoR*d.feedback*(1-d.cross) + echoL*d.feedback*d.cross

		d.pos++
		if d.pos >= len(d.bufL) {
			d.pos = 0
		}

		left[i] += echoL * d.wet
		right[i] += echoR * d.wet
	}
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
}
