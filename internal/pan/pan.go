// Package pan implements the equal-power stereo panner that splits a
// voice's mono render buffer into the dry stereo bus plus the reverb and
// chorus auxiliary send buses.
package pan

import (
	"math"

	"github.com/cbegin/sf2synth-go/internal/gen"
)

// Mix adds mono's contribution into the dry, reverb, and chorus buses
// in place. pan is in [0, 1] (0 = hard left, 0.5 = center, 1 = hard right).
// reverbSend and chorusSend are the SF2 effects-send generator values
// (0..1000); a zero send leaves the corresponding bus untouched. Mixing is
// additive: Mix never clears or resets the buses it writes into, since
// multiple voices share them across one render call.
func Mix(mono []float64, pan float64, reverbSend, chorusSend int, dryL, dryR, reverbL, reverbR, chorusL, chorusR []float32) {
	panLeft := math.Cos(math.Pi / 2 * pan)
	panRight := math.Sin(math.Pi / 2 * pan)

	for i, v := range mono {
		dryL[i] += float32(v * panLeft)
		dryR[i] += float32(v * panRight)
	}

	if reverbSend > 0 {
		gain := float64(reverbSend) / gen.ReverbDivider
		for i, v := range mono {
			reverbL[i] += float32(v * gain * panLeft)
			reverbR[i] += float32(v * gain * panRight)
		}
	}

	if chorusSend > 0 {
		gain := float64(chorusSend) / gen.ChorusDivider
		for i, v := range mono {
			chorusL[i] += float32(v * gain * panLeft)
			chorusR[i] += float32(v * gain * panRight)
		}
	}
}
