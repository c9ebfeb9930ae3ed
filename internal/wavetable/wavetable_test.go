package wavetable

import (
	"math"
	"testing"
)

const tolerance = 1e-6

func TestRenderNoLoopFinishesAtEnd(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4}
	vs := &VoiceSample{PlaybackRate: 1.0, End: 4, LoopingMode: NoLoop}
	output := make([]float64, 8)

	finished := Render(vs, false, data, output, 1.0)
	if !finished {
		t.Fatalf("expected voice to finish once past End")
	}
	if output[0] != 0 {
		t.Errorf("first sample = %f, want 0", output[0])
	}
}

func TestRenderLinearInterpolation(t *testing.T) {
	data := []float32{0, 10, 20, 30, 40}
	vs := &VoiceSample{PlaybackRate: 0.5, End: 4, LoopingMode: NoLoop}
	output := make([]float64, 2)

	Render(vs, false, data, output, 1.0)
	if math.Abs(output[0]-0.0) > tolerance {
		t.Errorf("output[0] = %f, want 0", output[0])
	}
	if math.Abs(output[1]-5.0) > tolerance {
		t.Errorf("output[1] = %f, want 5 (halfway between 0 and 10)", output[1])
	}
}

func TestRenderLoopWraps(t *testing.T) {
	data := []float32{0, 1, 2, 3}
	vs := &VoiceSample{PlaybackRate: 1.0, LoopStart: 0, LoopEnd: 4, LoopingMode: Loop, Cursor: 3}
	output := make([]float64, 4)

	finished := Render(vs, false, data, output, 1.0)
	if finished {
		t.Fatalf("a looping voice should never report finished")
	}
	// Cursor started at 3, should wrap back into [0, 4).
	if vs.Cursor < 0 || vs.Cursor >= 4 {
		t.Errorf("cursor %f should stay within loop bounds", vs.Cursor)
	}
}

func TestRenderLoopThenPlayStopsLoopingOnRelease(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5}
	vs := &VoiceSample{PlaybackRate: 1.0, LoopStart: 0, LoopEnd: 3, End: 5, LoopingMode: LoopThenPlay, Cursor: 0}
	output := make([]float64, 10)

	// In release, LoopThenPlay should play straight through past LoopEnd
	// instead of looping, and eventually finish at End.
	finished := Render(vs, true, data, output, 1.0)
	if !finished {
		t.Fatalf("LoopThenPlay in release should run to End and finish")
	}
}

func TestRenderTuningRatioScalesStep(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	vsSlow := &VoiceSample{PlaybackRate: 1.0, End: 7, LoopingMode: NoLoop}
	vsFast := &VoiceSample{PlaybackRate: 1.0, End: 7, LoopingMode: NoLoop}
	out := make([]float64, 2)

	Render(vsSlow, false, data, out, 1.0)
	Render(vsFast, false, data, out, 2.0)

	if vsFast.Cursor <= vsSlow.Cursor {
		t.Errorf("a higher tuning ratio should advance the cursor faster: slow=%f fast=%f", vsSlow.Cursor, vsFast.Cursor)
	}
}
