package hostaudio

import "testing"

type fakeEngine struct {
	calls int
}

func (f *fakeEngine) RenderAudio(bufferLength int, currentTime float64, outputsLeft, outputsRight [][]float32) {
	f.calls++
	// Write a constant into the dry bus (index 2) so Process's output is
	// verifiable.
	for i := 0; i < bufferLength; i++ {
		outputsLeft[2][i] = 0.5
		outputsRight[2][i] = -0.5
	}
}

func TestProcessMixesDryBusIntoOutput(t *testing.T) {
	engine := &fakeEngine{}
	src := New(engine, 44100, nil, nil, nil)

	dst := make([]float32, 8) // 4 frames
	src.Process(dst)

	for i := 0; i < 4; i++ {
		if dst[i*2] != 0.5 {
			t.Errorf("frame %d left = %f, want 0.5", i, dst[i*2])
		}
		if dst[i*2+1] != -0.5 {
			t.Errorf("frame %d right = %f, want -0.5", i, dst[i*2+1])
		}
	}
}

func TestProcessRendersAdditionalBlocksAsNeeded(t *testing.T) {
	engine := &fakeEngine{}
	src := New(engine, 44100, nil, nil, nil)
	src.blockSize = 4 // force multiple block renders across one Process call

	dst := make([]float32, 20) // 10 frames, needs 3 blocks of size 4
	src.Process(dst)

	if engine.calls < 3 {
		t.Errorf("expected at least 3 RenderAudio calls for 10 frames at blockSize 4, got %d", engine.calls)
	}
}
