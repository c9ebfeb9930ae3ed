package sf2synth

import (
	"encoding/binary"
	"testing"
)

func TestRenderOfflineSilentWithoutEvents(t *testing.T) {
	e := New(44100.0, 1, 1024)
	e.AddNewChannel()

	out := RenderOffline(e, nil, 44100, 0.1)
	if len(out) != 4410*2 {
		t.Fatalf("len(out) = %d, want %d", len(out), 4410*2)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %f, want 0 with no events", i, s)
		}
	}
}

func TestRenderOfflineProducesSignalFromNoteOn(t *testing.T) {
	e := New(44100.0, 1, 1024)
	ch := e.AddNewChannel()
	data := make([]float32, 44100)
	for i := range data {
		data[i] = 1
	}
	e.DumpSample(0, data, 0)

	events := []OfflineEvent{{
		AtSeconds: 0,
		Apply: func(e *Engine, now float64) error {
			return e.CreateVoice(CreateVoiceParams{
				Channel:      ch,
				MidiNote:     60,
				Velocity:     100,
				TargetKey:    60,
				RootKey:      60,
				Now:          now,
				SampleID:     0,
				PlaybackRate: 1.0,
				SampleEnd:    44100,
				Generators:   instantGenerators(),
			})
		},
	}}

	out := RenderOffline(e, events, 44100, 0.1)
	nonZero := false
	for _, s := range out {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Errorf("expected nonzero samples after a note-on event")
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 48000, 2)

	if len(wav) != 44+len(samples)*4 {
		t.Fatalf("len(wav) = %d, want %d", len(wav), 44+len(samples)*4)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE tags")
	}
	if format := binary.LittleEndian.Uint16(wav[20:]); format != 3 {
		t.Errorf("format = %d, want 3 (IEEE float)", format)
	}
	if channels := binary.LittleEndian.Uint16(wav[22:]); channels != 2 {
		t.Errorf("channels = %d, want 2", channels)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != 48000 {
		t.Errorf("sample rate = %d, want 48000", rate)
	}
	if dataSize := binary.LittleEndian.Uint32(wav[40:]); dataSize != uint32(len(samples)*4) {
		t.Errorf("data size = %d, want %d", dataSize, len(samples)*4)
	}
}
