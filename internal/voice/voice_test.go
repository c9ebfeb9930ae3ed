package voice

import (
	"math"
	"testing"

	"github.com/cbegin/sf2synth-go/internal/gen"
	"github.com/cbegin/sf2synth-go/internal/sampledump"
	"github.com/cbegin/sf2synth-go/internal/wavetable"
)

const sampleRate = 44100.0

func approxEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

// instantGenerators returns a generator array with near-instant envelope
// phases (delay/attack collapsed) so tests can reach hold/sustain quickly.
func instantGenerators() [gen.GeneratorsAmountTotal]int {
	var g [gen.GeneratorsAmountTotal]int
	g[gen.DelayVolEnv] = -15000
	g[gen.AttackVolEnv] = -15000
	g[gen.HoldVolEnv] = 15000
	g[gen.DelayModEnv] = -15000
	g[gen.AttackModEnv] = -15000
	g[gen.HoldModEnv] = 15000
	g[gen.InitialFilterFc] = 13500 // fully open
	g[gen.InitialFilterQ] = 0
	return g
}

func defaultControllerTable() []int {
	t := make([]int, gen.MIDIControllerTableSize)
	t[gen.NonCCIndexOffset+gen.SourcePitchWheel] = 8192
	t[gen.NonCCIndexOffset+gen.SourcePitchWheelRange] = 2 * 128
	return t
}

func newStoreFilledWithOnes(sampleID, length int) *sampledump.Store {
	data := make([]float32, length)
	for i := range data {
		data[i] = 1.0
	}
	store := sampledump.NewStore(sampleID + 1)
	store.Dump(sampleID, data)
	return store
}

func newTestVoice(g [gen.GeneratorsAmountTotal]int, blockLength int) *Voice {
	return New(CreateParams{
		MidiNote:     60,
		Velocity:     100,
		TargetKey:    60,
		RootKey:      60,
		Now:          0,
		SampleID:     0,
		PlaybackRate: 1.0,
		SampleStart:  0,
		SampleEnd:    44100,
		LoopingMode:  wavetable.NoLoop,
		Generators:   g,
	}, blockLength, sampleRate)
}

func TestRenderSilentWhenSampleAbsent(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	store := sampledump.NewStore(1) // sample never dumped

	dryL := make([]float32, 64)
	dryR := make([]float32, 64)
	rL, rR, cL, cR := make([]float32, 64), make([]float32, 64), make([]float32, 64), make([]float32, 64)

	v.Render(64, 0, 1.0/sampleRate, store, Vibrato{}, defaultControllerTable(), dryL, dryR, rL, rR, cL, cR)

	for i, s := range dryL {
		if s != 0 {
			t.Errorf("dryL[%d] = %f, want 0 while sample absent", i, s)
		}
	}
	if v.Finished() {
		t.Errorf("voice with absent sample should not be finished")
	}
}

func TestRenderProducesSignalOnceSamplePresent(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	store := newStoreFilledWithOnes(0, 44100)

	dryL := make([]float32, 64)
	dryR := make([]float32, 64)
	rL, rR, cL, cR := make([]float32, 64), make([]float32, 64), make([]float32, 64), make([]float32, 64)

	v.Render(64, 0, 1.0/sampleRate, store, Vibrato{}, defaultControllerTable(), dryL, dryR, rL, rR, cL, cR)

	nonZero := false
	for _, s := range dryL {
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Errorf("expected nonzero dry output once sample is present")
	}
}

func TestPitchWheelCentersBendsOneOctaveAtMax(t *testing.T) {
	controllers := defaultControllerTable()
	controllers[gen.NonCCIndexOffset+gen.SourcePitchWheelRange] = 12 * 128 // one octave range
	controllers[gen.NonCCIndexOffset+gen.SourcePitchWheel] = 8192
	centsAtCenter := pitchWheelCents(controllers)
	if centsAtCenter != 0 {
		t.Errorf("centered pitch wheel should contribute 0 cents, got %f", centsAtCenter)
	}

	controllers[gen.NonCCIndexOffset+gen.SourcePitchWheel] = 16384
	centsAtMax := pitchWheelCents(controllers)
	if !approxEqual(centsAtMax, 1200, 1e-6) {
		t.Errorf("full-up pitch wheel at 12-semitone range = %f cents, want 1200", centsAtMax)
	}
}

func TestPitchWheelDefaultRangeMatchesTwoSemitones(t *testing.T) {
	controllers := defaultControllerTable()
	controllers[gen.NonCCIndexOffset+gen.SourcePitchWheel] = 16384
	cents := pitchWheelCents(controllers)
	if !approxEqual(cents, 200, 1e-6) {
		t.Errorf("full-up pitch wheel at default 2-semitone range = %f cents, want 200", cents)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	v.Release(1.0)
	first := v.releaseStartTime
	v.Release(5.0)
	if v.releaseStartTime != first {
		t.Errorf("second Release call should be a no-op, releaseStartTime changed from %f to %f", first, v.releaseStartTime)
	}
}

func TestReleaseRespectsMinimumNoteLength(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	v.Release(0) // note-off arrives immediately at note-on
	want := gen.MinimumNoteLength
	if !approxEqual(v.releaseStartTime, want, 1e-9) {
		t.Errorf("releaseStartTime = %f, want %f (minimum note length)", v.releaseStartTime, want)
	}
}

func TestForceFastReleaseEntersReleaseEvenAfterPriorRelease(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	v.Release(1.0)
	v.ForceFastRelease(defaultControllerTable(), 2.0)
	if v.releaseStartTime == math.Inf(1) {
		t.Errorf("ForceFastRelease should schedule a release time")
	}
	if v.modulatedGenerators[gen.ReleaseVolEnv] != -7900 {
		t.Errorf("ForceFastRelease should pin releaseVolEnv to -7900, got %d", v.modulatedGenerators[gen.ReleaseVolEnv])
	}
}

func TestAdjustAfterDumpResumesWhereSampleWouldBe(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)

	// The sample arrives 50ms after note-on; the cursor must land where
	// playback would have been had it been present from the start.
	v.AdjustAfterDump(44100, 0.05)
	want := 1.0 * sampleRate * 0.05
	if !approxEqual(v.sample.Cursor, want, 1.0) {
		t.Errorf("cursor after deferred dump = %f, want ~%f", v.sample.Cursor, want)
	}
	if v.sample.End != 44100-1 {
		t.Errorf("sample end = %d, want %d", v.sample.End, 44100-1)
	}
}

func TestAdjustAfterDumpMarksFinishedPastEnd(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	v.sample.End = 100
	v.AdjustAfterDump(101, 10.0) // now far past startTime=0, cursor will exceed end
	if !v.Finished() {
		t.Errorf("voice should be finished once AdjustAfterDump's cursor passes sample end")
	}
}

func TestAdjustAfterDumpWrapsLoopCursor(t *testing.T) {
	g := instantGenerators()
	v := newTestVoice(g, 64)
	v.sample.LoopingMode = wavetable.Loop
	v.sample.LoopStart = 10
	v.sample.LoopEnd = 110
	v.AdjustAfterDump(1000, 10.0)
	if v.Finished() {
		t.Errorf("a looped voice should never finish from AdjustAfterDump")
	}
	if v.sample.Cursor < float64(v.sample.LoopStart) || v.sample.Cursor >= float64(v.sample.LoopEnd) {
		t.Errorf("looped cursor = %f, want within [%d, %d)", v.sample.Cursor, v.sample.LoopStart, v.sample.LoopEnd)
	}
}

func TestExclusiveClassExposesGeneratorValue(t *testing.T) {
	g := instantGenerators()
	g[gen.ExclusiveClass] = 5
	v := newTestVoice(g, 64)
	if v.ExclusiveClass() != 5 {
		t.Errorf("ExclusiveClass() = %d, want 5", v.ExclusiveClass())
	}
}
