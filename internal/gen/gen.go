// Package gen holds the shared constants of the SF2 synthesis model: the
// generator enumeration, the MIDI controller table layout, and the handful
// of magic numbers the rest of the engine is built around.
package gen

// Index identifies one of the 60 SF2 generators.
type Index int

// Generator indices, per the SF2.01 enumeration. Several slots (instrument
// zone selection, key/velocity ranges, reserved/unused) are inert for this
// engine since patch/preset selection is out of scope, but the indices are
// kept complete so a voice's generator array lines up with real SF2 data.
const (
	StartAddrsOffset           Index = 0
	EndAddrOffset              Index = 1
	StartloopAddrsOffset       Index = 2
	EndloopAddrsOffset         Index = 3
	StartAddrsCoarseOffset     Index = 4
	ModLfoToPitch              Index = 5
	VibLfoToPitch              Index = 6
	ModEnvToPitch              Index = 7
	InitialFilterFc            Index = 8
	InitialFilterQ             Index = 9
	ModLfoToFilterFc           Index = 10
	ModEnvToFilterFc           Index = 11
	EndAddrsCoarseOffset       Index = 12
	ModLfoToVolume             Index = 13
	Unused1                    Index = 14
	ChorusEffectsSend          Index = 15
	ReverbEffectsSend          Index = 16
	Pan                        Index = 17
	Unused2                    Index = 18
	Unused3                    Index = 19
	Unused4                    Index = 20
	DelayModLFO                Index = 21
	FreqModLFO                 Index = 22
	DelayVibLFO                Index = 23
	FreqVibLFO                 Index = 24
	DelayModEnv                Index = 25
	AttackModEnv               Index = 26
	HoldModEnv                 Index = 27
	DecayModEnv                Index = 28
	SustainModEnv              Index = 29
	ReleaseModEnv              Index = 30
	KeyNumToModEnvHold         Index = 31
	KeyNumToModEnvDecay        Index = 32
	DelayVolEnv                Index = 33
	AttackVolEnv               Index = 34
	HoldVolEnv                 Index = 35
	DecayVolEnv                Index = 36
	SustainVolEnv              Index = 37
	ReleaseVolEnv              Index = 38
	KeyNumToVolEnvHold         Index = 39
	KeyNumToVolEnvDecay        Index = 40
	Instrument                 Index = 41
	Reserved1                  Index = 42
	KeyRange                   Index = 43
	VelRange                   Index = 44
	StartloopAddrsCoarseOffset Index = 45
	KeyNum                     Index = 46
	Velocity                   Index = 47
	InitialAttenuation         Index = 48
	Reserved2                  Index = 49
	EndloopAddrsCoarseOffset   Index = 50
	CoarseTune                 Index = 51
	FineTune                   Index = 52
	SampleID                   Index = 53
	SampleModes                Index = 54
	Reserved3                  Index = 55
	ScaleTuning                Index = 56
	ExclusiveClass             Index = 57
	OverridingRootKey          Index = 58
	Unused5                    Index = 59

	// GeneratorsAmountTotal is the fixed length of a voice's generator array.
	GeneratorsAmountTotal = 60
)

// Pan range, in the generator's own units (tenths of a percent, signed).
const (
	GeneratorsPanMinimum = -500
	GeneratorsPanMaximum = 500
)

// Effect send dividers: reverbEffectsSend/chorusEffectsSend (range 0-1000)
// are scaled down to a 0-2 gain by these.
const (
	ReverbDivider = 500
	ChorusDivider = 500
)

// Volume envelope silence sentinels.
const (
	DbSilence   = 100.0
	GainSilence = 0.005
)

// Modulation envelope constants.
const (
	ModulationEnvelopeConvexLength = 1000
	ModulationEnvelopePeak         = 1.0
)

// Modulator transform table dimensions.
const (
	ModulatorTransformPrecomputedLength = 16384
	CurveTypesAmount                    = 4
	PolaritiesAmount                    = 2
	DirectionsAmount                    = 2
)

// Lookup table bounds for internal/unitconv.
const (
	MinTimecent = -15000
	MaxTimecent = 15000
	MinAbsCent  = -20000 // freqVibLfo
	MaxAbsCent  = 16500  // filterFc
)

// NonCCIndexOffset is where the non-CC tail of the controller table begins.
const NonCCIndexOffset = 128

// MIDIControllerTableSize is the length of a channel's controller table:
// 128 MIDI CC slots plus a 19-wide non-CC tail (pitch wheel, channel
// pressure, pitch range, tuning, transpose, ...).
const MIDIControllerTableSize = 147

// MinimumNoteLength is the shortest a note-on to release-start gap may be;
// a note-off arriving sooner just delays the release so the note is audible.
const MinimumNoteLength = 0.03 // seconds

// MIDI CC indices used directly by the channel/engine (subset that the
// engine special-cases or defaults; all other CCs just sit in the table for
// modulators to read).
const (
	CCMainVolume          = 7
	CCPan                 = 10
	CCExpression          = 11
	CCSustainPedal        = 64
	CCReleaseTime         = 72
	CCBrightness          = 74
	CCResetAllControllers = 121
)

// Non-CC source indices, matching Modulator.SourceEnums in the original
// implementation. These double as offsets into the controller table's
// non-CC tail (NonCCIndexOffset + index).
const (
	SourceNoController     = 0
	SourceNoteOnVelocity   = 2
	SourceNoteOnKeyNum     = 3
	SourcePolyPressure     = 10
	SourceChannelPressure  = 13
	SourcePitchWheel       = 14
	SourcePitchWheelRange  = 16
	SourceChannelTuning    = 17
	SourceChannelTranspose = 18
	SourceLink             = 127
)
