// Package modulator evaluates SF2 modulators: each one reads one or two
// controller-driven sources through a precomputed transfer curve and adds a
// delta into a voice's modulated generator array. The transfer curves
// (linear/concave/convex/switch, each in both polarities and directions)
// are expensive to evaluate directly, so they are precomputed once into a
// shared lookup table and indexed thereafter.
package modulator

import (
	"math"
	"sync"

	"github.com/cbegin/sf2synth-go/internal/gen"
)

// CurveType selects a modulator source's transfer function.
type CurveType int

const (
	LinearCurve  CurveType = 0
	ConcaveCurve CurveType = 1
	ConvexCurve  CurveType = 2
	SwitchCurve  CurveType = 3
)

const transformLength = gen.ModulatorTransformPrecomputedLength

var (
	tableOnce  sync.Once
	transforms [gen.CurveTypesAmount][gen.PolaritiesAmount][gen.DirectionsAmount][transformLength]float64
)

func ensureTransforms() {
	tableOnce.Do(buildTransforms)
}

func buildTransforms() {
	var concavePositiveUnipolar, convexPositiveUnipolar [transformLength]float64
	concavePositiveUnipolar[0] = 0.0
	concavePositiveUnipolar[transformLength-1] = 1.0
	convexPositiveUnipolar[0] = 0.0
	convexPositiveUnipolar[transformLength-1] = 1.0

	// Formula matches FluidSynth's gen_conv.c table generator, the
	// de facto reference for SF2 modulator curves.
	for i := 1; i < transformLength-1; i++ {
		x := -200.0 * 2.0 / 960.0 * math.Log(float64(i)/(transformLength-1.0)) / math.Ln10
		convexPositiveUnipolar[i] = 1 - x
		concavePositiveUnipolar[transformLength-1-i] = x
	}

	for curveType := 0; curveType < gen.CurveTypesAmount; curveType++ {
		for polarity := 0; polarity < gen.PolaritiesAmount; polarity++ {
			for direction := 0; direction < gen.DirectionsAmount; direction++ {
				for i := 0; i < transformLength; i++ {
					transforms[curveType][polarity][direction][i] = curveValue(
						direction == 1, CurveType(curveType), i, polarity == 1,
						&concavePositiveUnipolar, &convexPositiveUnipolar)
				}
			}
		}
	}
}

func curveValue(direction bool, curveType CurveType, initialValue int, polarity bool, concave, convex *[transformLength]float64) float64 {
	// Normalize the raw 14-bit input to [0, 1] before shaping.
	value := float64(initialValue) / (transformLength - 1)
	if direction {
		value = 1.0 - value
	}

	switch curveType {
	case LinearCurve:
		if polarity {
			return value*2.0 - 1.0
		}
		return value

	case SwitchCurve:
		if value > 0.5 {
			value = 1.0
		} else {
			value = 0.0
		}
		if polarity {
			return value*2.0 - 1.0
		}
		return value

	case ConcaveCurve:
		if polarity {
			value = value*2.0 - 1.0
			if value < 0.0 {
				return -concave[curveIndex(-value)]
			}
			return concave[curveIndex(value)]
		}
		return concave[curveIndex(value)]

	case ConvexCurve:
		if polarity {
			value = value*2.0 - 1.0
			if value < 0.0 {
				return -convex[curveIndex(-value)]
			}
			return convex[curveIndex(value)]
		}
		return convex[curveIndex(value)]

	default:
		return 0.0
	}
}

// curveIndex maps a normalized value back to a table slot.
func curveIndex(value float64) int {
	idx := int(value * (transformLength - 1))
	if idx < 0 {
		return 0
	}
	if idx > transformLength-1 {
		return transformLength - 1
	}
	return idx
}

// Spec is an immutable modulator definition, decoded once at construction
// from the five-field wire representation {sourceEnum, secSourceEnum,
// destination, transformAmount, transformType}.
type Spec struct {
	destination     gen.Index
	transformAmount int
	transformType   int // 0 linear, 2 absolute value

	sourcePolarity, sourceDirection, sourceUsesCC bool
	sourceIndex                                   int
	sourceCurveType                               CurveType

	secSourcePolarity, secSourceDirection, secSourceUsesCC bool
	secSourceIndex                                         int
	secSourceCurveType                                     CurveType
}

// NewSpec decodes a modulator from its wire fields. The caller is expected
// to have validated destination against the generator array bounds.
func NewSpec(sourceEnum, secSourceEnum int, destination gen.Index, transformAmount, transformType int) Spec {
	ensureTransforms()
	return Spec{
		destination:     destination,
		transformAmount: transformAmount,
		transformType:   transformType,

		sourcePolarity:  (sourceEnum>>9)&1 == 1,
		sourceDirection: (sourceEnum>>8)&1 == 1,
		sourceUsesCC:    (sourceEnum>>7)&1 == 1,
		sourceIndex:     sourceEnum & 127,
		sourceCurveType: CurveType((sourceEnum >> 10) & 3),

		secSourcePolarity:  (secSourceEnum>>9)&1 == 1,
		secSourceDirection: (secSourceEnum>>8)&1 == 1,
		secSourceUsesCC:    (secSourceEnum>>7)&1 == 1,
		secSourceIndex:     secSourceEnum & 127,
		secSourceCurveType: CurveType((secSourceEnum >> 10) & 3),
	}
}

// Destination exposes the generator index this modulator writes to.
func (s Spec) Destination() gen.Index { return s.destination }

func (s Spec) rawSource(controllerTable []int, midiNote, velocity int, index int, usesCC bool) (int, bool) {
	if usesCC {
		return controllerTable[index], true
	}

	switch index {
	case gen.SourceNoController:
		return 0, false // fluid_mod.c: zero times anything is zero, skip entirely
	case gen.SourceNoteOnKeyNum:
		return midiNote << 7, true
	case gen.SourceNoteOnVelocity, gen.SourcePolyPressure:
		return velocity << 7, true
	case gen.SourceLink:
		return 0, false // linked modulators unsupported
	default:
		return tableRead(controllerTable, index+gen.NonCCIndexOffset), true
	}
}

func (s Spec) secondaryRawSource(controllerTable []int, midiNote, velocity int) int {
	if s.secSourceUsesCC {
		return controllerTable[s.secSourceIndex]
	}
	switch s.secSourceIndex {
	case gen.SourceNoController:
		return 16383 // fluid_mod.c: absent secondary source defaults to "full scale"
	case gen.SourceNoteOnKeyNum:
		return midiNote << 7
	case gen.SourceNoteOnVelocity, gen.SourcePolyPressure:
		return velocity << 7
	default:
		return tableRead(controllerTable, s.secSourceIndex+gen.NonCCIndexOffset)
	}
}

// tableRead guards against modulators naming a non-CC source the controller
// table has no slot for; those read as 0 rather than panicking.
func tableRead(controllerTable []int, index int) int {
	if index < 0 || index >= len(controllerTable) {
		return 0
	}
	return controllerTable[index]
}

// Apply evaluates the modulator against the channel's controller table and
// the voice's midiNote/velocity, adding its contribution into
// modulatedGenerators[destination]. transformAmount == 0 and an unsupported
// primary source both short-circuit to a no-op.
func (s Spec) Apply(controllerTable []int, modulatedGenerators []int, midiNote, velocity int) {
	if s.transformAmount == 0 {
		return
	}

	rawSource, ok := s.rawSource(controllerTable, midiNote, velocity, s.sourceIndex, s.sourceUsesCC)
	if !ok {
		return
	}
	sourceValue := transforms[s.sourceCurveType][polarityIndex(s.sourcePolarity)][directionIndex(s.sourceDirection)][clampRaw(rawSource)]

	rawSecond := s.secondaryRawSource(controllerTable, midiNote, velocity)
	secondValue := transforms[s.secSourceCurveType][polarityIndex(s.secSourcePolarity)][directionIndex(s.secSourceDirection)][clampRaw(rawSecond)]

	// Per the SF2 modulator contribution formula, each transformed
	// source is truncated to an integer before multiplying.
	computed := int(sourceValue) * int(secondValue) * s.transformAmount
	if s.transformType == 2 {
		computed = abs(computed)
	}

	modulatedGenerators[s.destination] += computed
}

func polarityIndex(p bool) int {
	if p {
		return 1
	}
	return 0
}

func directionIndex(d bool) int {
	if d {
		return 1
	}
	return 0
}

// clampRaw pins an input to the transform tables' 14-bit domain.
func clampRaw(v int) int {
	if v < 0 {
		return 0
	}
	if v > transformLength-1 {
		return transformLength - 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
