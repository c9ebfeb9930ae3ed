package lfo

import (
	"math"
	"testing"
)

const tolerance = 0.02

func TestTriangleBeforeStartIsSilent(t *testing.T) {
	v := Triangle(1.0, 5.0, 0.5)
	if v != 0 {
		t.Errorf("Triangle before startTime = %f, want 0", v)
	}
}

func TestTriangleZeroFrequencyIsSilent(t *testing.T) {
	v := Triangle(0, 0, 1.0)
	if v != 0 {
		t.Errorf("Triangle with zero frequency = %f, want 0", v)
	}
}

func TestTriangleStartsAtZero(t *testing.T) {
	// At currentTime == startTime, the waveform sits at its quarter-period
	// offset so it begins at 0 instead of jumping to -1.
	v := Triangle(0, 1.0, 0)
	if math.Abs(v) > tolerance {
		t.Errorf("Triangle at onset = %f, want ~0", v)
	}
}

func TestTriangleShapeOverOneCycle(t *testing.T) {
	freq := 1.0 // 1 Hz, 1 second period
	samples := 100
	values := make([]float64, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples)
		values[i] = Triangle(0, freq, t)
	}

	// Quarter period (t=0.25): falling from 0 down to -1.
	if math.Abs(values[25]-(-1.0)) > tolerance {
		t.Errorf("triangle at quarter period: got %f, want ~-1.0", values[25])
	}
	// Half period (t=0.5): back through 0.
	if math.Abs(values[50]) > tolerance {
		t.Errorf("triangle at half period: got %f, want ~0.0", values[50])
	}
	// Three-quarter period (t=0.75): at +1.
	if math.Abs(values[75]-1.0) > tolerance {
		t.Errorf("triangle at three-quarter period: got %f, want ~1.0", values[75])
	}
}

func TestTriangleStaysInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		currentTime := float64(i) * 0.001
		v := Triangle(0, 3.7, currentTime)
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("Triangle(%f) = %f out of [-1, 1]", currentTime, v)
		}
	}
}
