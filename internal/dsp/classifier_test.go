package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySilence(t *testing.T) {
	mono := make([]float32, 48000)
	result := Classify(mono)
	assert.Equal(t, Silence, result.Class)
}

func TestClassifyEmpty(t *testing.T) {
	result := Classify(nil)
	assert.Equal(t, Silence, result.Class)
}

func TestClassifyPureSine(t *testing.T) {
	const rate = 48000
	const freq = 440.0
	mono := make([]float32, rate*2)
	for i := range mono {
		mono[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}

	result := Classify(mono)

	// A clean tone has low zero-crossing variance, steady loudness and no
	// silent frames, which feed the music score. Its absolute-value histogram
	// is spread out, so the flatness proxy alone adds to the speech score,
	// which still stays below the speech threshold.
	assert.NotEqual(t, Speech, result.Class)
}

func TestRootMeanSquareOfSilence(t *testing.T) {
	assert.Equal(t, 0.0, rootMeanSquare(make([]float32, 100)))
}

func TestRootMeanSquareOfConstant(t *testing.T) {
	samples := make([]float32, 10)
	for i := range samples {
		samples[i] = 1
	}
	assert.InDelta(t, 1.0, rootMeanSquare(samples), 1e-9)
}
