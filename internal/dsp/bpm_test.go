package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEstimateBPMClickTrack(t *testing.T) {
	const rate = 48000
	hop := EnvelopeHop(rate)
	envelopeRate := float64(rate) / float64(hop)

	// A perfectly periodic envelope at 120 BPM: one spike every beat period.
	const targetBPM = 120.0
	beatPeriodSamples := int(envelopeRate * 60.0 / targetBPM)

	env := make([]float64, beatPeriodSamples*16)
	for i := 0; i < len(env); i += beatPeriodSamples {
		env[i] = 1.0
	}

	result := EstimateBPM(env, rate, hop, 70, 170)

	assert.InDelta(t, targetBPM, result.BPM, 2.0)
}

func TestEstimateBPMAlwaysWithinRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		minBPM := rapid.Float64Range(60, 100).Draw(t, "min")
		maxBPM := rapid.Float64Range(minBPM+1, 200).Draw(t, "max")
		n := rapid.IntRange(2, 500).Draw(t, "n")
		env := make([]float64, n)
		for i := range env {
			env[i] = rapid.Float64Range(0, 1).Draw(t, "v")
		}

		result := EstimateBPM(env, 48000, EnvelopeHop(48000), minBPM, maxBPM)

		assert.GreaterOrEqual(t, result.BPM, minBPM)
		assert.LessOrEqual(t, result.BPM, maxBPM)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	})
}

func TestEstimateBPMDegenerateEnvelope(t *testing.T) {
	result := EstimateBPM([]float64{1}, 48000, EnvelopeHop(48000), 70, 170)
	assert.Equal(t, 120.0, result.BPM)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestEnvelopeLength(t *testing.T) {
	mono := make([]float32, 48000)
	env := Envelope(mono, 48000)
	assert.NotEmpty(t, env)
}
