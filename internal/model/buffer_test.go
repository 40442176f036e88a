package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDeinterleaveInterleaveRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		channels := rapid.IntRange(1, 4).Draw(t, "channels")
		frames := rapid.IntRange(0, 256).Draw(t, "frames")
		samples := make([]float32, frames*channels)
		for i := range samples {
			samples[i] = rapid.Float32Range(-1, 1).Draw(t, "sample")
		}

		split := Deinterleave(samples, channels)
		back := Interleave(split)

		assert.Equal(t, samples, back)
	})
}

func TestExpectedFrames(t *testing.T) {
	// 2 bars, 4 beats/bar, 120 BPM, 48000 Hz: 8 beats * 24000 frames/beat.
	assert.Equal(t, 192000, ExpectedFrames(2, 4, 120, 48000))
}

func TestExpectedFramesZeroBPM(t *testing.T) {
	assert.Equal(t, 0, ExpectedFrames(2, 4, 0, 48000))
}

func TestLoopBufferDerivesDurationFrames(t *testing.T) {
	samples := make([]float32, 1000*Channels)
	buf := New(samples, LoopInfo{Bars: 1, BeatsPerBar: 4})

	assert.Equal(t, 1000, buf.FrameCount())
	assert.Equal(t, SampleRate, buf.Info.SampleRate)
	assert.InDelta(t, 1000.0/float64(SampleRate), buf.DurationSecs(), 1e-9)
}

func TestSamplesPerBar(t *testing.T) {
	samples := make([]float32, 1000*Channels)
	buf := New(samples, LoopInfo{Bars: 4, BeatsPerBar: 4})
	assert.Equal(t, 250, buf.SamplesPerBar())
}

func TestMonoMixdown(t *testing.T) {
	raw := RawAudio{Samples: []float32{1, -1, 0.5, 0.5}, SampleRate: 48000, Channels: 2}
	mono := raw.Mono()
	assert.Equal(t, []float32{0, 0.5}, mono)
}
