package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/model"
)

func sineRaw(freq float64, seconds int) model.RawAudio {
	const rate = model.SampleRate
	n := rate * seconds
	samples := make([]float32, n*model.Channels)
	for i := 0; i < n; i++ {
		v := float32(math.Sin(2 * math.Pi * freq * float64(i) / rate))
		samples[i*model.Channels] = v
		samples[i*model.Channels+1] = v
	}
	return model.RawAudio{Samples: samples, SampleRate: rate, Channels: model.Channels}
}

func TestStretchSameBPMIsUnchanged(t *testing.T) {
	raw := sineRaw(220, 2)
	out := Stretch(raw, 120, 120)

	assert.Equal(t, raw.Samples, out.Samples)
}

func TestStretchOutputLengthMatchesRatioWithinOneFrame(t *testing.T) {
	raw := sineRaw(220, 4)
	srcFrames := raw.FrameCount()

	out := Stretch(raw, 100, 130)

	ratio := 100.0 / 130.0
	expected := int(math.Round(float64(srcFrames) * ratio))
	got := out.FrameCount()

	assert.LessOrEqual(t, abs(got-expected), 1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
