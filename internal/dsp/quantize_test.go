package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/model"
)

// synthesizeClickTrack builds `seconds` of stereo audio at the given fixed BPM by
// layering short decaying bursts on every beat, which both the onset
// detector and the autocorrelation detector can lock onto.
func synthesizeClickTrack(bpm float64, seconds int) model.RawAudio {
	const rate = model.SampleRate
	total := rate * seconds
	mono := make([]float32, total)
	beatPeriod := int(60.0 / bpm * float64(rate))
	burstLen := 200
	for beatStart := 0; beatStart < total; beatStart += beatPeriod {
		for i := 0; i < burstLen && beatStart+i < total; i++ {
			decay := 1.0 - float64(i)/float64(burstLen)
			mono[beatStart+i] = float32(decay * math.Sin(2*math.Pi*220*float64(i)/rate))
		}
	}
	samples := make([]float32, total*model.Channels)
	for i, v := range mono {
		samples[i*model.Channels] = v
		samples[i*model.Channels+1] = v
	}
	return model.RawAudio{Samples: samples, SampleRate: rate, Channels: model.Channels}
}

func TestQuantizeFixedBPMProducesExactFrameCount(t *testing.T) {
	raw := synthesizeClickTrack(120, 10)

	buf, err := Quantize(raw, model.BpmMode{Fixed: true, Target: 120}, 2, 4)

	assert.NoError(t, err)
	assert.Equal(t, 192000, buf.FrameCount())
	assert.Equal(t, 120.0, buf.Info.TargetBPM)
}

func TestQuantizeRejectsTooShortAudio(t *testing.T) {
	raw := synthesizeClickTrack(120, 1)

	_, err := Quantize(raw, model.BpmMode{Fixed: true, Target: 120}, 8, 4)

	assert.ErrorIs(t, err, ErrAudioTooShort)
}

func TestQuickQuantizeForcesFourBars(t *testing.T) {
	raw := synthesizeClickTrack(120, 10)

	buf, err := QuickQuantize(raw, 4)

	assert.NoError(t, err)
	assert.Equal(t, 4, buf.Info.Bars)
}

func TestApplyEdgeFadesZeroesEndpoints(t *testing.T) {
	samples := make([]float32, 8192)
	for i := range samples {
		samples[i] = 1
	}
	applyEdgeFades(samples)

	assert.InDelta(t, 0, samples[0], 1e-6)
	assert.InDelta(t, 0, samples[len(samples)-1], 1e-6)
	assert.InDelta(t, 1, samples[len(samples)/2], 1e-6)
}
