// Package playback is the device-owning playback engine and the one-shot
// lazy sample source it feeds through a FIFO, built on
// github.com/gen2brain/malgo.
package playback

import (
	"math"

	"github.com/vividhyeok/loopcaster/internal/model"
)

// oneShotSource is a finite lazy sample iterator over a LoopBuffer with an
// equal-power fade-in/fade-out envelope glued around it so adjacent clips
// crossfade without a perceived loudness dip. next performs only index
// arithmetic and table lookups: no allocation, no locking, no call back
// into the runtime, so it is safe to run on the real-time audio thread.
type oneShotSource struct {
	samples     []float32
	position    int
	fadeSamples int
}

func newOneShotSource(buf model.LoopBuffer) *oneShotSource {
	fadeSamples := len(buf.Samples) / 2

	bpm := buf.Info.TargetBPM
	var beatFade int
	if bpm > 0 {
		beatFade = int(math.Round(60.0 / bpm * model.SampleRate * model.Channels))
	} else {
		beatFade = int(0.5 * model.SampleRate * model.Channels)
	}
	if beatFade < fadeSamples {
		fadeSamples = beatFade
	}

	return &oneShotSource{samples: buf.Samples, fadeSamples: fadeSamples}
}

// next returns the next sample with the crossfade envelope applied, and
// whether the source has more samples to emit.
func (s *oneShotSource) next() (float32, bool) {
	if s.position >= len(s.samples) {
		return 0, false
	}
	sample := s.samples[s.position] * s.fadeInGain(s.position) * s.fadeOutGain(s.position)
	s.position++
	return sample, true
}

func (s *oneShotSource) remaining() int {
	return len(s.samples) - s.position
}

func (s *oneShotSource) fadeInGain(pos int) float32 {
	if s.fadeSamples <= 0 || pos >= s.fadeSamples {
		return 1
	}
	t := float64(pos) / float64(s.fadeSamples)
	return float32(math.Sin(t * math.Pi / 2))
}

func (s *oneShotSource) fadeOutGain(pos int) float32 {
	if s.fadeSamples <= 0 {
		return 1
	}
	tailStart := len(s.samples) - s.fadeSamples
	if pos < tailStart {
		return 1
	}
	t := float64(pos-tailStart) / float64(s.fadeSamples)
	return float32(math.Cos(t * math.Pi / 2))
}
