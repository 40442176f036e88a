package dsp

import (
	"errors"
	"math"

	"github.com/vividhyeok/loopcaster/internal/model"
)

// ErrAudioTooShort is returned when the processed audio cannot cover the
// requested bar count at the target tempo.
var ErrAudioTooShort = errors.New("dsp: audio too short for requested bars")

// ErrNotMusic is returned by the quantizer's caller-visible classification
// gate; the quantizer itself does not classify, but producer workers wrap
// rejection in this sentinel so the worker backoff policy can distinguish
// it from transient failures.
var ErrNotMusic = errors.New("dsp: rejected, not music")

const onsetHop = 512
const onsetThreshold = 1.5
const onsetFloor = 0.01
const maxFadeSamples = 2048

// Quantize estimates the source BPM, optionally stretches to a
// fixed target, cut an onset-aligned, bar-exact segment, and apply edge
// fades.
func Quantize(raw model.RawAudio, mode model.BpmMode, bars, beatsPerBar int) (model.LoopBuffer, error) {
	mono := raw.Mono()
	env := Envelope(mono, raw.SampleRate)
	hop := EnvelopeHop(raw.SampleRate)

	minBPM, maxBPM := mode.MinBPM, mode.MaxBPM
	if mode.Fixed {
		// Detection still runs against a sane default range so source_bpm is
		// meaningful even in fixed mode.
		minBPM, maxBPM = 60, 200
	}
	detected := EstimateBPM(env, raw.SampleRate, hop, minBPM, maxBPM)

	var targetBPM, confidence float64
	audio := raw
	if mode.Fixed {
		targetBPM = mode.Target
		confidence = 1.0
		audio = Stretch(raw, detected.BPM, targetBPM)
	} else {
		targetBPM = detected.BPM
		confidence = detected.Confidence
	}

	targetFrames := model.ExpectedFrames(bars, beatsPerBar, targetBPM, model.SampleRate)
	targetSamples := targetFrames * model.Channels
	if len(audio.Samples) < targetSamples {
		return model.LoopBuffer{}, ErrAudioTooShort
	}

	onsets := detectOnsets(audio.Mono())
	start := findBestStart(len(audio.Samples), onsets, targetSamples)

	segment := make([]float32, targetSamples)
	copy(segment, audio.Samples[start:start+targetSamples])
	applyEdgeFades(segment)

	timeStretched := mode.Fixed && math.Abs(detected.BPM-targetBPM) > 0.5

	info := model.LoopInfo{
		TargetBPM:     targetBPM,
		SourceBPM:     detected.BPM,
		BPMConfidence: confidence,
		TimeStretched: timeStretched,
		Bars:          bars,
		BeatsPerBar:   beatsPerBar,
	}
	return model.New(segment, info), nil
}

// QuickQuantize implements the quick-start variant: no stretching, bars
// forced to 4, Unknown classification accepted upstream.
func QuickQuantize(raw model.RawAudio, beatsPerBar int) (model.LoopBuffer, error) {
	return Quantize(raw, model.BpmMode{Fixed: false, MinBPM: 60, MaxBPM: 200}, 4, beatsPerBar)
}

func detectOnsets(mono []float32) []int {
	var onsets []int
	prevEnergy := 0.0
	for i := 0; i*onsetHop < len(mono); i++ {
		start := i * onsetHop
		end := start + onsetHop
		if end > len(mono) {
			end = len(mono)
		}
		var sum float64
		for _, s := range mono[start:end] {
			v := float64(s)
			if v < 0 {
				v = -v
			}
			sum += v
		}
		energy := sum / float64(end-start)
		if energy > prevEnergy*onsetThreshold && energy > onsetFloor {
			onsets = append(onsets, start*model.Channels)
		}
		if energy < 0.001 {
			prevEnergy = 0.001
		} else {
			prevEnergy = energy
		}
	}
	return onsets
}

func findBestStart(totalSamples int, onsets []int, targetLen int) int {
	maxStart := totalSamples - targetLen
	if maxStart < 0 {
		maxStart = 0
	}
	for _, onset := range onsets {
		if onset < maxStart {
			return onset
		}
	}
	return 0
}

// applyEdgeFades applies a raised-cosine fade-in and matching fade-out over
// min(2048, len/4) samples to suppress clicks at the clip's own boundaries.
// This is distinct from the playback-time equal-power crossfade applied by
// the one-shot source.
func applyEdgeFades(samples []float32) {
	fadeSamples := maxFadeSamples
	if len(samples)/4 < fadeSamples {
		fadeSamples = len(samples) / 4
	}
	if fadeSamples <= 0 {
		return
	}
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		gain := float32(0.5 * (1 - math.Cos(math.Pi*t)))
		samples[i] *= gain
	}
	n := len(samples)
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		gain := float32(0.5 * (1 - math.Cos(math.Pi*t)))
		samples[n-1-i] *= gain
	}
}
