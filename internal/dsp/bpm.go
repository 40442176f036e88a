package dsp

import "math"

// BPMResult is the outcome of the tempo detector.
type BPMResult struct {
	BPM        float64
	Confidence float64
}

// Envelope computes a windowed-RMS energy envelope over a mono signal:
// window = rate/20 (~50ms), hop = window/2. This is the input to EstimateBPM.
func Envelope(mono []float32, rate int) []float64 {
	window := rate / 20
	if window < 1 {
		window = 1
	}
	hop := window / 2
	if hop < 1 {
		hop = 1
	}
	n := len(mono)
	if n < window {
		return nil
	}
	numFrames := (n-window)/hop + 1
	env := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * hop
		end := start + window
		if end > n {
			end = n
		}
		var sum float64
		for j := start; j < end; j++ {
			v := float64(mono[j])
			sum += v * v
		}
		cnt := end - start
		if cnt > 0 {
			env[i] = math.Sqrt(sum / float64(cnt))
		}
	}
	return env
}

// EstimateBPM runs autocorrelation of the energy envelope over
// the lag range implied by [minBPM, maxBPM]. Degenerate envelopes (< 2
// samples) return {120, 0}. The result is always clamped into the closed
// input range.
func EstimateBPM(env []float64, rate, hop int, minBPM, maxBPM float64) BPMResult {
	if len(env) < 2 {
		return BPMResult{BPM: 120, Confidence: 0}
	}
	envelopeRate := float64(rate) / float64(hop)

	minLag := int(math.Round(60.0 / maxBPM * envelopeRate))
	maxLag := int(math.Round(60.0 / minBPM * envelopeRate))
	if minLag < 1 {
		minLag = 1
	}
	halfLen := len(env) / 2
	if maxLag > halfLen {
		maxLag = halfLen
	}
	if maxLag < minLag {
		maxLag = minLag
	}

	var zeroLagEnergy float64
	for _, v := range env {
		zeroLagEnergy += v * v
	}
	zeroLagEnergy /= float64(len(env))
	if zeroLagEnergy <= 0 {
		zeroLagEnergy = 1
	}

	bestLag := minLag
	bestCorr := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		n := len(env) - lag
		if n <= 0 {
			continue
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += env[i] * env[i+lag]
		}
		corr := sum / float64(n) / zeroLagEnergy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	beatPeriodSec := float64(bestLag) / envelopeRate
	if beatPeriodSec <= 0 {
		return BPMResult{BPM: 120, Confidence: 0}
	}
	bpm := 60.0 / beatPeriodSec
	if bpm < minBPM {
		bpm = minBPM
	}
	if bpm > maxBPM {
		bpm = maxBPM
	}

	confidence := (bestCorr + 1) / 2
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return BPMResult{BPM: bpm, Confidence: confidence}
}

// EnvelopeHop returns the hop size Envelope used for a given rate, so callers
// can convert lags back to time without recomputing it.
func EnvelopeHop(rate int) int {
	window := rate / 20
	if window < 1 {
		window = 1
	}
	hop := window / 2
	if hop < 1 {
		hop = 1
	}
	return hop
}
