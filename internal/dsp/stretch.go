package dsp

import (
	"math"
	"math/cmplx"

	"github.com/vividhyeok/loopcaster/internal/model"
)

// Stretch changes tempo without changing pitch. Ratio r = srcBPM/tgtBPM; if
// |r-1| < 0.01 the input is returned unchanged (copied). Otherwise it
// produces round(len*r) output frames at the new tempo via a phase-vocoder:
// each channel is processed independently (de-interleaved, then
// re-interleaved) using the FFT primitives above.
func Stretch(raw model.RawAudio, srcBPM, tgtBPM float64) model.RawAudio {
	ratio := srcBPM / tgtBPM
	if math.Abs(ratio-1) < 0.01 {
		out := make([]float32, len(raw.Samples))
		copy(out, raw.Samples)
		return model.RawAudio{Samples: out, SampleRate: raw.SampleRate, Channels: raw.Channels}
	}

	channelsData := model.Deinterleave(raw.Samples, raw.Channels)
	stretched := make([][]float32, len(channelsData))
	for c, ch := range channelsData {
		stretched[c] = phaseVocoderStretch(ch, ratio)
	}

	// All channels should already agree in length; guard against rounding
	// drift by trimming to the shortest.
	minLen := -1
	for _, ch := range stretched {
		if minLen < 0 || len(ch) < minLen {
			minLen = len(ch)
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	for c := range stretched {
		stretched[c] = stretched[c][:minLen]
	}

	out := model.Interleave(stretched)
	return model.RawAudio{Samples: out, SampleRate: raw.SampleRate, Channels: raw.Channels}
}

const stretchFrameSize = 2048
const stretchHop = stretchFrameSize / 4 // 75% overlap

// phaseVocoderStretch resamples a mono signal in time by ratio while
// preserving pitch: the analysis hop stays fixed, the synthesis hop is
// scaled by ratio (ratio<1 compresses time i.e. plays faster).
func phaseVocoderStretch(samples []float32, ratio float64) []float32 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	synthHop := int(math.Round(float64(stretchHop) * ratio))
	if synthHop < 1 {
		synthHop = 1
	}

	window := hannWindow(stretchFrameSize)
	// Cover the whole input; frames past the end are zero-padded below.
	numFrames := (n + stretchHop - 1) / stretchHop
	if numFrames < 1 {
		numFrames = 1
	}

	outLen := (numFrames-1)*synthHop + stretchFrameSize
	if wantLen := int(math.Round(float64(n) * ratio)); wantLen > outLen {
		outLen = wantLen
	}
	out := make([]float64, outLen)
	norm := make([]float64, outLen)

	prevPhase := make([]float64, stretchFrameSize/2+1)
	sumPhase := make([]float64, stretchFrameSize/2+1)
	frame := make([]complex128, stretchFrameSize)
	mag := make([]float64, stretchFrameSize/2+1)
	phase := make([]float64, stretchFrameSize/2+1)

	binFreq := 2 * math.Pi * float64(stretchHop) / float64(stretchFrameSize)

	for i := 0; i < numFrames; i++ {
		start := i * stretchHop
		for k := range frame {
			frame[k] = 0
		}
		for j := 0; j < stretchFrameSize && start+j < n; j++ {
			frame[j] = complex(float64(samples[start+j])*window[j], 0)
		}
		spec := fft(frame)
		for j := range mag {
			mag[j] = cmplx.Abs(spec[j])
			phase[j] = cmplx.Phase(spec[j])
		}

		if i == 0 {
			copy(sumPhase, phase)
		} else {
			for j := range phase {
				delta := phase[j] - prevPhase[j] - float64(j)*binFreq
				delta = wrapPhase(delta)
				trueFreq := float64(j)*binFreq + delta
				sumPhase[j] += trueFreq * float64(synthHop) / float64(stretchHop)
			}
		}
		copy(prevPhase, phase)

		// Resynthesize this frame with the accumulated phase.
		synFrame := make([]complex128, stretchFrameSize)
		for j := range mag {
			re := mag[j] * math.Cos(sumPhase[j])
			im := mag[j] * math.Sin(sumPhase[j])
			synFrame[j] = complex(re, im)
			if j > 0 && j < stretchFrameSize/2 {
				synFrame[stretchFrameSize-j] = complex(re, -im)
			}
		}
		timeFrame := ifft(synFrame)

		synStart := i * synthHop
		for j := 0; j < stretchFrameSize; j++ {
			idx := synStart + j
			if idx >= outLen {
				break
			}
			w := window[j]
			out[idx] += real(timeFrame[j]) * w
			norm[idx] += w * w
		}
	}

	result := make([]float32, outLen)
	for i := range result {
		if norm[i] > 1e-8 {
			result[i] = float32(out[i] / norm[i])
		}
	}

	targetLen := int(math.Round(float64(n) * ratio))
	if targetLen > len(result) {
		targetLen = len(result)
	}
	return result[:targetLen]
}

func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p < -math.Pi {
		p += 2 * math.Pi
	}
	return p
}

// ifft computes the inverse transform via the forward FFT on the conjugate.
func ifft(x []complex128) []complex128 {
	n := len(x)
	conj := make([]complex128, n)
	for i, v := range x {
		conj[i] = cmplx.Conj(v)
	}
	out := fft(conj)
	for i := range out {
		out[i] = cmplx.Conj(out[i]) / complex(float64(n), 0)
	}
	return out
}
