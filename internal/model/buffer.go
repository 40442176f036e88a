// Package model holds the shared, allocation-light data types that flow
// between the DSP pipeline, the producer pool, the playback engine and the
// TUI.
package model

import "math"

// Channels is the fixed internal channel count. The pipeline never varies it.
const Channels = 2

// SampleRate is the fixed internal sample rate in Hz.
const SampleRate = 48000

// RawAudio is interleaved f32 PCM with an explicit rate and channel count.
// It is transient: it lives only between the decoder and the quantizer.
type RawAudio struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// FrameCount returns the number of per-channel frames in the buffer.
func (r RawAudio) FrameCount() int {
	if r.Channels == 0 {
		return 0
	}
	return len(r.Samples) / r.Channels
}

// Mono mixes down to a single channel by averaging across channels.
func (r RawAudio) Mono() []float32 {
	if r.Channels <= 1 {
		out := make([]float32, len(r.Samples))
		copy(out, r.Samples)
		return out
	}
	frames := r.FrameCount()
	out := make([]float32, frames)
	ch := r.Channels
	for i := 0; i < frames; i++ {
		var sum float32
		base := i * ch
		for c := 0; c < ch; c++ {
			sum += r.Samples[base+c]
		}
		out[i] = sum / float32(ch)
	}
	return out
}

// BpmMode selects whether the quantizer targets a fixed tempo or accepts the
// detected tempo as-is within a range.
type BpmMode struct {
	Fixed   bool
	Target  float64 // valid when Fixed
	MinBPM  float64 // valid when !Fixed
	MaxBPM  float64 // valid when !Fixed
}

// LoopInfo describes the tempo and shape of a LoopBuffer.
type LoopInfo struct {
	TargetBPM      float64
	SourceBPM      float64
	BPMConfidence  float64
	TimeStretched  bool
	Bars           int
	BeatsPerBar    int
	DurationFrames int
	SampleRate     int
}

// LoopBuffer is an immutable, freely shareable stereo PCM clip shaped to an
// exact number of bars at a fixed tempo. Once constructed it is never
// mutated: a worker builds it, publishes it by message, and from then on any
// number of readers (the engine, a UI snapshot) may hold it concurrently.
type LoopBuffer struct {
	Samples []float32 // read-only after New
	Info    LoopInfo
}

// New builds a LoopBuffer and derives DurationFrames from the sample count.
func New(samples []float32, info LoopInfo) LoopBuffer {
	info.SampleRate = SampleRate
	info.DurationFrames = len(samples) / Channels
	return LoopBuffer{Samples: samples, Info: info}
}

// DurationSecs returns the clip's length in seconds.
func (b LoopBuffer) DurationSecs() float64 {
	if b.Info.SampleRate == 0 {
		return 0
	}
	return float64(b.Info.DurationFrames) / float64(b.Info.SampleRate)
}

// FrameCount returns the number of per-channel frames.
func (b LoopBuffer) FrameCount() int {
	return b.Info.DurationFrames
}

// SamplesPerBar returns how many frames make up a single bar.
func (b LoopBuffer) SamplesPerBar() int {
	if b.Info.Bars == 0 {
		return 0
	}
	return b.Info.DurationFrames / b.Info.Bars
}

// ExpectedFrames computes bars * beats_per_bar * round(60/bpm * rate), the
// invariant target frame count a quantized clip at the given tempo must have.
func ExpectedFrames(bars, beatsPerBar int, bpm float64, rate int) int {
	if bpm <= 0 {
		return 0
	}
	framesPerBeat := math.Round(60.0 / bpm * float64(rate))
	return int(float64(bars*beatsPerBar) * framesPerBeat)
}

// Station identifies a single resolved radio channel. Immutable after
// resolution.
type Station struct {
	ID        string
	Name      string
	Country   string
	PlaceName string
	Latitude  float64
	Longitude float64
	StreamURL string
	Website   string // optional, carried from the original catalogue record
}

// Settings is the mutable-by-input-loop-only configuration read by the sync
// loop. The producer pool gets its Config built from it once at startup and
// does not see later changes.
type Settings struct {
	Search          string
	Region          string
	ListenSeconds   int
	Bars            int
	BeatsPerBar     int
	BPM             BpmMode
	RateLimitMs     int
	DeviceIndex     int // -1 means default
	Devices         []DeviceDescriptor
	Volume          float64
}

// DeviceDescriptor is a playback device as exposed by the playback engine.
type DeviceDescriptor struct {
	Name  string
	Index int
}

// QueueEntry is the TUI-facing view of a pending clip.
type QueueEntry struct {
	Station  Station
	LoopInfo LoopInfo
}

// Deinterleave splits an interleaved buffer into one slice per channel.
func Deinterleave(samples []float32, channels int) [][]float32 {
	frames := len(samples) / channels
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * channels
		for c := 0; c < channels; c++ {
			out[c][i] = samples[base+c]
		}
	}
	return out
}

// Interleave is the inverse of Deinterleave; round-tripping through both is
// the identity for any input whose length is divisible by channels.
func Interleave(channelsData [][]float32) []float32 {
	if len(channelsData) == 0 {
		return nil
	}
	frames := len(channelsData[0])
	channels := len(channelsData)
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		base := i * channels
		for c := 0; c < channels; c++ {
			out[base+c] = channelsData[c][i]
		}
	}
	return out
}
