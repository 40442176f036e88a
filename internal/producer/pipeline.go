package producer

import (
	"fmt"

	"github.com/vividhyeok/loopcaster/internal/capture"
	"github.com/vividhyeok/loopcaster/internal/decode"
	"github.com/vividhyeok/loopcaster/internal/dsp"
	"github.com/vividhyeok/loopcaster/internal/model"
)

// Pipeline runs capture -> decode -> classify -> quantize for a single
// station: capture, decode, classify, quantize.
type Pipeline struct {
	Capturer *capture.Capturer
	Decoder  *decode.Decoder
}

// NewPipeline builds a Pipeline with its own capturer and decoder instances;
// each worker owns one so no DSP state is shared.
func NewPipeline(ffmpegPath string) *Pipeline {
	return &Pipeline{Capturer: capture.New(), Decoder: decode.New(ffmpegPath)}
}

// Process runs the full pipeline: capture -> decode -> classify -> quantize.
// Music and Unknown are accepted; Speech and Silence reject the clip.
func (p *Pipeline) Process(station model.Station, listenSeconds int, bpmMode model.BpmMode, bars, beatsPerBar int) (model.LoopBuffer, error) {
	raw, err := p.captureAndDecode(station.StreamURL, listenSeconds)
	if err != nil {
		return model.LoopBuffer{}, err
	}

	class := dsp.Classify(raw.Mono())
	if class.Class == dsp.Speech || class.Class == dsp.Silence {
		return model.LoopBuffer{}, fmt.Errorf("%w: %s", dsp.ErrNotMusic, class.Class)
	}

	return dsp.Quantize(raw, bpmMode, bars, beatsPerBar)
}

// ProcessQuick is the quick-start variant: shorter capture, no stretch,
// bars forced to 4, and it accepts Unknown but still rejects Silence.
func (p *Pipeline) ProcessQuick(station model.Station, beatsPerBar int) (model.LoopBuffer, error) {
	const quickListenSeconds = 6
	raw, err := p.captureAndDecode(station.StreamURL, quickListenSeconds)
	if err != nil {
		return model.LoopBuffer{}, err
	}

	class := dsp.Classify(raw.Mono())
	if class.Class == dsp.Silence {
		return model.LoopBuffer{}, fmt.Errorf("%w: %s", dsp.ErrNotMusic, class.Class)
	}

	return dsp.QuickQuantize(raw, beatsPerBar)
}

func (p *Pipeline) captureAndDecode(streamURL string, listenSeconds int) (model.RawAudio, error) {
	bytes, err := p.Capturer.Capture(streamURL, listenSeconds)
	if err != nil {
		return model.RawAudio{}, err
	}
	return p.Decoder.Decode(bytes)
}
