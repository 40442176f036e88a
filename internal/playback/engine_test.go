package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/model"
)

// newTestEngine builds an Engine with no real device, for exercising the
// sink/queue logic in isolation from the audio hardware.
func newTestEngine() *Engine {
	return &Engine{log: nopLogger{}, volume: 1.0, devIdx: -1}
}

func TestEnginePlayReplacesQueue(t *testing.T) {
	e := newTestEngine()
	e.Play(makeLoopBuffer(1000, 120))
	assert.Equal(t, 1, e.QueueLen())

	e.Play(makeLoopBuffer(2000, 120))
	assert.Equal(t, 1, e.QueueLen())
}

func TestEngineAppendGrowsQueue(t *testing.T) {
	e := newTestEngine()
	e.Play(makeLoopBuffer(1000, 120))
	e.Append(makeLoopBuffer(1000, 120))
	e.Append(makeLoopBuffer(1000, 120))

	assert.Equal(t, 3, e.QueueLen())
}

func TestEngineSkipOneAdvancesQueue(t *testing.T) {
	e := newTestEngine()
	e.Play(makeLoopBuffer(1000, 120))
	e.Append(makeLoopBuffer(1000, 120))

	e.SkipOne()

	assert.Equal(t, 1, e.QueueLen())
}

func TestEngineStopEmptiesQueue(t *testing.T) {
	e := newTestEngine()
	e.Play(makeLoopBuffer(1000, 120))
	e.Append(makeLoopBuffer(1000, 120))

	e.Stop()

	assert.True(t, e.IsFinished())
	assert.False(t, e.IsPlaying())
}

func TestEngineDataCallbackIsDeterministicAcrossBuffers(t *testing.T) {
	e := newTestEngine()
	samples := make([]float32, 512*model.Channels)
	for i := range samples {
		samples[i] = 0.25
	}
	buf := model.New(samples, model.LoopInfo{TargetBPM: 120, Bars: 1, BeatsPerBar: 4})
	e.Play(buf)

	out1 := make([]byte, 256*model.Channels*4)
	out2 := make([]byte, 256*model.Channels*4)
	e2 := newTestEngine()
	e2.Play(buf)

	e.dataCallback(out1, nil, 256)
	e2.dataCallback(out2, nil, 256)

	assert.Equal(t, out1, out2)
}

func TestEngineVolume(t *testing.T) {
	e := newTestEngine()
	e.SetVolume(0.5)
	assert.Equal(t, 0.5, e.Volume())
}
