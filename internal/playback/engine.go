package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/vividhyeok/loopcaster/internal/model"
	"go.uber.org/zap"
)

// ErrDeviceUnavailable is returned when no playback device exists at all.
var ErrDeviceUnavailable = errors.New("playback: no audio device available")

// DeviceOpenFailedError wraps a specific-device open failure.
type DeviceOpenFailedError struct {
	Index int
	Err   error
}

func (e *DeviceOpenFailedError) Error() string {
	return fmt.Sprintf("playback: failed to open device %d: %v", e.Index, e.Err)
}
func (e *DeviceOpenFailedError) Unwrap() error { return e.Err }

// Logger is the minimal logging surface the engine needs; satisfied by
// internal/logging.Logger.
type Logger interface {
	Warn(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...zap.Field)  {}
func (nopLogger) Debug(string, ...zap.Field) {}

// Engine owns a malgo device handle and a FIFO sink of one-shot sources.
// It is owned exclusively by the sync loop; workers never touch it.
type Engine struct {
	log Logger

	malgoCtx *malgo.AllocatedContext

	mu      sync.Mutex // guards queue + device lifecycle; dataCallback holds it for its whole sample copy loop
	queue   []*oneShotSource
	device  *malgo.Device
	volume  float64
	devIdx  int
	devices []model.DeviceDescriptor
}

// NewEngine initializes the underlying audio context. Call Open to start a
// device.
func NewEngine(log Logger) (*Engine, error) {
	if log == nil {
		log = nopLogger{}
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("playback: init context: %w", err)
	}
	return &Engine{log: log, malgoCtx: ctx, volume: 1.0, devIdx: -1}, nil
}

// ListDevices enumerates the available playback devices.
func (e *Engine) ListDevices() ([]model.DeviceDescriptor, error) {
	infos, err := e.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("playback: enumerate devices: %w", err)
	}
	out := make([]model.DeviceDescriptor, len(infos))
	for i, info := range infos {
		out[i] = model.DeviceDescriptor{Name: info.Name(), Index: i}
	}
	e.devices = out
	return out, nil
}

// DefaultDeviceIndex returns -1: malgo opens the system default device when
// no explicit DeviceID is set on DeviceConfig.
func (e *Engine) DefaultDeviceIndex() int { return -1 }

// Open starts a device at the given index, or the default if deviceIdx < 0.
// On a specific-index failure it falls back to the default and logs.
func (e *Engine) Open(deviceIdx int) error {
	if err := e.open(deviceIdx); err != nil {
		if deviceIdx >= 0 {
			e.log.Warn("device open failed, falling back to default", zap.Int("index", deviceIdx), zap.Error(err))
			if ferr := e.open(-1); ferr != nil {
				return &DeviceOpenFailedError{Index: deviceIdx, Err: ferr}
			}
			return nil
		}
		return &DeviceOpenFailedError{Index: deviceIdx, Err: err}
	}
	return nil
}

func (e *Engine) open(deviceIdx int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.device != nil {
		e.device.Uninit()
		e.device = nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = model.Channels
	deviceConfig.SampleRate = model.SampleRate
	deviceConfig.PeriodSizeInFrames = 1024
	deviceConfig.Periods = 3

	if deviceIdx >= 0 {
		infos, err := e.malgoCtx.Devices(malgo.Playback)
		if err != nil {
			return err
		}
		if deviceIdx >= len(infos) {
			return fmt.Errorf("device index %d out of range (have %d)", deviceIdx, len(infos))
		}
		deviceConfig.Playback.DeviceID = infos[deviceIdx].ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{Data: e.dataCallback}
	device, err := malgo.InitDevice(e.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return err
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return err
	}
	e.device = device
	e.devIdx = deviceIdx
	return nil
}

// dataCallback runs on the platform's real-time audio thread. It must never
// block on the async runtime; the only synchronization is the engine mutex,
// held for the whole callback while samples are copied from the queue.
func (e *Engine) dataCallback(output, _ []byte, frameCount uint32) {
	totalFloats := int(frameCount) * model.Channels
	vol := e.volumeSnapshot()

	e.mu.Lock()
	defer e.mu.Unlock()

	written := 0
	for written < totalFloats {
		if len(e.queue) == 0 {
			writeSilence(output, written, totalFloats)
			return
		}
		head := e.queue[0]
		for written < totalFloats {
			sample, ok := head.next()
			if !ok {
				e.queue = e.queue[1:]
				break
			}
			writeFloat32(output, written, sample*float32(vol))
			written++
		}
	}
}

func (e *Engine) volumeSnapshot() float64 {
	return e.volume
}

func writeFloat32(buf []byte, floatIdx int, v float32) {
	i := floatIdx * 4
	if i+4 > len(buf) {
		return
	}
	binary.LittleEndian.PutUint32(buf[i:i+4], math.Float32bits(v))
}

func writeSilence(buf []byte, fromFloatIdx, toFloatIdx int) {
	for i := fromFloatIdx; i < toFloatIdx; i++ {
		writeFloat32(buf, i, 0)
	}
}

// Play clears the sink and appends buf as the head source, ensuring
// playback.
func (e *Engine) Play(buf model.LoopBuffer) {
	e.mu.Lock()
	e.queue = []*oneShotSource{newOneShotSource(buf)}
	e.mu.Unlock()
}

// Append pushes buf at the tail of the sink.
func (e *Engine) Append(buf model.LoopBuffer) {
	e.mu.Lock()
	e.queue = append(e.queue, newOneShotSource(buf))
	e.mu.Unlock()
}

// SkipOne drops the currently-playing source so the next in queue begins
// immediately.
func (e *Engine) SkipOne() {
	e.mu.Lock()
	if len(e.queue) > 0 {
		e.queue = e.queue[1:]
	}
	e.mu.Unlock()
}

// Stop empties the sink.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.queue = nil
	e.mu.Unlock()
}

// QueueLen returns the number of pending sources, including the one
// currently playing.
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// IsFinished reports whether the queue is empty.
func (e *Engine) IsFinished() bool { return e.QueueLen() == 0 }

// IsPlaying reports whether the sink is non-empty.
func (e *Engine) IsPlaying() bool { return !e.IsFinished() }

// SetVolume sets the linear playback gain in [0,1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
}

// Volume returns the current linear playback gain.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Close releases the device and context.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.device != nil {
		e.device.Uninit()
		e.device = nil
	}
	e.mu.Unlock()
	if e.malgoCtx != nil {
		e.malgoCtx.Uninit()
		e.malgoCtx.Free()
	}
}
