// Package syncloop is the coordinator that owns the playback engine, drains
// producer events, polls TUI input, and keeps the displayed "now playing" in
// phase with what is actually being sampled out.
package syncloop

import (
	"time"

	"github.com/vividhyeok/loopcaster/internal/appstate"
	"github.com/vividhyeok/loopcaster/internal/logging"
	"github.com/vividhyeok/loopcaster/internal/model"
	"github.com/vividhyeok/loopcaster/internal/playback"
	"github.com/vividhyeok/loopcaster/internal/producer"
	"github.com/vividhyeok/loopcaster/internal/tui"
	"go.uber.org/zap"
)

const tickInterval = 16 * time.Millisecond
const inputPollInterval = 50 * time.Millisecond

// InputSource is polled non-blockingly for a TUI command; satisfied by a
// terminal backend the core treats as an external collaborator.
type InputSource interface {
	PollCommand() (tui.Command, bool)
}

// Renderer receives one Frame per tick.
type Renderer interface {
	Render(tui.Frame)
}

// Loop drives one playback session end to end.
type Loop struct {
	engine *playback.Engine
	state  *appstate.State
	log    logging.Logger

	cmdCh   chan producer.CommandMsg
	eventCh chan producer.Event

	input    InputSource
	renderer Renderer

	history       tui.History
	queue         []model.QueueEntry
	status        tui.PlayStatus
	errMsg        string
	current       *tui.NowPlaying
	currentEndAt  time.Time
	lastInputPoll time.Time
}

// New builds a Loop wired to the given engine, shared state, producer
// channels, input source and renderer.
func New(engine *playback.Engine, state *appstate.State, log logging.Logger,
	cmdCh chan producer.CommandMsg, eventCh chan producer.Event,
	input InputSource, renderer Renderer) *Loop {
	return &Loop{
		engine: engine, state: state, log: log,
		cmdCh: cmdCh, eventCh: eventCh,
		input: input, renderer: renderer,
		status: tui.Idle,
	}
}

// Run executes the ~60Hz tick loop until a Shutdown event or Quit command.
func (l *Loop) Run() {
	for {
		if l.tick() {
			return
		}
		time.Sleep(tickInterval)
	}
}

// tick runs one iteration and reports whether the loop should stop.
func (l *Loop) tick() bool {
	l.pollInput()

	if l.drainEvents() {
		return true
	}

	now := time.Now()
	if !l.currentEndAt.IsZero() && now.After(l.currentEndAt) || now.Equal(l.currentEndAt) {
		if len(l.queue) > 0 && !l.currentEndAt.IsZero() {
			l.advanceNowPlaying()
		}
	}

	if l.renderer != nil {
		l.renderer.Render(l.buildFrame())
	}
	return false
}

func (l *Loop) pollInput() {
	if l.input == nil {
		return
	}
	now := time.Now()
	if now.Sub(l.lastInputPoll) < inputPollInterval {
		return
	}
	l.lastInputPoll = now

	cmd, ok := l.input.PollCommand()
	if !ok {
		return
	}
	switch cmd {
	case tui.Quit:
		l.cmdCh <- producer.CommandMsg{Cmd: producer.CmdQuit}
	case tui.NextStation:
		l.cmdCh <- producer.CommandMsg{Cmd: producer.CmdNextStation}
	case tui.ToggleBpmMode:
		l.state.UpdateSettings(func(s *model.Settings) { s.BPM.Fixed = !s.BPM.Fixed })
	case tui.CycleBarsUp:
		l.state.UpdateSettings(func(s *model.Settings) { s.Bars = nextBars(s.Bars, 1) })
	case tui.CycleBarsDown:
		l.state.UpdateSettings(func(s *model.Settings) { s.Bars = nextBars(s.Bars, -1) })
	case tui.CycleAudioDevice:
		next := l.nextDeviceIndex()
		l.state.UpdateSettings(func(s *model.Settings) { s.DeviceIndex = next })
		l.cmdCh <- producer.CommandMsg{Cmd: producer.CmdAudioDeviceChanged, DeviceIndex: next}
	}
}

var barSteps = []int{1, 2, 4, 8, 16}

func nextBars(current, dir int) int {
	idx := 0
	for i, b := range barSteps {
		if b == current {
			idx = i
			break
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx >= len(barSteps) {
		idx = len(barSteps) - 1
	}
	return barSteps[idx]
}

func (l *Loop) nextDeviceIndex() int {
	settings := l.state.Settings()
	if len(settings.Devices) == 0 {
		return -1
	}
	return (settings.DeviceIndex + 1) % len(settings.Devices)
}

// drainEvents processes all currently-pending producer events and reports
// whether a Shutdown was seen.
func (l *Loop) drainEvents() bool {
	for {
		select {
		case ev := <-l.eventCh:
			if l.handleEvent(ev) {
				return true
			}
		default:
			return false
		}
	}
}

func (l *Loop) handleEvent(ev producer.Event) (shutdown bool) {
	switch ev.Kind {
	case producer.EventStationSelected:
		if l.current == nil && len(l.queue) == 0 {
			l.status = tui.Loading
		}
	case producer.EventLoopReady:
		entry := model.QueueEntry{Station: ev.Station, LoopInfo: ev.Buffer.Info}
		if l.engine.IsFinished() {
			l.engine.Play(ev.Buffer)
			l.current = &tui.NowPlaying{Station: ev.Station, LoopInfo: ev.Buffer.Info}
			l.currentEndAt = time.Now().Add(time.Duration(ev.Buffer.DurationSecs() * float64(time.Second)))
			l.status = tui.Playing
		} else {
			l.engine.Append(ev.Buffer)
			l.queue = append(l.queue, entry)
		}
	case producer.EventError:
		l.status = tui.ErrorStatus
		l.errMsg = ev.Err.Error()
	case producer.EventSkipCurrent:
		l.engine.SkipOne()
		l.advanceNowPlaying()
	case producer.EventAudioDeviceChanged:
		l.engine.Stop()
		if err := l.engine.Open(ev.DeviceIndex); err != nil {
			l.log.Warn("device switch failed, restoring default", zap.Error(err))
			l.state.UpdateSettings(func(s *model.Settings) { s.DeviceIndex = -1 })
			l.status = tui.ErrorStatus
			l.errMsg = err.Error()
		}
		l.currentEndAt = time.Time{}
	case producer.EventShutdown:
		return true
	}
	return false
}

// advanceNowPlaying moves the TUI's now-playing pointer to the next queue
// entry and recomputes the authoritative end-time estimate. The engine's
// internal queue length lags reality and is never consulted for this.
func (l *Loop) advanceNowPlaying() {
	if len(l.queue) == 0 {
		l.current = nil
		l.currentEndAt = time.Time{}
		if l.engine.IsFinished() {
			l.status = tui.Idle
		}
		return
	}
	next := l.queue[0]
	l.queue = l.queue[1:]
	l.history.Push(next.Station)
	l.current = &tui.NowPlaying{Station: next.Station, LoopInfo: next.LoopInfo}
	l.currentEndAt = time.Now().Add(time.Duration(next.LoopInfo.DurationFrames) * time.Second / time.Duration(next.LoopInfo.SampleRate))
	l.status = tui.Playing
}

func (l *Loop) buildFrame() tui.Frame {
	np := l.current
	if np != nil && !l.currentEndAt.IsZero() {
		dur := time.Duration(np.LoopInfo.DurationFrames) * time.Second / time.Duration(np.LoopInfo.SampleRate)
		elapsed := dur - time.Until(l.currentEndAt)
		if dur > 0 {
			np.Progress = clamp01(elapsed.Seconds() / dur.Seconds())
		}
	}
	return tui.Frame{
		Status:     l.status,
		ErrorMsg:   l.errMsg,
		NowPlaying: np,
		Queue:      append([]model.QueueEntry(nil), l.queue...),
		History:    l.history.Snapshot(),
		Settings:   l.state.Settings(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
