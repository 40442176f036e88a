package producer

import (
	"strings"
	"time"

	"github.com/vividhyeok/loopcaster/internal/appstate"
	"github.com/vividhyeok/loopcaster/internal/catalogue"
	"github.com/vividhyeok/loopcaster/internal/dsp"
	"github.com/vividhyeok/loopcaster/internal/logging"
	"github.com/vividhyeok/loopcaster/internal/model"
	"go.uber.org/zap"
)

// WorkerCount is the default parallel fetch worker count.
const WorkerCount = 5

// Config holds the per-run tuning a Pool needs.
type Config struct {
	Search        string
	Region        string
	ListenSeconds int
	Bars          int
	BeatsPerBar   int
	BPM           model.BpmMode
	RateLimitMs   int
	BaseURL       string
	FFmpegPath    string
	BpmMin        float64
	BpmMax        float64
}

type clipMsg struct {
	buffer  model.LoopBuffer
	station model.Station
}

// Pool is the producer coordinator that spawns and manages the N parallel
// fetch workers.
type Pool struct {
	cfg   Config
	state *appstate.State
	log   logging.Logger

	cmdCh   chan CommandMsg
	eventCh chan Event
}

// New builds a Pool. Commands flow in on cmdCh, events flow out on eventCh
// (both owned by the caller, typically the sync loop).
func New(cfg Config, state *appstate.State, log logging.Logger, cmdCh chan CommandMsg, eventCh chan Event) *Pool {
	return &Pool{cfg: cfg, state: state, log: log, cmdCh: cmdCh, eventCh: eventCh}
}

// Run is the coordinator loop: it creates the shared cache, warms it up in
// the background, spawns WorkerCount staggered workers, and forwards
// completed clips and relayed commands until Quit.
func (p *Pool) Run() {
	sharedCache := catalogue.NewCache()
	warmupClient := catalogue.NewClient(p.cfg.BaseURL, p.cfg.RateLimitMs, sharedCache)
	go func() {
		if err := warmupClient.WarmUp(); err != nil {
			p.log.Warn("failed to warm up places cache", zap.Error(err))
		}
	}()

	clipCh := make(chan clipMsg, WorkerCount*3)

	for workerID := 0; workerID < WorkerCount; workerID++ {
		go p.runWorker(workerID, sharedCache, clipCh)
	}

	for {
		select {
		case clip, ok := <-clipCh:
			if !ok {
				continue
			}
			p.eventCh <- Event{Kind: EventLoopReady, Buffer: clip.buffer, Station: clip.station}

		case cmd, ok := <-p.cmdCh:
			if !ok {
				continue
			}
			switch cmd.Cmd {
			case CmdNextStation:
				p.log.Debug("received NextStation command")
				p.eventCh <- Event{Kind: EventSkipCurrent}
			case CmdAudioDeviceChanged:
				p.log.Debug("received AudioDeviceChanged command", zap.Int("device_index", cmd.DeviceIndex))
				p.eventCh <- Event{Kind: EventAudioDeviceChanged, DeviceIndex: cmd.DeviceIndex}
			case CmdQuit:
				p.log.Info("received Quit command")
				p.state.Quit()
				p.eventCh <- Event{Kind: EventShutdown}
				return
			}

		case <-time.After(50 * time.Millisecond):
			if p.state.IsQuitting() {
				p.eventCh <- Event{Kind: EventShutdown}
				return
			}
		}
	}
}

func (p *Pool) runWorker(workerID int, sharedCache *catalogue.Cache, clipCh chan<- clipMsg) {
	log := p.log.With(zap.Int("worker_id", workerID))
	log.Info("worker starting")

	client := catalogue.NewClient(p.cfg.BaseURL, p.cfg.RateLimitMs, sharedCache)
	pipeline := NewPipeline(p.cfg.FFmpegPath)

	// Worker 0 starts immediately; others stagger to avoid a thundering herd
	// on cold caches.
	if workerID > 0 {
		time.Sleep(time.Duration(workerID) * 200 * time.Millisecond)
	}

	// Workers 0 and 1 do a quick-start first clip for faster initial queue
	// filling.
	isFirstClip := workerID <= 1

	for !p.state.IsQuitting() {
		var buf model.LoopBuffer
		var station model.Station
		var err error

		if isFirstClip {
			isFirstClip = false
			buf, station, err = p.fetchAndProcessQuick(client, pipeline, log)
		} else {
			buf, station, err = p.fetchAndProcess(client, pipeline, log)
		}

		if err != nil {
			p.handleWorkerError(workerID, err, log)
		} else {
			clipCh <- clipMsg{buffer: buf, station: station}
		}

		time.Sleep(10 * time.Millisecond)
	}
	log.Info("worker stopping")
}

func (p *Pool) handleWorkerError(workerID int, err error, log logging.Logger) {
	isNotMusic := strings.Contains(err.Error(), dsp.ErrNotMusic.Error())
	if isNotMusic {
		log.Debug("station rejected (not music), trying another", zap.Error(err))
		return
	}
	log.Warn("worker failed to process station", zap.Error(err))
	time.Sleep(500 * time.Millisecond)
}

func (p *Pool) fetchAndProcess(client *catalogue.Client, pipeline *Pipeline, log logging.Logger) (model.LoopBuffer, model.Station, error) {
	station, err := client.NextStation(p.cfg.Search, p.cfg.Region)
	if err != nil {
		return model.LoopBuffer{}, model.Station{}, err
	}
	log.Debug("worker selected station", zap.String("name", station.Name), zap.String("country", station.Country))
	p.eventCh <- Event{Kind: EventStationSelected, Station: station}

	buf, err := pipeline.Process(station, p.cfg.ListenSeconds, p.cfg.BPM, p.cfg.Bars, p.cfg.BeatsPerBar)
	if err != nil {
		return model.LoopBuffer{}, model.Station{}, err
	}
	log.Info("worker clip ready", zap.Float64("bpm", buf.Info.TargetBPM), zap.Float64("duration_secs", buf.DurationSecs()))
	return buf, station, nil
}

func (p *Pool) fetchAndProcessQuick(client *catalogue.Client, pipeline *Pipeline, log logging.Logger) (model.LoopBuffer, model.Station, error) {
	station, err := client.NextStation(p.cfg.Search, p.cfg.Region)
	if err != nil {
		return model.LoopBuffer{}, model.Station{}, err
	}
	log.Info("quick-start: selected station", zap.String("name", station.Name))
	p.eventCh <- Event{Kind: EventStationSelected, Station: station}

	buf, err := pipeline.ProcessQuick(station, p.cfg.BeatsPerBar)
	if err != nil {
		return model.LoopBuffer{}, model.Station{}, err
	}
	log.Info("quick-start clip ready", zap.Float64("bpm", buf.Info.TargetBPM))
	return buf, station, nil
}
