// Command loopcaster is the entrypoint: it parses flags, loads the optional
// config file, opens the audio device, starts the producer pool and runs the
// sync loop until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/vividhyeok/loopcaster/internal/appstate"
	"github.com/vividhyeok/loopcaster/internal/config"
	"github.com/vividhyeok/loopcaster/internal/logging"
	"github.com/vividhyeok/loopcaster/internal/model"
	"github.com/vividhyeok/loopcaster/internal/playback"
	"github.com/vividhyeok/loopcaster/internal/producer"
	"github.com/vividhyeok/loopcaster/internal/syncloop"
	"github.com/vividhyeok/loopcaster/internal/tui"
)

const defaultBaseURL = "https://radio.garden/api"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    = pflag.String("config", "", "path to a YAML config file")
		search        = pflag.String("search", "", "station search query; empty selects at random")
		region        = pflag.String("region", "", "ISO country code to restrict station selection")
		listenSeconds = pflag.Int("listen-seconds", 0, "seconds of stream to capture per clip (0 = config default)")
		bars          = pflag.Int("bars", 0, "bars per loop (0 = config default)")
		beatsPerBar   = pflag.Int("beats-per-bar", 0, "beats per bar (0 = config default)")
		fixedBPM      = pflag.Float64("bpm", 0, "fixed target BPM; 0 disables fixed mode and uses --min-bpm/--max-bpm")
		minBPM        = pflag.Float64("min-bpm", 0, "minimum accepted detected BPM (0 = config default)")
		maxBPM        = pflag.Float64("max-bpm", 0, "maximum accepted detected BPM (0 = config default)")
		rateLimitMs   = pflag.Int("rate-limit-ms", 0, "minimum delay between catalogue requests per worker (0 = config default)")
		baseURL       = pflag.String("base-url", defaultBaseURL, "catalogue API base URL")
		ffmpegPath    = pflag.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary used for decoding")
		deviceIndex   = pflag.Int("device", -1, "playback device index; -1 selects the system default")
		logFile       = pflag.String("log-file", "loopcaster.log", "path to the rolling JSON log file")
		verbose       = pflag.Bool("verbose", false, "log a debug line noting verbose mode; the log file records debug-level entries either way")
		listDevices   = pflag.Bool("list-devices", false, "list playback devices and exit")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopcaster: loading config: %v\n", err)
		return 1
	}

	settings := model.Settings{
		Search:        firstNonEmpty(*search, cfg.Search),
		Region:        firstNonEmpty(*region, cfg.Region),
		ListenSeconds: firstNonZeroInt(*listenSeconds, cfg.ListenSeconds),
		Bars:          firstNonZeroInt(*bars, cfg.Bars),
		BeatsPerBar:   firstNonZeroInt(*beatsPerBar, cfg.BeatsPerBar),
		RateLimitMs:   firstNonZeroInt(*rateLimitMs, cfg.RateLimitMs),
		DeviceIndex:   *deviceIndex,
		Volume:        1.0,
	}
	bpm := *fixedBPM
	if bpm == 0 {
		bpm = cfg.FixedBPM
	}
	if bpm > 0 {
		settings.BPM = model.BpmMode{Fixed: true, Target: bpm}
	} else {
		settings.BPM = model.BpmMode{
			Fixed:  false,
			MinBPM: firstNonZeroFloat(*minBPM, cfg.MinBPM),
			MaxBPM: firstNonZeroFloat(*maxBPM, cfg.MaxBPM),
		}
	}

	log := logging.NewFile(*logFile, 10, 3, 28, true)
	if *verbose {
		log.Debug("verbose logging enabled")
	}

	engine, err := playback.NewEngine(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopcaster: init audio: %v\n", err)
		return 1
	}
	defer engine.Close()

	devices, err := engine.ListDevices()
	if err != nil {
		log.Warn("failed to enumerate playback devices")
	}
	settings.Devices = devices

	if *listDevices {
		for _, d := range devices {
			fmt.Printf("%d: %s\n", d.Index, d.Name)
		}
		return 0
	}

	if err := engine.Open(*deviceIndex); err != nil {
		fmt.Fprintf(os.Stderr, "loopcaster: open audio device: %v\n", err)
		return 1
	}

	state := appstate.New(settings)

	cmdCh := make(chan producer.CommandMsg, 8)
	eventCh := make(chan producer.Event, producer.WorkerCount*3)

	pool := producer.New(producer.Config{
		Search:        settings.Search,
		Region:        settings.Region,
		ListenSeconds: settings.ListenSeconds,
		Bars:          settings.Bars,
		BeatsPerBar:   settings.BeatsPerBar,
		BPM:           settings.BPM,
		RateLimitMs:   settings.RateLimitMs,
		BaseURL:       *baseURL,
		FFmpegPath:    *ffmpegPath,
		BpmMin:        settings.BPM.MinBPM,
		BpmMax:        settings.BPM.MaxBPM,
	}, state, log, cmdCh, eventCh)

	go pool.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		state.Quit()
		cmdCh <- producer.CommandMsg{Cmd: producer.CmdQuit}
	}()

	loop := syncloop.New(engine, state, log, cmdCh, eventCh, nil, stdoutRenderer{})
	loop.Run()

	return 0
}

type stdoutRenderer struct{}

func (stdoutRenderer) Render(f tui.Frame) { tui.RenderReference(os.Stdout, f) }

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZeroInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func firstNonZeroFloat(a, b float64) float64 {
	if a != 0 {
		return a
	}
	return b
}
