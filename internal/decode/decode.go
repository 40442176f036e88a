// Package decode transcodes arbitrary container/codec bytes into interleaved
// f32 PCM at the fixed internal rate via an external transcoder subprocess,
// with concurrent writer/readers to avoid a full-duplex pipe deadlock.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"sync"

	"github.com/vividhyeok/loopcaster/internal/model"
)

// ErrToolNotFound is returned when the transcoder executable cannot be
// located on the host.
var ErrToolNotFound = errors.New("decode: transcoder executable not found")

// ErrDecodeEmpty is returned when the transcoder produced no output bytes.
var ErrDecodeEmpty = errors.New("decode: transcoder produced no output")

// ToolFailedError wraps a non-zero transcoder exit.
type ToolFailedError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolFailedError) Error() string {
	return fmt.Sprintf("decode: transcoder exited %d: %s", e.ExitCode, e.Stderr)
}

// Decoder invokes an external transcoder (ffmpeg by default, overridable via
// Path) to turn raw container bytes into fixed-format PCM.
type Decoder struct {
	Path string
}

// New returns a Decoder using the given executable path, or "ffmpeg" if path
// is empty.
func New(path string) *Decoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &Decoder{Path: path}
}

// Decode transcodes input bytes into a RawAudio buffer at the fixed internal
// rate and channel count. The writer to stdin and the two readers (stdout,
// stderr) run concurrently so a transcoder that blocks writing to a full
// stdout pipe cannot deadlock against an un-drained stdin write.
func (d *Decoder) Decode(input []byte) (model.RawAudio, error) {
	if _, err := exec.LookPath(d.Path); err != nil {
		return model.RawAudio{}, ErrToolNotFound
	}

	cmd := exec.Command(d.Path,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(model.SampleRate),
		"-ac", strconv.Itoa(model.Channels),
		"pipe:1",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return model.RawAudio{}, fmt.Errorf("decode: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return model.RawAudio{}, fmt.Errorf("decode: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return model.RawAudio{}, fmt.Errorf("decode: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return model.RawAudio{}, fmt.Errorf("decode: start: %w", err)
	}

	var wg sync.WaitGroup
	var output, stderrOutput []byte

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stdin.Close()
		stdin.Write(input)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		output, _ = io.ReadAll(stdout)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		stderrOutput, _ = io.ReadAll(stderr)
	}()

	wg.Wait()
	err = cmd.Wait()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return model.RawAudio{}, &ToolFailedError{ExitCode: exitCode, Stderr: string(stderrOutput)}
	}

	if len(output) == 0 {
		return model.RawAudio{}, ErrDecodeEmpty
	}

	samples := bytesToFloat32(output)
	return model.RawAudio{Samples: samples, SampleRate: model.SampleRate, Channels: model.Channels}, nil
}

func bytesToFloat32(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
