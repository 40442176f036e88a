package producer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/dsp"
	"github.com/vividhyeok/loopcaster/internal/logging"
	"go.uber.org/zap"
)

type testLogger struct{}

func (testLogger) Error(string, error, ...zap.Field)    {}
func (testLogger) Warn(string, ...zap.Field)            {}
func (testLogger) Info(string, ...zap.Field)            {}
func (testLogger) Debug(string, ...zap.Field)           {}
func (l testLogger) With(...zap.Field) logging.Logger   { return l }

func TestHandleWorkerErrorNotMusicSkipsBackoff(t *testing.T) {
	p := &Pool{}
	start := time.Now()

	p.handleWorkerError(0, errors.New(dsp.ErrNotMusic.Error()+": Speech"), testLogger{})

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestHandleWorkerErrorTransientBacksOff(t *testing.T) {
	p := &Pool{}
	start := time.Now()

	p.handleWorkerError(0, errors.New("catalogue: http status 503"), testLogger{})

	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}
