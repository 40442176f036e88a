package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFileWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopcaster.log")

	log := NewFile(path, 1, 1, 1, false)
	log.Info("station acquired", zap.String("station", "Radio FIP"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "station acquired")
	assert.Contains(t, string(data), "Radio FIP")
}

func TestWithAttachesFieldsToSubsequentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopcaster.log")

	log := NewFile(path, 1, 1, 1, false).With(zap.String("worker", "0"))
	log.Warn("retrying after transient error")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"worker":"0"`)
}

func TestErrorIncludesErrorField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loopcaster.log")

	log := NewFile(path, 1, 1, 1, false)
	log.Error("capture failed", assert.AnError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), assert.AnError.Error())
}
