package decode

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToFFmpeg(t *testing.T) {
	d := New("")
	assert.Equal(t, "ffmpeg", d.Path)
}

func TestNewKeepsExplicitPath(t *testing.T) {
	d := New("/opt/bin/ffmpeg")
	assert.Equal(t, "/opt/bin/ffmpeg", d.Path)
}

func TestDecodeUnknownToolReturnsErrToolNotFound(t *testing.T) {
	d := New("loopcaster-transcoder-does-not-exist")

	_, err := d.Decode([]byte("irrelevant"))

	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestBytesToFloat32RoundTripsKnownValues(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, -0.25}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}

	got := bytesToFloat32(buf)

	assert.Equal(t, values, got)
}
