package syncloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBarsStepsUpThroughTable(t *testing.T) {
	assert.Equal(t, 2, nextBars(1, 1))
	assert.Equal(t, 4, nextBars(2, 1))
	assert.Equal(t, 16, nextBars(16, 1)) // clamps at the top
}

func TestNextBarsStepsDownThroughTable(t *testing.T) {
	assert.Equal(t, 4, nextBars(8, -1))
	assert.Equal(t, 1, nextBars(1, -1)) // clamps at the bottom
}

func TestNextBarsUnknownCurrentDefaultsToFirstStep(t *testing.T) {
	assert.Equal(t, 2, nextBars(3, 1))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.3, clamp01(0.3))
}
