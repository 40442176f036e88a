package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/model"
)

func TestHistoryEvictsOldestPastCapacity(t *testing.T) {
	var h History
	for i := 0; i < historyLimit+5; i++ {
		h.Push(model.Station{ID: string(rune('a' + i))})
	}

	snap := h.Snapshot()

	assert.Len(t, snap, historyLimit)
	assert.Equal(t, string(rune('a'+5)), snap[0].ID)
}

func TestGreatCircleKmZeroForSameStation(t *testing.T) {
	s := model.Station{Latitude: 48.8566, Longitude: 2.3522}
	assert.InDelta(t, 0, GreatCircleKm(s, s), 1e-6)
}

func TestGreatCircleKmParisToLondonRoughly350km(t *testing.T) {
	paris := model.Station{Latitude: 48.8566, Longitude: 2.3522}
	london := model.Station{Latitude: 51.5074, Longitude: -0.1278}

	km := GreatCircleKm(paris, london)

	assert.InDelta(t, 344, km, 20)
}

func TestRenderReferenceIncludesStationName(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{
		Status: Playing,
		NowPlaying: &NowPlaying{
			Station:  model.Station{Name: "Radio Test", PlaceName: "Testville"},
			LoopInfo: model.LoopInfo{TargetBPM: 120},
			Progress: 0.5,
		},
	}

	RenderReference(&buf, f)

	assert.Contains(t, buf.String(), "Radio Test")
	assert.Contains(t, buf.String(), "Playing")
}
