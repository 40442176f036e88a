// Package tui defines the per-frame contract between the sync loop and the
// terminal: a Frame the sync loop hands to the terminal, and a Command the
// terminal hands back. Widget rendering is treated as an external
// collaborator; this package owns the shape of the data exchanged each
// frame and a minimal reference renderer so the contract is exercised end
// to end.
package tui

import (
	"fmt"
	"io"

	"github.com/golang/geo/s2"
	"github.com/vividhyeok/loopcaster/internal/model"
)

// PlayStatus is the play status tag shown in the frame.
type PlayStatus int

const (
	Idle PlayStatus = iota
	Loading
	Playing
	ErrorStatus
)

// NowPlaying is the optional currently-playing snapshot.
type NowPlaying struct {
	Station  model.Station
	LoopInfo model.LoopInfo
	Progress float64 // in [0,1]
}

// Frame is everything the sync loop hands to the terminal once per tick.
type Frame struct {
	Status      PlayStatus
	ErrorMsg    string
	NowPlaying  *NowPlaying
	Queue       []model.QueueEntry
	History     []model.Station
	Settings    model.Settings
}

// Command is a key-event mapped to one of the actions the sync loop
// recognizes.
type Command int

const (
	CommandNone Command = iota
	Quit
	NextStation
	ToggleBpmMode
	CycleBarsUp
	CycleBarsDown
	CycleAudioDevice
)

// historyLimit is the recent-station history cap.
const historyLimit = 10

// History is a fixed-capacity ring of recently played stations.
type History struct {
	entries []model.Station
}

// Push appends a station, evicting the oldest once the cap is exceeded.
func (h *History) Push(s model.Station) {
	h.entries = append(h.entries, s)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
}

// Snapshot returns the current history, oldest first.
func (h *History) Snapshot() []model.Station {
	out := make([]model.Station, len(h.entries))
	copy(out, h.entries)
	return out
}

// LatLng converts a Station's coordinates into an s2.LatLng for world-map
// placement and nearest-neighbor queries over recent sources.
func LatLng(s model.Station) s2.LatLng {
	return s2.LatLngFromDegrees(s.Latitude, s.Longitude)
}

// GreatCircleKm returns the great-circle distance between two stations in
// kilometers, used to group nearby recent sources on the world map.
func GreatCircleKm(a, b model.Station) float64 {
	const earthRadiusKm = 6371.0
	angle := LatLng(a).Distance(LatLng(b))
	return float64(angle) * earthRadiusKm
}

// RenderReference writes a minimal plain-text rendering of a Frame so the
// contract above is exercised by something concrete; real widget layout is
// an external concern.
func RenderReference(w io.Writer, f Frame) {
	fmt.Fprintf(w, "[%s]", statusLabel(f.Status))
	if f.Status == ErrorStatus && f.ErrorMsg != "" {
		fmt.Fprintf(w, " %s", f.ErrorMsg)
	}
	if f.NowPlaying != nil {
		np := f.NowPlaying
		fmt.Fprintf(w, " now: %s (%s) %.0f BPM %.0f%%\n",
			np.Station.Name, np.Station.PlaceName, np.LoopInfo.TargetBPM, np.Progress*100)
	} else {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "queue: %d upcoming, %d history\n", len(f.Queue), len(f.History))
}

func statusLabel(s PlayStatus) string {
	switch s {
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	case ErrorStatus:
		return "Error"
	default:
		return "Idle"
	}
}
