// Package producer runs N parallel fetch workers sharing a catalogue cache,
// coordinated by a single goroutine that forwards ready clips and relays TUI
// commands.
package producer

import "github.com/vividhyeok/loopcaster/internal/model"

// Command is sent from the sync loop into the producer coordinator.
type Command int

const (
	CmdNextStation Command = iota
	CmdAudioDeviceChanged
	CmdQuit
)

// CommandMsg pairs a Command with its payload (device index, when present).
type CommandMsg struct {
	Cmd         Command
	DeviceIndex int
}

// EventKind classifies an Event emitted by the coordinator to the sync loop.
type EventKind int

const (
	EventStationSelected EventKind = iota
	EventLoopReady
	EventError
	EventSkipCurrent
	EventAudioDeviceChanged
	EventShutdown
)

// Event is what the coordinator forwards to the sync loop.
type Event struct {
	Kind        EventKind
	Station     model.Station
	Buffer      model.LoopBuffer
	Err         error
	DeviceIndex int
}
