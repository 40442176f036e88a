// Package catalogue fetches places/stations from a public radio-directory
// API and resolves a playable stream URL. The exact upstream JSON shape is
// treated as unstable; Place and ChannelRef below carry only the fields the
// core consumes.
package catalogue

import "github.com/vividhyeok/loopcaster/internal/model"

// Place is a city-level entry in the catalogue with one or more channels.
type Place struct {
	ID        string
	Title     string
	Country   string
	Size      int
	Latitude  float64
	Longitude float64
}

// ChannelRef is a lightweight reference to a channel within a Place.
type ChannelRef struct {
	ID    string
	Title string
}

// Channel is the resolved detail record for a single station.
type Channel struct {
	ID      string
	Title   string
	Country string
	Place   Place
	Website string
}

// ToStation builds the core's Station type from a resolved channel, place
// and stream URL.
func (c Channel) ToStation(streamURL string) model.Station {
	return model.Station{
		ID:        c.ID,
		Name:      c.Title,
		Country:   c.Country,
		PlaceName: c.Place.Title,
		Latitude:  c.Place.Latitude,
		Longitude: c.Place.Longitude,
		StreamURL: streamURL,
		Website:   c.Website,
	}
}
