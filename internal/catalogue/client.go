package catalogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/vividhyeok/loopcaster/internal/model"
)

// ErrNoStationsFound is returned when a search/region/random pick has
// nothing to choose from.
var ErrNoStationsFound = errors.New("catalogue: no stations found")

// HTTPStatusError reports a non-2xx response from the catalogue API.
type HTTPStatusError struct{ Code int }

func (e *HTTPStatusError) Error() string { return fmt.Sprintf("catalogue: http status %d", e.Code) }

// wire-shape types: minimal subset of the upstream JSON needed to populate
// Place/ChannelRef/Channel.
type placesResponse struct {
	Data struct {
		List []wirePlace `json:"list"`
	} `json:"data"`
}

type wirePlace struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Country string     `json:"country"`
	Size    int       `json:"size"`
	Geo     [2]float64 `json:"geo"` // [lon, lat] — upstream orders longitude first
}

func (p wirePlace) toPlace() Place {
	return Place{ID: p.ID, Title: p.Title, Country: p.Country, Size: p.Size, Longitude: p.Geo[0], Latitude: p.Geo[1]}
}

type placeChannelsResponse struct {
	Data struct {
		Content []struct {
			Items []wireChannelRef `json:"items"`
		} `json:"content"`
	} `json:"data"`
}

type wireChannelRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type channelResponse struct {
	Data wireChannel `json:"data"`
}

type wireChannel struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Website string    `json:"website"`
	Country struct {
		Title string `json:"title"`
	} `json:"country"`
	Place struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"place"`
}

// Client is a minimal radio-garden-style catalogue client built on
// valyala/fasthttp.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	rateLimit  time.Duration
	cache      *Cache
}

// NewClient builds a Client sharing the given cache across workers.
func NewClient(baseURL string, rateLimitMs int, cache *Cache) *Client {
	return &Client{
		httpClient: &fasthttp.Client{ReadTimeout: 30 * time.Second},
		baseURL:    baseURL,
		rateLimit:  time.Duration(rateLimitMs) * time.Millisecond,
		cache:      cache,
	}
}

func (c *Client) getJSON(url string, out interface{}) error {
	time.Sleep(c.rateLimit)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "loopcaster/1.0")

	if err := c.httpClient.DoTimeout(req, resp, 30*time.Second); err != nil {
		return fmt.Errorf("catalogue: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &HTTPStatusError{Code: resp.StatusCode()}
	}
	return json.Unmarshal(resp.Body(), out)
}

// GetPlaces fetches all places, serving from the shared TTL cache when
// fresh.
func (c *Client) GetPlaces() ([]Place, error) {
	if cached, ok := c.cache.Get(); ok {
		return cached, nil
	}
	var resp placesResponse
	if err := c.getJSON(c.baseURL+"/ara/content/places", &resp); err != nil {
		return nil, err
	}
	places := make([]Place, len(resp.Data.List))
	for i, p := range resp.Data.List {
		places[i] = p.toPlace()
	}
	c.cache.Set(places)
	return places, nil
}

// WarmUp primes the shared cache; failures are the caller's concern to log,
// never fatal.
func (c *Client) WarmUp() error {
	_, err := c.GetPlaces()
	return err
}

// GetPlaceChannels fetches the channel references for a place.
func (c *Client) GetPlaceChannels(placeID string) ([]ChannelRef, error) {
	var resp placeChannelsResponse
	if err := c.getJSON(fmt.Sprintf("%s/ara/content/page/%s", c.baseURL, placeID), &resp); err != nil {
		return nil, err
	}
	var out []ChannelRef
	for _, section := range resp.Data.Content {
		for _, item := range section.Items {
			out = append(out, ChannelRef{ID: item.ID, Title: item.Title})
		}
	}
	return out, nil
}

// GetChannel fetches channel details.
func (c *Client) GetChannel(channelID string) (Channel, error) {
	var resp channelResponse
	if err := c.getJSON(fmt.Sprintf("%s/ara/content/channel/%s", c.baseURL, channelID), &resp); err != nil {
		return Channel{}, err
	}
	w := resp.Data
	return Channel{ID: w.ID, Title: w.Title, Country: w.Country.Title, Website: w.Website,
		Place: Place{ID: w.Place.ID, Title: w.Place.Title}}, nil
}

// GetStreamURL resolves the playable stream URL for a channel from the
// Location header of the listen endpoint's redirect response (one hop; the
// redirect target is not requested). A response without Location returns
// the listen URL itself.
func (c *Client) GetStreamURL(channelID string) (string, error) {
	time.Sleep(c.rateLimit)
	url := fmt.Sprintf("%s/ara/content/listen/%s/channel.mp3", c.baseURL, channelID)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)

	if err := c.httpClient.DoTimeout(req, resp, 30*time.Second); err != nil {
		return "", fmt.Errorf("catalogue: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 400 {
		return "", &HTTPStatusError{Code: resp.StatusCode()}
	}
	loc := resp.Header.Peek("Location")
	if len(loc) > 0 {
		return string(loc), nil
	}
	return url, nil
}

// NextStation picks a station: by search if given, else by region,
// else random over places with Size > 0.
func (c *Client) NextStation(search, region string) (model.Station, error) {
	switch {
	case search != "":
		return c.searchStation(search)
	case region != "":
		return c.stationByRegion(region)
	default:
		return c.randomStation()
	}
}

func (c *Client) randomStation() (model.Station, error) {
	places, err := c.GetPlaces()
	if err != nil {
		return model.Station{}, err
	}
	var valid []Place
	for _, p := range places {
		if p.Size > 0 {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return model.Station{}, ErrNoStationsFound
	}
	place := valid[rand.Intn(len(valid))]
	return c.buildStationInPlace(place)
}

func (c *Client) stationByRegion(region string) (model.Station, error) {
	places, err := c.GetPlaces()
	if err != nil {
		return model.Station{}, err
	}
	regionLower := strings.ToLower(region)
	var matching []Place
	for _, p := range places {
		if strings.Contains(strings.ToLower(p.Country), regionLower) && p.Size > 0 {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return model.Station{}, ErrNoStationsFound
	}
	place := matching[rand.Intn(len(matching))]
	return c.buildStationInPlace(place)
}

func (c *Client) buildStationInPlace(place Place) (model.Station, error) {
	channels, err := c.GetPlaceChannels(place.ID)
	if err != nil {
		return model.Station{}, err
	}
	if len(channels) == 0 {
		return model.Station{}, ErrNoStationsFound
	}
	ref := channels[rand.Intn(len(channels))]
	channel, err := c.GetChannel(ref.ID)
	if err != nil {
		return model.Station{}, err
	}
	channel.Place = place
	streamURL, err := c.GetStreamURL(ref.ID)
	if err != nil {
		return model.Station{}, err
	}
	return channel.ToStation(streamURL), nil
}

func (c *Client) searchStation(query string) (model.Station, error) {
	// Search results are not modeled in detail here (out of scope for wire
	// shape); fall back to treating the query as a region filter, which is
	// the closest in-scope behavior the core defines.
	return c.stationByRegion(query)
}
