// Package capture performs a time-bounded HTTP byte capture of a live
// stream, built on valyala/fasthttp's streaming client.
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrEmptyStream is returned when zero bytes were read before the capture
// window closed.
var ErrEmptyStream = errors.New("capture: empty stream")

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct{ Code int }

func (e *HTTPStatusError) Error() string { return fmt.Sprintf("capture: http status %d", e.Code) }

// Capturer performs time-bounded reads over HTTP.
type Capturer struct {
	client *fasthttp.Client
}

// New builds a Capturer with a generous overall connection timeout.
func New() *Capturer {
	return &Capturer{
		client: &fasthttp.Client{
			ReadTimeout:         60 * time.Second,
			MaxResponseBodySize: 0, // streamed, not buffered in one shot
		},
	}
}

// Capture reads the response body of url for up to durationSecs, measured
// from the first byte received. A short read (the server closing the
// connection early) is not an error unless zero bytes arrived.
func (c *Capturer) Capture(url string, durationSecs int) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp.StreamBody = true
	if err := c.client.DoTimeout(req, resp, 60*time.Second); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &HTTPStatusError{Code: resp.StatusCode()}
	}

	bodyStream := resp.BodyStream()
	estimated := durationSecs * 32_000 // ~256kbps assumption
	buf := make([]byte, 0, estimated)

	deadline := time.Now().Add(time.Duration(durationSecs) * time.Second)
	reader := bufio.NewReader(bodyStream)
	chunk := make([]byte, 32*1024)

	for time.Now().Before(deadline) {
		n, err := reader.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if len(buf) == 0 {
				return nil, fmt.Errorf("capture: %w", err)
			}
			break
		}
	}

	if len(buf) == 0 {
		return nil, ErrEmptyStream
	}
	return buf, nil
}
