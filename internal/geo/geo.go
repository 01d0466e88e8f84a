// Package geo resolves place names to coordinates and coordinates to
// elevation, via external web APIs.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrNotFound is returned when the geocoder has no match for a place.
	ErrNotFound = errors.New("geo: location not found")

	errUpstream = errors.New("geo: upstream error")
)

// Place is a geocoded location.
type Place struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName,omitempty"`
}

// Geocoder resolves a city/country pair to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (Place, error)
}

// getJSON performs one resilient GET and decodes the JSON body into out.
// Transient upstream errors (5xx, 429, transport) are retried twice with a
// short fixed delay; the circuit breaker cuts off a flapping upstream.
func getJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, url string, header http.Header, out interface{}) error {
	const attempts = 3

	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		body, err := cb.Execute(func() (interface{}, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if reqErr != nil {
				return nil, reqErr
			}
			for k, vs := range header {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}

			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("geo: unexpected status %d", resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		})
		if err == nil {
			return json.Unmarshal(body.([]byte), out)
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("geo: circuit breaker open: %v", err)
		}
		if !errors.Is(err, errUpstream) {
			return err
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
	return lastErr
}
