package geo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const openElevationBaseURL = "https://api.open-elevation.com"

// ElevationClient looks up terrain elevation for a coordinate against an
// Open-Elevation compatible API.
type ElevationClient struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewElevationClient creates an elevation client. baseURL overrides the
// public Open-Elevation instance when non-empty.
func NewElevationClient(client *http.Client, baseURL string) *ElevationClient {
	if baseURL == "" {
		baseURL = openElevationBaseURL
	}
	return &ElevationClient{
		baseURL:    baseURL,
		httpClient: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-elevation",
			MaxRequests: 3,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// Lookup returns the elevation in meters above sea level for the coordinate.
func (e *ElevationClient) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Elevation float64 `json:"elevation"`
		} `json:"results"`
	}

	u := fmt.Sprintf("%s/api/v1/lookup?locations=%f,%f", e.baseURL, lat, lon)
	if err := getJSON(ctx, e.httpClient, e.circuit, u, nil, &payload); err != nil {
		return 0, fmt.Errorf("elevation lookup (%f, %f): %w", lat, lon, err)
	}
	if len(payload.Results) == 0 {
		return 0, fmt.Errorf("%w: no elevation for (%f, %f)", ErrNotFound, lat, lon)
	}

	return payload.Results[0].Elevation, nil
}
