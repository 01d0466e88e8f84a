package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder geocodes against the OpenStreetMap Nominatim search API.
// It needs no API key; Nominatim's usage policy requires an identifying
// User-Agent.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	circuit    *gobreaker.CircuitBreaker
}

// NewNominatimGeocoder creates a geocoder backed by the public Nominatim
// instance. baseURL overrides the instance when non-empty.
func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	return &NominatimGeocoder{
		baseURL:    baseURL,
		httpClient: client,
		userAgent:  "meteostat-service/1.0",
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "nominatim",
			MaxRequests: 3,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// Geocode resolves a city/country pair to its best Nominatim match.
func (g *NominatimGeocoder) Geocode(ctx context.Context, city, country string) (Place, error) {
	values := url.Values{}
	values.Set("city", city)
	values.Set("country", country)
	values.Set("format", "json")
	values.Set("limit", "1")

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}

	header := http.Header{"User-Agent": []string{g.userAgent}}
	u := g.baseURL + "/search?" + values.Encode()
	if err := getJSON(ctx, g.httpClient, g.circuit, u, header, &results); err != nil {
		return Place{}, fmt.Errorf("nominatim geocode %q: %w", city, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %s, %s", ErrNotFound, city, country)
	}

	// Nominatim serializes coordinates as strings.
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim geocode %q: bad latitude %q", city, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("nominatim geocode %q: bad longitude %q", city, results[0].Lon)
	}

	return Place{
		City:        city,
		Country:     country,
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: results[0].DisplayName,
	}, nil
}

// GoogleGeocoder geocodes through the Google Maps Geocoding API using the
// kelvins/geocoder package. Requires an API key.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the package-global API key and returns the
// geocoder.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Geocode resolves a city/country pair through Google Maps. The underlying
// package does not take a context; the call is bounded by its own HTTP
// timeouts.
func (g *GoogleGeocoder) Geocode(_ context.Context, city, country string) (Place, error) {
	address := geocoder.Address{
		City:    city,
		Country: country,
	}

	location, err := geocoder.Geocoding(address)
	if err != nil {
		return Place{}, fmt.Errorf("google geocode %q: %w", city, err)
	}

	return Place{
		City:      city,
		Country:   country,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}, nil
}
