// Package meteostat is a client for the Meteostat bulk data interface. It
// downloads the station inventory and per-station observation dumps, and can
// interpolate daily observations to an exact geographic point.
package meteostat

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const defaultEndpoint = "https://bulk.meteostat.net/v2"

var (
	// ErrNoStations is returned when no station with usable coverage exists
	// inside the search radius of a point.
	ErrNoStations = errors.New("meteostat: no stations within radius")

	// ErrNoData is returned when every candidate station download succeeded
	// but none contained observations for the requested range.
	ErrNoData = errors.New("meteostat: no observations for requested range")

	errRateLimited = errors.New("meteostat: rate limited")
	errServerError = errors.New("meteostat: server error")
	errUnexpected  = errors.New("meteostat: unexpected status code")
	errCircuitOpen = errors.New("meteostat: circuit breaker open")
)

// Client talks to the bulk data endpoint. All methods are safe for
// concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration

	radiusM     float64
	maxStations int

	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker

	mu        sync.Mutex
	inventory []Station // decoded station dump, loaded once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the bulk endpoint base URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithCache installs a download cache. Without one every call fetches from
// the network.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithCacheTTL sets how long cached downloads stay valid. Default 24h.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithRadius sets the station search radius in meters for point queries.
// Default 35000.
func WithRadius(meters float64) Option {
	return func(c *Client) { c.radiusM = meters }
}

// WithMaxStations caps how many stations contribute to an interpolated
// point series. Default 4.
func WithMaxStations(n int) Option {
	return func(c *Client) { c.maxStations = n }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:    defaultEndpoint,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cacheTTL:    24 * time.Hour,
		radiusM:     35000,
		maxStations: 4,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "meteostat-bulk",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
