package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/guiajf/meteostat/internal/weather"
)

type AppConfig struct {
	// Google geocoding API key; empty selects the keyless Nominatim path.
	GeocoderAPIKey string

	// Base URL overrides, mainly for tests and mirrors.
	BulkEndpoint     string
	NominatimBaseURL string
	ElevationBaseURL string

	// RefreshInterval controls how often the scheduler re-fetches the
	// configured locations; Lookback is how far back each refresh reaches.
	RefreshInterval time.Duration
	Lookback        time.Duration

	// Locations to keep warm.
	Locations []weather.Location

	// Series staleness in the in-memory store.
	SeriesMaxAge time.Duration

	// Download cache.
	CachePath string
	CacheTTL  time.Duration

	// Point interpolation.
	StationRadiusM float64
	MaxStations    int

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.BulkEndpoint = os.Getenv("METEOSTAT_BULK_ENDPOINT")
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.ElevationBaseURL = os.Getenv("ELEVATION_BASE_URL")

	var err error
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "6h"); err != nil {
		return nil, err
	}
	if cfg.Lookback, err = getenvDuration("LOOKBACK", fmt.Sprintf("%dh", 365*24)); err != nil {
		return nil, err
	}
	if cfg.SeriesMaxAge, err = getenvDuration("SERIES_MAX_AGE", "12h"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.CachePath = getenvDefault("CACHE_PATH", "meteostat-cache.db")
	cfg.StationRadiusM = float64(getenvInt("STATION_RADIUS_M", 35000))
	cfg.MaxStations = getenvInt("MAX_STATIONS", 4)
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("LOCATION_CITY")
	country := os.Getenv("LOCATION_COUNTRY")
	if city == "" && country == "" {
		return nil, nil
	}

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
