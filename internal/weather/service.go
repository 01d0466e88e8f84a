package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/guiajf/meteostat/internal/geo"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

// PointClient is the slice of the meteostat client the service needs.
type PointClient interface {
	DailyForPoint(ctx context.Context, pt meteostat.Point, start, end time.Time) (meteostat.DailySeries, error)
	NearbyStations(ctx context.Context, lat, lon, radius float64, limit int) ([]meteostat.Station, error)
}

// ElevationLookup resolves a coordinate to meters above sea level.
type ElevationLookup interface {
	Lookup(ctx context.Context, lat, lon float64) (float64, error)
}

// Store is the contract the in-memory store (and any future persistent
// store) must satisfy.
type Store interface {
	SaveSeries(loc Location, entry SeriesEntry)
	GetSeries(loc Location) (SeriesEntry, error)
	GetRange(loc Location, from, to time.Time) ([]meteostat.DailyRecord, error)
}

// Service orchestrates geocoding, elevation lookup, point interpolation and
// the series store.
type Service struct {
	geocoder  geo.Geocoder
	elevation ElevationLookup
	client    PointClient
	store     Store

	mu       sync.Mutex
	resolved map[string]ResolvedLocation
}

// NewService creates a new Service. elevation may be nil, in which case
// interpolation runs without temperature adaptation.
func NewService(geocoder geo.Geocoder, elevation ElevationLookup, client PointClient, store Store) *Service {
	return &Service{
		geocoder:  geocoder,
		elevation: elevation,
		client:    client,
		store:     store,
		resolved:  make(map[string]ResolvedLocation),
	}
}

// Resolve geocodes the location and looks up its elevation. Results are
// memoized per location key; a failed elevation lookup degrades to a point
// without elevation rather than failing the resolution.
func (s *Service) Resolve(ctx context.Context, loc Location) (ResolvedLocation, error) {
	s.mu.Lock()
	if r, ok := s.resolved[loc.Key()]; ok {
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	place, err := s.geocoder.Geocode(ctx, loc.City, loc.Country)
	if err != nil {
		return ResolvedLocation{}, fmt.Errorf("resolve %s: %w", loc.Key(), err)
	}

	point := meteostat.Point{Latitude: place.Latitude, Longitude: place.Longitude}
	if s.elevation != nil {
		elev, err := s.elevation.Lookup(ctx, place.Latitude, place.Longitude)
		if err != nil {
			log.Printf("elevation lookup failed for %s; interpolating without altitude: %v", loc.Key(), err)
		} else {
			point.Elevation = &elev
		}
	}

	r := ResolvedLocation{Location: loc, Place: place, Point: point}

	s.mu.Lock()
	s.resolved[loc.Key()] = r
	s.mu.Unlock()
	return r, nil
}

// FetchAndStore resolves the location, fetches the interpolated daily series
// for [start, end] and stores it.
func (s *Service) FetchAndStore(ctx context.Context, loc Location, start, end time.Time) error {
	r, err := s.Resolve(ctx, loc)
	if err != nil {
		return err
	}

	series, err := s.client.DailyForPoint(ctx, r.Point, start, end)
	if err != nil {
		return fmt.Errorf("fetch series for %s: %w", loc.Key(), err)
	}

	s.store.SaveSeries(loc, SeriesEntry{
		Location:  loc,
		Point:     r.Point,
		Series:    series,
		FetchedAt: time.Now().UTC(),
	})
	return nil
}

// DailySeries returns the daily series for [start, end], serving from the
// store when the stored window covers the request and fetching on demand
// otherwise.
func (s *Service) DailySeries(ctx context.Context, loc Location, start, end time.Time) (SeriesEntry, error) {
	if end.Before(start) {
		return SeriesEntry{}, fmt.Errorf("invalid range: end before start")
	}

	entry, err := s.store.GetSeries(loc)
	if err == nil && entry.Covers(start, end) {
		records, err := s.store.GetRange(loc, start, end)
		if err == nil {
			entry.Series = meteostat.DailySeries{Records: records, Stations: entry.Series.Stations}
			return entry, nil
		}
	}

	if err := s.FetchAndStore(ctx, loc, start, end); err != nil {
		return SeriesEntry{}, err
	}
	return s.store.GetSeries(loc)
}

// NearbyStations resolves the location and returns the nearest stations.
func (s *Service) NearbyStations(ctx context.Context, loc Location, limit int) ([]meteostat.Station, error) {
	r, err := s.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}
	return s.client.NearbyStations(ctx, r.Point.Latitude, r.Point.Longitude, 0, limit)
}
