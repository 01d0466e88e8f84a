package store

import (
	"errors"
	"sync"
	"time"

	"github.com/guiajf/meteostat/internal/weather"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

var (
	// ErrNotFound is returned when no series is available for a location.
	ErrNotFound = errors.New("no series for location")
)

// MemoryStore is a concurrency-safe in-memory implementation of the series
// store. Entries older than maxAge are treated as misses so callers re-fetch.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key
	data map[string]weather.SeriesEntry

	maxAge time.Duration // 0 = entries never go stale
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]weather.SeriesEntry),
		maxAge: maxAge,
	}
}

// SaveSeries stores the entry for a location, replacing any previous one.
func (s *MemoryStore) SaveSeries(loc weather.Location, entry weather.SeriesEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[loc.Key()] = entry
}

// GetSeries returns the stored entry for a location.
func (s *MemoryStore) GetSeries(loc weather.Location) (weather.SeriesEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[loc.Key()]
	if !ok || s.stale(entry) {
		return weather.SeriesEntry{}, ErrNotFound
	}
	return entry, nil
}

// GetRange returns the stored records for a location with dates between
// from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]meteostat.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[loc.Key()]
	if !ok || s.stale(entry) {
		return nil, ErrNotFound
	}

	var result []meteostat.DailyRecord
	for _, rec := range entry.Series.Records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		result = append(result, rec)
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

func (s *MemoryStore) stale(entry weather.SeriesEntry) bool {
	return s.maxAge > 0 && time.Since(entry.FetchedAt) > s.maxAge
}
