package weather

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guiajf/meteostat/internal/geo"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

type fakeGeocoder struct {
	calls atomic.Int64
	place geo.Place
	err   error
}

func (f *fakeGeocoder) Geocode(_ context.Context, city, country string) (geo.Place, error) {
	f.calls.Add(1)
	if f.err != nil {
		return geo.Place{}, f.err
	}
	p := f.place
	p.City = city
	p.Country = country
	return p, nil
}

type fakeElevation struct {
	elev float64
	err  error
}

func (f *fakeElevation) Lookup(context.Context, float64, float64) (float64, error) {
	return f.elev, f.err
}

type fakeClient struct {
	fetches atomic.Int64
	series  meteostat.DailySeries
	err     error
}

func (f *fakeClient) DailyForPoint(_ context.Context, _ meteostat.Point, _, _ time.Time) (meteostat.DailySeries, error) {
	f.fetches.Add(1)
	return f.series, f.err
}

func (f *fakeClient) NearbyStations(context.Context, float64, float64, float64, int) ([]meteostat.Station, error) {
	return []meteostat.Station{{ID: "A0001"}}, nil
}

// fakeStore is a minimal Store for service tests.
type fakeStore struct {
	entries map[string]SeriesEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]SeriesEntry)}
}

func (s *fakeStore) SaveSeries(loc Location, entry SeriesEntry) {
	s.entries[loc.Key()] = entry
}

func (s *fakeStore) GetSeries(loc Location) (SeriesEntry, error) {
	entry, ok := s.entries[loc.Key()]
	if !ok {
		return SeriesEntry{}, errors.New("not found")
	}
	return entry, nil
}

func (s *fakeStore) GetRange(loc Location, from, to time.Time) ([]meteostat.DailyRecord, error) {
	entry, err := s.GetSeries(loc)
	if err != nil {
		return nil, err
	}
	var out []meteostat.DailyRecord
	for _, rec := range entry.Series.Records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, errors.New("not found")
	}
	return out, nil
}

func seriesForDays(days ...int) meteostat.DailySeries {
	var records []meteostat.DailyRecord
	for _, d := range days {
		records = append(records, meteostat.DailyRecord{
			Date: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		})
	}
	return meteostat.DailySeries{Records: records}
}

func TestResolveMemoizes(t *testing.T) {
	g := &fakeGeocoder{place: geo.Place{Latitude: -21.76, Longitude: -43.34}}
	svc := NewService(g, &fakeElevation{elev: 678}, &fakeClient{}, newFakeStore())
	loc := Location{City: "Juiz de Fora", Country: "BR"}

	for i := 0; i < 3; i++ {
		r, err := svc.Resolve(context.Background(), loc)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if r.Point.Elevation == nil || *r.Point.Elevation != 678 {
			t.Errorf("expected elevation 678, got %v", r.Point.Elevation)
		}
	}
	if g.calls.Load() != 1 {
		t.Errorf("expected 1 geocode call, got %d", g.calls.Load())
	}
}

func TestResolveDegradesWithoutElevation(t *testing.T) {
	g := &fakeGeocoder{place: geo.Place{Latitude: -21.76, Longitude: -43.34}}
	svc := NewService(g, &fakeElevation{err: errors.New("down")}, &fakeClient{}, newFakeStore())

	r, err := svc.Resolve(context.Background(), Location{City: "Juiz de Fora", Country: "BR"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.Point.Elevation != nil {
		t.Errorf("expected nil elevation after lookup failure, got %v", *r.Point.Elevation)
	}
}

func TestResolveGeocodeFailure(t *testing.T) {
	g := &fakeGeocoder{err: geo.ErrNotFound}
	svc := NewService(g, nil, &fakeClient{}, newFakeStore())

	_, err := svc.Resolve(context.Background(), Location{City: "Nowhere", Country: "ZZ"})
	if !errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDailySeriesServedFromStore(t *testing.T) {
	g := &fakeGeocoder{place: geo.Place{Latitude: -21.76, Longitude: -43.34}}
	client := &fakeClient{series: seriesForDays(1, 2, 3, 4, 5)}
	svc := NewService(g, nil, client, newFakeStore())
	loc := Location{City: "Juiz de Fora", Country: "BR"}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	// First request fetches.
	entry, err := svc.DailySeries(context.Background(), loc, start, end)
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}
	if len(entry.Series.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(entry.Series.Records))
	}

	// A narrower request inside the stored window must not fetch again.
	entry, err = svc.DailySeries(context.Background(), loc,
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailySeries (cached) failed: %v", err)
	}
	if len(entry.Series.Records) != 2 {
		t.Errorf("expected 2 records in sub-window, got %d", len(entry.Series.Records))
	}
	if client.fetches.Load() != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", client.fetches.Load())
	}

	// A wider request falls through to a fresh fetch.
	if _, err := svc.DailySeries(context.Background(), loc,
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), end); err != nil {
		t.Fatalf("DailySeries (wider) failed: %v", err)
	}
	if client.fetches.Load() != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", client.fetches.Load())
	}
}

func TestDailySeriesRejectsInvertedRange(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, nil, &fakeClient{}, newFakeStore())

	_, err := svc.DailySeries(context.Background(), Location{City: "X", Country: "Y"},
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestFetchAndStorePropagatesClientError(t *testing.T) {
	g := &fakeGeocoder{place: geo.Place{Latitude: 1, Longitude: 2}}
	client := &fakeClient{err: meteostat.ErrNoStations}
	svc := NewService(g, nil, client, newFakeStore())

	err := svc.FetchAndStore(context.Background(), Location{City: "X", Country: "Y"},
		time.Now().AddDate(0, 0, -7), time.Now())
	if !errors.Is(err, meteostat.ErrNoStations) {
		t.Fatalf("expected ErrNoStations, got %v", err)
	}
}
