package store

import (
	"errors"
	"testing"
	"time"

	"github.com/guiajf/meteostat/internal/weather"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

func entryWithDays(loc weather.Location, days ...int) weather.SeriesEntry {
	var records []meteostat.DailyRecord
	for _, d := range days {
		records = append(records, meteostat.DailyRecord{
			Date: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		})
	}
	return weather.SeriesEntry{
		Location:  loc,
		Series:    meteostat.DailySeries{Records: records},
		FetchedAt: time.Now().UTC(),
	}
}

func TestSaveAndGetSeries(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	loc := weather.Location{City: "Juiz de Fora", Country: "BR"}

	if _, err := s.GetSeries(loc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	s.SaveSeries(loc, entryWithDays(loc, 1, 2, 3))

	entry, err := s.GetSeries(loc)
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if len(entry.Series.Records) != 3 {
		t.Errorf("expected 3 records, got %d", len(entry.Series.Records))
	}
}

func TestGetRange(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	loc := weather.Location{City: "Juiz de Fora", Country: "BR"}
	s.SaveSeries(loc, entryWithDays(loc, 1, 2, 3, 4, 5))

	records, err := s.GetRange(loc,
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records in range, got %d", len(records))
	}
	if records[0].Date.Day() != 2 || records[2].Date.Day() != 4 {
		t.Errorf("unexpected range bounds: %v .. %v", records[0].Date, records[2].Date)
	}

	// A window with no overlap is a miss.
	_, err = s.GetRange(loc,
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestStaleEntriesAreMisses(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	loc := weather.Location{City: "Juiz de Fora", Country: "BR"}

	entry := entryWithDays(loc, 1)
	entry.FetchedAt = time.Now().UTC().Add(-2 * time.Minute)
	s.SaveSeries(loc, entry)

	if _, err := s.GetSeries(loc); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected stale entry to be a miss, got %v", err)
	}
	if _, err := s.GetRange(loc, time.Time{}, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected stale entry to be a miss in GetRange, got %v", err)
	}
}

func TestZeroMaxAgeNeverStale(t *testing.T) {
	s := NewMemoryStore(0)
	loc := weather.Location{City: "Juiz de Fora", Country: "BR"}

	entry := entryWithDays(loc, 1)
	entry.FetchedAt = time.Now().UTC().Add(-24 * time.Hour)
	s.SaveSeries(loc, entry)

	if _, err := s.GetSeries(loc); err != nil {
		t.Errorf("expected hit with staleness disabled, got %v", err)
	}
}
