package weather

import (
	"time"

	"github.com/guiajf/meteostat/internal/geo"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

// Location represents a logical place for which we track observations.
// City/Country must be provided.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// ResolvedLocation is a Location with its geocoded coordinate and terrain
// elevation attached.
type ResolvedLocation struct {
	Location Location        `json:"location"`
	Place    geo.Place       `json:"place"`
	Point    meteostat.Point `json:"point"`
}

// SeriesEntry is a fetched, interpolated daily series for a location,
// together with the point it was interpolated to and when it was fetched.
type SeriesEntry struct {
	Location  Location              `json:"location"`
	Point     meteostat.Point       `json:"point"`
	Series    meteostat.DailySeries `json:"series"`
	FetchedAt time.Time             `json:"fetchedAt"` // always UTC
}

// Covers reports whether the stored series spans the requested window.
func (e SeriesEntry) Covers(start, end time.Time) bool {
	if len(e.Series.Records) == 0 {
		return false
	}
	return !e.Series.Start().After(start) && !e.Series.End().Before(end)
}
