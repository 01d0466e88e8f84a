// Package charts renders temperature time series as static PNG images and
// interactive HTML documents.
package charts

import (
	"errors"
	"time"

	"github.com/guiajf/meteostat/pkg/meteostat"
)

var (
	// ErrEmptySeries is returned when there are no records to plot.
	ErrEmptySeries = errors.New("charts: empty series")

	// ErrNoTemperature is returned when no record carries a temperature.
	ErrNoTemperature = errors.New("charts: series has no temperature values")
)

// temperatureSeries is one plottable line extracted from the daily records,
// with missing observations dropped.
type temperatureSeries struct {
	name  string
	dates []time.Time
	value []float64
}

// extractTemperatures pulls the tavg/tmin/tmax lines out of the records.
// Lines with no values at all are omitted.
func extractTemperatures(records []meteostat.DailyRecord) []temperatureSeries {
	fields := []struct {
		name  string
		value func(meteostat.DailyRecord) *float64
	}{
		{"tavg", func(r meteostat.DailyRecord) *float64 { return r.Tavg }},
		{"tmin", func(r meteostat.DailyRecord) *float64 { return r.Tmin }},
		{"tmax", func(r meteostat.DailyRecord) *float64 { return r.Tmax }},
	}

	var out []temperatureSeries
	for _, f := range fields {
		s := temperatureSeries{name: f.name}
		for _, rec := range records {
			if v := f.value(rec); v != nil {
				s.dates = append(s.dates, rec.Date)
				s.value = append(s.value, *v)
			}
		}
		if len(s.value) > 0 {
			out = append(out, s)
		}
	}
	return out
}
