package meteostat

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// lapseRate is the constant temperature lapse rate used to adapt station
// temperatures to the point's elevation, in °C per meter.
const lapseRate = 0.0065

// DailyForPoint returns a daily series interpolated to the exact coordinate.
// It fetches the nearest stations whose daily inventory overlaps the range,
// adapts temperature columns for the elevation difference when the point's
// elevation is known, and merges the station series per date by
// inverse-distance weighting. Station downloads that fail are skipped as
// long as at least one succeeds.
func (c *Client) DailyForPoint(ctx context.Context, pt Point, start, end time.Time) (DailySeries, error) {
	nearby, err := c.NearbyStations(ctx, pt.Latitude, pt.Longitude, c.radiusM, 0)
	if err != nil {
		return DailySeries{}, err
	}

	var candidates []Station
	for _, s := range nearby {
		if !s.HasDaily(start, end) {
			continue
		}
		candidates = append(candidates, s)
		if len(candidates) == c.maxStations {
			break
		}
	}
	if len(candidates) == 0 {
		return DailySeries{}, ErrNoStations
	}

	type stationSeries struct {
		station Station
		records []DailyRecord
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		series []stationSeries
	)

	for _, s := range candidates {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()

			got, err := c.Daily(ctx, s.ID, start, end)
			if err != nil {
				log.Printf("meteostat: daily fetch for station %s failed: %v", s.ID, err)
				return
			}
			if len(got.Records) == 0 {
				return
			}

			records := got.Records
			if pt.Elevation != nil {
				records = adaptTemperatures(records, s.Elevation, *pt.Elevation)
			}

			mu.Lock()
			series = append(series, stationSeries{station: s, records: records})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(series) == 0 {
		return DailySeries{}, ErrNoData
	}

	// Deterministic merge order, nearest station first.
	sort.Slice(series, func(i, j int) bool {
		return series[i].station.Distance < series[j].station.Distance
	})

	byDate := make(map[time.Time][]sample)
	stations := make([]Station, 0, len(series))
	for _, ss := range series {
		stations = append(stations, ss.station)
		// Nearer stations dominate; the +1 keeps a station at the exact
		// coordinate from producing an infinite weight.
		w := 1.0 / (ss.station.Distance + 1)
		for _, rec := range ss.records {
			byDate[rec.Date] = append(byDate[rec.Date], sample{record: rec, weight: w})
		}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DailyRecord, 0, len(dates))
	for _, d := range dates {
		out = append(out, mergeSamples(d, byDate[d]))
	}

	return DailySeries{Records: out, Stations: stations}, nil
}

// adaptTemperatures shifts temperature columns by the elevation difference
// between station and point using the constant lapse rate.
func adaptTemperatures(records []DailyRecord, stationElev, pointElev float64) []DailyRecord {
	delta := (stationElev - pointElev) * lapseRate
	if delta == 0 {
		return records
	}

	out := make([]DailyRecord, len(records))
	for i, rec := range records {
		rec.Tavg = shift(rec.Tavg, delta)
		rec.Tmin = shift(rec.Tmin, delta)
		rec.Tmax = shift(rec.Tmax, delta)
		out[i] = rec
	}
	return out
}

func shift(v *float64, delta float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v + delta
	return &s
}

type sample struct {
	record DailyRecord
	weight float64
}

// mergeSamples combines the per-station records for one date into a single
// record. Numeric columns are inverse-distance weighted means over the
// stations reporting a value; wind direction is taken from the
// highest-weighted station reporting one, a mean being meaningless for a
// circular quantity.
func mergeSamples(date time.Time, samples []sample) DailyRecord {
	merged := DailyRecord{Date: date}

	merged.Tavg = weightedMean(samples, func(r DailyRecord) *float64 { return r.Tavg })
	merged.Tmin = weightedMean(samples, func(r DailyRecord) *float64 { return r.Tmin })
	merged.Tmax = weightedMean(samples, func(r DailyRecord) *float64 { return r.Tmax })
	merged.Prcp = weightedMean(samples, func(r DailyRecord) *float64 { return r.Prcp })
	merged.Snow = weightedMean(samples, func(r DailyRecord) *float64 { return r.Snow })
	merged.Wspd = weightedMean(samples, func(r DailyRecord) *float64 { return r.Wspd })
	merged.Wpgt = weightedMean(samples, func(r DailyRecord) *float64 { return r.Wpgt })
	merged.Pres = weightedMean(samples, func(r DailyRecord) *float64 { return r.Pres })
	merged.Tsun = weightedMean(samples, func(r DailyRecord) *float64 { return r.Tsun })

	var bestWeight float64
	for _, s := range samples {
		if s.record.Wdir != nil && s.weight > bestWeight {
			bestWeight = s.weight
			merged.Wdir = s.record.Wdir
		}
	}
	return merged
}

func weightedMean(samples []sample, field func(DailyRecord) *float64) *float64 {
	var sum, weights float64
	for _, s := range samples {
		v := field(s.record)
		if v == nil {
			continue
		}
		sum += *v * s.weight
		weights += s.weight
	}
	if weights == 0 {
		return nil
	}
	mean := sum / weights
	return &mean
}
