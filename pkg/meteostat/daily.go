package meteostat

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Daily fetches the daily observation dump for one station and returns the
// records with dates inside [start, end]. Dates are at midnight UTC.
func (c *Client) Daily(ctx context.Context, stationID string, start, end time.Time) (DailySeries, error) {
	body, err := c.fetch(ctx, "daily/"+stationID+".csv.gz")
	if err != nil {
		return DailySeries{}, err
	}

	records, err := parseDailyCSV(body)
	if err != nil {
		return DailySeries{}, fmt.Errorf("station %s: %w", stationID, err)
	}

	return DailySeries{Records: clipDaily(records, start, end)}, nil
}

// Daily dump layout: date,tavg,tmin,tmax,prcp,snow,wdir,wspd,wpgt,pres,tsun.
// No header row; empty fields mean no observation.
const dailyFields = 11

func parseDailyCSV(body []byte) ([]DailyRecord, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = dailyFields
	r.ReuseRecord = true

	var records []DailyRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse daily csv: %w", err)
		}

		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, fmt.Errorf("parse daily csv date %q: %w", row[0], err)
		}

		records = append(records, DailyRecord{
			Date: date,
			Tavg: parseFloat(row[1]),
			Tmin: parseFloat(row[2]),
			Tmax: parseFloat(row[3]),
			Prcp: parseFloat(row[4]),
			Snow: parseFloat(row[5]),
			Wdir: parseFloat(row[6]),
			Wspd: parseFloat(row[7]),
			Wpgt: parseFloat(row[8]),
			Pres: parseFloat(row[9]),
			Tsun: parseFloat(row[10]),
		})
	}
	return records, nil
}

func clipDaily(records []DailyRecord, start, end time.Time) []DailyRecord {
	var out []DailyRecord
	for _, rec := range records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// parseFloat converts one CSV field, treating empty as missing.
func parseFloat(field string) *float64 {
	if field == "" {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	return &v
}
