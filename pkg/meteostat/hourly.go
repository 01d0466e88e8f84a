package meteostat

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Hourly dump layout: date,hour,temp,dwpt,rhum,prcp,snow,wdir,wspd,wpgt,pres,tsun,coco.
const hourlyFields = 13

// Hourly fetches the hourly observation dump for one station and returns the
// records inside [start, end]. Timestamps are UTC.
func (c *Client) Hourly(ctx context.Context, stationID string, start, end time.Time) ([]HourlyRecord, error) {
	body, err := c.fetch(ctx, "hourly/"+stationID+".csv.gz")
	if err != nil {
		return nil, err
	}

	records, err := parseHourlyCSV(body)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", stationID, err)
	}

	var out []HourlyRecord
	for _, rec := range records {
		if rec.Time.Before(start) || rec.Time.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseHourlyCSV(body []byte) ([]HourlyRecord, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = hourlyFields
	r.ReuseRecord = true

	var records []HourlyRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse hourly csv: %w", err)
		}

		ts, err := time.Parse("2006-01-02 15", row[0]+" "+row[1])
		if err != nil {
			return nil, fmt.Errorf("parse hourly csv timestamp %q %q: %w", row[0], row[1], err)
		}

		records = append(records, HourlyRecord{
			Time: ts,
			Temp: parseFloat(row[2]),
			Dwpt: parseFloat(row[3]),
			Rhum: parseFloat(row[4]),
			Prcp: parseFloat(row[5]),
			Snow: parseFloat(row[6]),
			Wdir: parseFloat(row[7]),
			Wspd: parseFloat(row[8]),
			Wpgt: parseFloat(row[9]),
			Pres: parseFloat(row[10]),
			Tsun: parseFloat(row[11]),
			Coco: parseFloat(row[12]),
		})
	}
	return records, nil
}
