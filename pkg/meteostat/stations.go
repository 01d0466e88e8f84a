package meteostat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const stationsPath = "stations/lite.json.gz"

// stationJSON mirrors one entry of the station inventory dump.
type stationJSON struct {
	ID       string            `json:"id"`
	Name     map[string]string `json:"name"`
	Country  string            `json:"country"`
	Region   string            `json:"region"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Elevation float64 `json:"elevation"`
	} `json:"location"`
	Timezone  string `json:"timezone"`
	Inventory struct {
		Daily struct {
			Start *string `json:"start"`
			End   *string `json:"end"`
		} `json:"daily"`
	} `json:"inventory"`
}

// Stations returns the full station inventory. The dump is decoded once per
// Client and reused; the raw download still goes through the cache.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inventory != nil {
		return c.inventory, nil
	}

	body, err := c.fetch(ctx, stationsPath)
	if err != nil {
		return nil, err
	}

	var raw []stationJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode station inventory: %w", err)
	}

	stations := make([]Station, 0, len(raw))
	for _, r := range raw {
		s := Station{
			ID:        r.ID,
			Name:      r.Name["en"],
			Country:   r.Country,
			Region:    r.Region,
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
			Elevation: r.Location.Elevation,
			Timezone:  r.Timezone,
		}
		if r.Inventory.Daily.Start != nil {
			if t, err := time.Parse("2006-01-02", *r.Inventory.Daily.Start); err == nil {
				s.DailyStart = t
			}
		}
		if r.Inventory.Daily.End != nil {
			if t, err := time.Parse("2006-01-02", *r.Inventory.Daily.End); err == nil {
				s.DailyEnd = t
			}
		}
		stations = append(stations, s)
	}

	c.inventory = stations
	return stations, nil
}

// NearbyStations returns up to limit stations within radius meters of the
// coordinate, nearest first, with Distance populated. A radius <= 0 uses the
// client default; limit <= 0 means no cap.
func (c *Client) NearbyStations(ctx context.Context, lat, lon, radius float64, limit int) ([]Station, error) {
	stations, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}

	if radius <= 0 {
		radius = c.radiusM
	}

	var nearby []Station
	for _, s := range stations {
		d := distanceM(lat, lon, s.Latitude, s.Longitude)
		if d > radius {
			continue
		}
		s.Distance = d
		nearby = append(nearby, s)
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}
