package meteostat

import (
	"math"
	"time"
)

// Station describes one weather station from the provider's inventory dump.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone,omitempty"`

	// Inventory coverage for the daily dataset; zero when unknown.
	DailyStart time.Time `json:"dailyStart,omitempty"`
	DailyEnd   time.Time `json:"dailyEnd,omitempty"`

	// Distance from the query point in meters. Only set on results of
	// NearbyStations and DailyForPoint.
	Distance float64 `json:"distance,omitempty"`
}

// HasDaily reports whether the station's daily inventory overlaps [start, end].
func (s Station) HasDaily(start, end time.Time) bool {
	if s.DailyStart.IsZero() || s.DailyEnd.IsZero() {
		return false
	}
	return !s.DailyStart.After(end) && !s.DailyEnd.Before(start)
}

// Point is an exact geographic coordinate to interpolate observations to.
// Elevation is in meters above sea level; nil disables temperature adaptation.
type Point struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// DailyRecord is one day of observations. Fields the provider has no value
// for are nil. Units follow the provider: temperatures in °C, precipitation
// and snow in mm, wind direction in degrees, wind speeds in km/h, pressure
// in hPa, sunshine in minutes.
type DailyRecord struct {
	Date time.Time `json:"date"`
	Tavg *float64  `json:"tavg,omitempty"`
	Tmin *float64  `json:"tmin,omitempty"`
	Tmax *float64  `json:"tmax,omitempty"`
	Prcp *float64  `json:"prcp,omitempty"`
	Snow *float64  `json:"snow,omitempty"`
	Wdir *float64  `json:"wdir,omitempty"`
	Wspd *float64  `json:"wspd,omitempty"`
	Wpgt *float64  `json:"wpgt,omitempty"`
	Pres *float64  `json:"pres,omitempty"`
	Tsun *float64  `json:"tsun,omitempty"`
}

// HourlyRecord is one hour of observations from the hourly dataset.
type HourlyRecord struct {
	Time time.Time `json:"time"`
	Temp *float64  `json:"temp,omitempty"`
	Dwpt *float64  `json:"dwpt,omitempty"`
	Rhum *float64  `json:"rhum,omitempty"`
	Prcp *float64  `json:"prcp,omitempty"`
	Snow *float64  `json:"snow,omitempty"`
	Wdir *float64  `json:"wdir,omitempty"`
	Wspd *float64  `json:"wspd,omitempty"`
	Wpgt *float64  `json:"wpgt,omitempty"`
	Pres *float64  `json:"pres,omitempty"`
	Tsun *float64  `json:"tsun,omitempty"`
	Coco *float64  `json:"coco,omitempty"`
}

// DailySeries is a date-ordered daily time series, either for a single
// station or interpolated to a Point.
type DailySeries struct {
	Records []DailyRecord `json:"records"`

	// Stations contributing to the series, nearest first.
	Stations []Station `json:"stations,omitempty"`
}

// Start returns the date of the first record, or the zero time.
func (s DailySeries) Start() time.Time {
	if len(s.Records) == 0 {
		return time.Time{}
	}
	return s.Records[0].Date
}

// End returns the date of the last record, or the zero time.
func (s DailySeries) End() time.Time {
	if len(s.Records) == 0 {
		return time.Time{}
	}
	return s.Records[len(s.Records)-1].Date
}

const earthRadiusM = 6371000.0

// distanceM returns the great-circle distance between two coordinates in
// meters, using the haversine formula.
func distanceM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
