package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/guiajf/meteostat/internal/charts"
	"github.com/guiajf/meteostat/internal/geo"
	"github.com/guiajf/meteostat/internal/weather"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

var validate = validator.New()

// SeriesService is the slice of the weather service the handlers need.
type SeriesService interface {
	DailySeries(ctx context.Context, loc weather.Location, start, end time.Time) (weather.SeriesEntry, error)
	NearbyStations(ctx context.Context, loc weather.Location, limit int) ([]meteostat.Station, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service SeriesService) {
	v1 := app.Group("/api/v1")

	v1.Get("/series/daily", func(c *fiber.Ctx) error {
		var req seriesQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entry, err := service.DailySeries(c.Context(), req.Location.toLocation(), req.Start, req.End)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"location": entry.Location,
			"point":    entry.Point,
			"start":    req.Start.Format("2006-01-02"),
			"end":      req.End.Format("2006-01-02"),
			"series":   entry.Series,
		})
	})

	v1.Get("/stations/nearby", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		limit := c.QueryInt("limit", 8)
		if limit < 1 || limit > 50 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 50")
		}

		stations, err := service.NearbyStations(c.Context(), loc.toLocation(), limit)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"location": loc.toLocation(),
			"stations": stations,
		})
	})

	v1.Get("/charts/temperature", func(c *fiber.Ctx) error {
		var req chartQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		entry, err := service.DailySeries(c.Context(), loc, req.Start, req.End)
		if err != nil {
			return mapServiceError(err)
		}

		title := fmt.Sprintf("Daily temperatures - %s, %s", loc.City, loc.Country)

		switch req.Format {
		case "png":
			c.Type("png")
			err = charts.RenderPNG(c.Response().BodyWriter(), title, entry.Series.Records)
		case "html":
			c.Type("html", "utf-8")
			err = charts.RenderHTML(c.Response().BodyWriter(), title, entry.Series.Records)
		}
		if err != nil {
			if errors.Is(err, charts.ErrEmptySeries) || errors.Is(err, charts.ErrNoTemperature) {
				return fiber.NewError(fiber.StatusNotFound, "no temperature data to plot")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}
		return nil
	})
}

// mapServiceError translates service errors into HTTP statuses: unknown
// places and empty datasets are 404, upstream trouble is 502.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, geo.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "unknown location")
	case errors.Is(err, meteostat.ErrNoStations),
		errors.Is(err, meteostat.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, "no observations for requested location")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// seriesQuery holds query parameters for the daily series endpoint.
type seriesQuery struct {
	Location locationQuery
	Start    time.Time `validate:"required"`
	End      time.Time `validate:"required,gtefield=Start"`
}

func (s *seriesQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	s.Location = loc

	// Default window: the year up to yesterday. The daily dumps trail
	// real time, so today is never requested.
	end := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
	start := end.AddDate(-1, 0, 0)

	if v := c.Query("start"); v != "" {
		if start, err = parseDate(v); err != nil {
			return err
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = parseDate(v); err != nil {
			return err
		}
	}

	s.Start = start
	s.End = end
	return validate.Struct(s)
}

// chartQuery adds the rendering format to the series parameters.
type chartQuery struct {
	seriesQuery
	Format string `validate:"required,oneof=png html"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	if err := q.seriesQuery.bind(c); err != nil {
		return err
	}
	q.Format = c.Query("format", "png")
	return validate.Struct(q)
}

// parseDate accepts either a plain date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Truncate(24 * time.Hour), nil
	}
	return time.Time{}, errors.New("invalid date; use YYYY-MM-DD or RFC3339")
}
