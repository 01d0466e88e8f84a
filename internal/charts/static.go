package charts

import (
	"io"

	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	"github.com/guiajf/meteostat/pkg/meteostat"
)

var lineColors = map[string]drawing.Color{
	"tavg": drawing.ColorBlue,
	"tmin": {R: 0, G: 180, B: 212, A: 255},
	"tmax": drawing.ColorRed,
}

// RenderPNG draws the temperature lines of the records as a static PNG.
func RenderPNG(w io.Writer, title string, records []meteostat.DailyRecord) error {
	if len(records) == 0 {
		return ErrEmptySeries
	}

	lines := extractTemperatures(records)
	if len(lines) == 0 {
		return ErrNoTemperature
	}

	series := make([]chart.Series, 0, len(lines))
	for _, line := range lines {
		series = append(series, chart.TimeSeries{
			Name: line.name,
			Style: chart.Style{
				Show:        true,
				StrokeColor: lineColors[line.name],
			},
			XValues: line.dates,
			YValues: line.value,
		})
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{Show: title != ""},
		Width:      1024,
		Height:     512,
		XAxis: chart.XAxis{
			Style: chart.Style{Show: true},
		},
		YAxis: chart.YAxis{
			Name:  "°C",
			Style: chart.Style{Show: true},
		},
		Series: series,
	}

	return graph.Render(chart.PNG, w)
}
