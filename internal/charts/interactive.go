package charts

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/guiajf/meteostat/pkg/meteostat"
)

// RenderHTML renders the temperature lines of the records as a standalone
// interactive HTML document (tooltip and range slider included).
func RenderHTML(w io.Writer, title string, records []meteostat.DailyRecord) error {
	if len(records) == 0 {
		return ErrEmptySeries
	}
	if len(extractTemperatures(records)) == 0 {
		return ErrNoTemperature
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	dates := make([]string, 0, len(records))
	for _, rec := range records {
		dates = append(dates, rec.Date.Format("2006-01-02"))
	}
	line.SetXAxis(dates)

	// Dates with a missing observation become gaps instead of being
	// dropped, keeping all three lines aligned on the shared axis.
	addLine := func(name string, value func(meteostat.DailyRecord) *float64) {
		data := make([]opts.LineData, 0, len(records))
		any := false
		for _, rec := range records {
			if v := value(rec); v != nil {
				data = append(data, opts.LineData{Value: *v})
				any = true
			} else {
				data = append(data, opts.LineData{Value: "-"})
			}
		}
		if any {
			line.AddSeries(name, data)
		}
	}

	addLine("tavg", func(r meteostat.DailyRecord) *float64 { return r.Tavg })
	addLine("tmin", func(r meteostat.DailyRecord) *float64 { return r.Tmin })
	addLine("tmax", func(r meteostat.DailyRecord) *float64 { return r.Tmax })

	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return line.Render(w)
}
