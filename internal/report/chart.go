package report

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderChart writes a PNG line chart for a product's price series, one
// line per retailer with time on the x axis.
func RenderChart(w io.Writer, title string, series map[string][]Point) error {
	retailers := make([]string, 0, len(series))
	for name := range series {
		if len(series[name]) > 0 {
			retailers = append(retailers, name)
		}
	}
	if len(retailers) == 0 {
		return errors.New("no price data to chart")
	}
	sort.Strings(retailers)

	var lines []chart.Series
	for _, name := range retailers {
		pts := series[name]
		xs := make([]time.Time, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i] = p.Time
			ys[i] = p.Price
		}
		lines = append(lines, chart.TimeSeries{Name: name, XValues: xs, YValues: ys})
	}

	graph := chart.Chart{
		Title:  title,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:  chart.YAxis{ValueFormatter: chart.FloatValueFormatter},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
