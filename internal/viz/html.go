package viz

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

// WriteHTML renders an interactive page with the selected states against
// time and the horizontal track, north up.
func WriteHTML(w io.Writer, title string, res *dynamo.Result, indices []int) error {
	if len(res.States) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	labels := make([]string, len(res.Times))
	for i, t := range res.Times {
		labels[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d samples", len(res.States))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(labels)
	for _, idx := range indices {
		if idx < 0 || idx >= len(res.States[0]) {
			return fmt.Errorf("state index %d out of range", idx)
		}
		data := make([]opts.LineData, len(res.States))
		for i, x := range res.States {
			data[i] = opts.LineData{Value: x[idx]}
		}
		line.AddSeries(vehicle.StateName(idx), data)
	}

	track := make([]opts.ScatterData, len(res.States))
	pad := 1.0
	for i, x := range res.States {
		n, e := x[vehicle.IdxPosition], x[vehicle.IdxPosition+1]
		track[i] = opts.ScatterData{Value: []interface{}{e, n}}
		pad = math.Max(pad, math.Max(math.Abs(n), math.Abs(e))*1.1)
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "track"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "east (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "north (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("track", track, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	page := components.NewPage()
	page.AddCharts(line, scatter)
	return page.Render(w)
}
