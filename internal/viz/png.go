package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

// SaveTimeSeries plots the selected state entries against time. The file
// format follows the extension of path.
func SaveTimeSeries(path, title string, res *dynamo.Result, indices []int) error {
	if len(res.States) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time [s]"

	for i, idx := range indices {
		if idx < 0 || idx >= len(res.States[0]) {
			return fmt.Errorf("%w: state index %d", dynamo.ErrDimensionMismatch, idx)
		}
		pts := make(plotter.XYs, len(res.States))
		for k, x := range res.States {
			pts[k] = plotter.XY{X: res.Times[k], Y: x[idx]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(vehicle.StateName(idx), line)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// SaveTrack plots the horizontal track, east to the right and north up.
func SaveTrack(path, title string, res *dynamo.Result) error {
	if len(res.States) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "y (east) [m]"
	p.Y.Label.Text = "x (north) [m]"

	pts := make(plotter.XYs, len(res.States))
	for k, x := range res.States {
		pts[k] = plotter.XY{X: x[vehicle.IdxPosition+1], Y: x[vehicle.IdxPosition]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
