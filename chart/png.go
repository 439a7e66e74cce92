package chart

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"pfeifer.dev/velfilter/plan"
)

const (
	PNG_WIDTH  = 14 * vg.Inch
	PNG_HEIGHT = 6 * vg.Inch
)

func newPlot(res plan.Result, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title + " - " + subtitle(res)
	p.X.Label.Text = "s (m)"
	p.Y.Label.Text = "v (m/s)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	for i, series := range Profiles(res) {
		if len(series.Values) != len(res.Arclength) {
			return nil, errors.Errorf("series %s has %d values for %d samples", series.Name, len(series.Values), len(res.Arclength))
		}
		pts := make(plotter.XYs, len(series.Values))
		for j, v := range series.Values {
			pts[j] = plotter.XY{X: res.Arclength[j], Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "could not plot %s", series.Name)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		if i == 0 {
			line.Color = color.Gray{Y: 128}
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(series.Name, line)
	}
	p.Legend.Top = true
	return p, nil
}

func RenderPNG(w io.Writer, res plan.Result, title string) error {
	p, err := newPlot(res, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PNG_WIDTH, PNG_HEIGHT, "png")
	if err != nil {
		return errors.Wrap(err, "could not create png writer")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "could not render png chart")
}

func SavePNG(path string, res plan.Result, title string) error {
	p, err := newPlot(res, title)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(PNG_WIDTH, PNG_HEIGHT, path), "could not save %s", path)
}
