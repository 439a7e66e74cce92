package chart

import (
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"pfeifer.dev/velfilter/plan"
)

func RenderHTML(w io.Writer, res plan.Result, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle(res)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "v (m/s)", NameLocation: "middle", NameGap: 30}),
	)

	line.SetXAxis(lo.Map(res.Arclength, func(s float64, _ int) string {
		return strconv.FormatFloat(s, 'f', -1, 64)
	}))
	for _, series := range Profiles(res) {
		data := lo.Map(series.Values, func(v float64, _ int) opts.LineData {
			return opts.LineData{Value: v}
		})
		line.AddSeries(series.Name, data)
	}

	if err := line.Render(w); err != nil {
		return errors.Wrap(err, "could not render html chart")
	}
	return nil
}

func SaveHTML(path string, res plan.Result, title string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer file.Close()

	if err := RenderHTML(file, res, title); err != nil {
		return err
	}
	return errors.Wrap(file.Close(), "could not close chart file")
}
