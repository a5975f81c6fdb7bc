package report

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
)

// ChartRenderer draws PNG charts
type ChartRenderer interface {
	LineChart(title string, labels []string, values []float64) ([]byte, error)
	PieChart(title string, labels []string, values []float64) ([]byte, error)
}

// GoChart renders with go-chart
type GoChart struct {
	Width  int
	Height int
}

func NewGoChart(width, height int) *GoChart {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	return &GoChart{Width: width, Height: height}
}

func (g *GoChart) LineChart(title string, labels []string, values []float64) ([]byte, error) {
	if len(labels) != len(values) || len(values) == 0 {
		return nil, errors.Errorf("line chart %q: %d labels for %d values", title, len(labels), len(values))
	}
	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}
	// a flat series has a zero range, which go-chart refuses to draw
	top := lo.Max(values)
	if top < 1 {
		top = 1
	}
	graph := chart.Chart{
		Title:  title,
		Width:  g.Width,
		Height: g.Height,
		XAxis: chart.XAxis{
			Name:  "Month",
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Orders",
				XValues: xs,
				YValues: values,
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "render %q", title)
	}
	return buf.Bytes(), nil
}

func (g *GoChart) PieChart(title string, labels []string, values []float64) ([]byte, error) {
	if len(labels) != len(values) {
		return nil, errors.Errorf("pie chart %q: %d labels for %d values", title, len(labels), len(values))
	}
	slices := make([]chart.Value, 0, len(values))
	for i, v := range values {
		if v > 0 {
			slices = append(slices, chart.Value{Label: labels[i], Value: v})
		}
	}
	if len(slices) == 0 {
		slices = append(slices, chart.Value{Label: "No purchases", Value: 1})
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  g.Width,
		Height: g.Height,
		Values: slices,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "render %q", title)
	}
	return buf.Bytes(), nil
}
