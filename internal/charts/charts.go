// internal/charts/charts.go
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/FairForge/lifesync/internal/dataset"
	"github.com/FairForge/lifesync/internal/wellness"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("charts: no data to plot")

// Default canvas size in pixels
const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// MaxCategories caps the bars of a categorical chart.
const MaxCategories = 10

var (
	happinessColor = drawing.ColorFromHex("2ecc71")
	stressColor    = drawing.ColorFromHex("e74c3c")
	burnoutColor   = drawing.ColorFromHex("f39c12")
	barColor       = drawing.ColorFromHex("3498db")
)

var palette = []drawing.Color{
	drawing.ColorFromHex("3498db"),
	drawing.ColorFromHex("e74c3c"),
	drawing.ColorFromHex("2ecc71"),
	drawing.ColorFromHex("9b59b6"),
	drawing.ColorFromHex("f39c12"),
	drawing.ColorFromHex("1abc9c"),
	drawing.ColorFromHex("34495e"),
}

// Forecast plots happiness, stress and burnout across the horizons.
// Burnout is divided by ten so all three share the 0-10 axis.
func Forecast(f wellness.Forecast) ([]byte, error) {
	if len(f) == 0 {
		return nil, ErrNoData
	}

	xs := make([]float64, len(f))
	ticks := make([]chart.Tick, len(f))
	for i, label := range f.Labels() {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	burnout := f.Series(wellness.MetricBurnout)
	for i := range burnout {
		burnout[i] /= 10
	}

	graph := chart.Chart{
		Title:      "Wellness Forecast",
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Time Horizon", Ticks: ticks},
		YAxis: chart.YAxis{
			Name:  "Score (0-10 scale)",
			Range: &chart.ContinuousRange{Min: 0, Max: 10},
		},
		Series: []chart.Series{
			line("Happiness", xs, f.Series(wellness.MetricHappiness), happinessColor),
			line("Stress", xs, f.Series(wellness.MetricStress), stressColor),
			line("Burnout Risk (/10)", xs, burnout, burnoutColor),
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	return render(graph)
}

func line(name string, xs, ys []float64, c drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: c,
			StrokeWidth: 3,
			DotColor:    c,
			DotWidth:    4,
		},
	}
}

// Distribution renders a column distribution as a bar chart. Categorical
// columns keep only the MaxCategories most frequent values.
func Distribution(d dataset.Distribution) ([]byte, error) {
	buckets := d.Buckets
	if d.Kind == dataset.KindCategorical && len(buckets) > MaxCategories {
		buckets = buckets[:MaxCategories]
	}
	values := make([]chart.Value, len(buckets))
	for i, b := range buckets {
		values[i] = chart.Value{Label: b.Label, Value: float64(b.Count)}
	}
	return bars(fmt.Sprintf("%s Distribution", d.Column), values)
}

// Pie renders a categorical distribution as a pie chart.
func Pie(d dataset.Distribution) ([]byte, error) {
	values := make([]chart.Value, 0, len(d.Buckets))
	for i, b := range d.Buckets {
		if b.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", b.Label, b.Count),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("%s Distribution", d.Column),
		Width:  DefaultHeight,
		Height: DefaultHeight,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Importance renders a ranked feature list as a bar chart.
func Importance(title string, ranked []dataset.RankedFeature) ([]byte, error) {
	values := make([]chart.Value, len(ranked))
	for i, r := range ranked {
		values[i] = chart.Value{Label: r.Feature, Value: r.Importance}
	}
	return bars(title, values)
}

func bars(title string, values []chart.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	top := 0.0
	for i := range values {
		values[i].Style = chart.Style{FillColor: barColor, StrokeColor: barColor}
		top = math.Max(top, values[i].Value)
	}
	if top <= 0 {
		top = 1
	}

	width := len(values) * 90
	if width < DefaultWidth {
		width = DefaultWidth
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     DefaultHeight,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 50}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func render(graph chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
