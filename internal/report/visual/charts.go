package visual

import (
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"orderetl/internal/report/salesagg"
)

const maxDateTicks = 12

// renderDailyChart draws the daily sales trend as a line chart. Dates stay
// opaque strings, so points sit at their index and ticks carry the labels.
func renderDailyChart(daily []salesagg.DailySales, path string) error {
	if len(daily) == 0 {
		return fmt.Errorf("daily chart: no data")
	}
	xs := make([]float64, len(daily))
	ys := make([]float64, len(daily))
	ymin, ymax := float64(daily[0].Sales), float64(daily[0].Sales)
	for i, d := range daily {
		xs[i] = float64(i)
		ys[i] = float64(d.Sales)
		if ys[i] < ymin {
			ymin = ys[i]
		}
		if ys[i] > ymax {
			ymax = ys[i]
		}
	}

	graph := chart.Chart{
		Title: "Daily Sales Trend",
		XAxis: chart.XAxis{Ticks: dateTicks(daily)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "sales",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeWidth: 2.5, DotWidth: 4},
			},
		},
	}
	// go-chart rejects zero-width ranges, which show up with a single day
	// or a flat series.
	if len(daily) == 1 {
		graph.XAxis.Range = &chart.ContinuousRange{Min: -1, Max: 1}
	}
	if ymin == ymax {
		graph.YAxis = chart.YAxis{Range: &chart.ContinuousRange{Min: ymin - 1, Max: ymax + 1}}
	}
	return renderSVG(graph, path)
}

// renderCategoryChart draws revenue per category as a vertical bar chart.
func renderCategoryChart(categories []salesagg.CategorySales, path string) error {
	if len(categories) == 0 {
		return fmt.Errorf("category chart: no data")
	}
	bars := make([]chart.Value, len(categories))
	var ymax float64
	for i, c := range categories {
		bars[i] = chart.Value{Value: float64(c.Sales), Label: c.Category}
		if float64(c.Sales) > ymax {
			ymax = float64(c.Sales)
		}
	}
	if ymax <= 0 {
		ymax = 1
	}
	graph := chart.BarChart{
		Title:    "Sales by Category",
		Height:   512,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: ymax * 1.1},
		},
		Bars: bars,
	}
	return renderSVG(graph, path)
}

// renderTopProductsChart draws the leading products as horizontal bars.
// Stacked bars normalize segment lengths per bar, so each product gets a
// transparent filler segment that pads it out to a shared scale.
func renderTopProductsChart(top []salesagg.TopProduct, path string) error {
	if len(top) == 0 {
		return fmt.Errorf("top products chart: no data")
	}
	scale := float64(top[0].Sales) * 1.05
	if scale <= 0 {
		scale = 1
	}
	bars := make([]chart.StackedBar, len(top))
	for i, p := range top {
		sales := float64(p.Sales)
		bars[i] = chart.StackedBar{
			Name:  p.Product,
			Width: 60,
			Values: []chart.Value{
				{Value: sales, Label: p.Sales.String()},
				{Value: scale - sales, Style: chart.Style{
					FillColor:   chart.ColorTransparent,
					StrokeColor: chart.ColorTransparent,
				}},
			},
		}
	}
	graph := chart.StackedBarChart{
		Title:        "Top Products by Sales",
		Height:       512,
		IsHorizontal: true,
		Bars:         bars,
	}
	return renderSVG(graph, path)
}

// dateTicks thins the x axis labels down to a readable count, always keeping
// the first and last date.
func dateTicks(daily []salesagg.DailySales) []chart.Tick {
	step := 1
	if len(daily) > maxDateTicks {
		step = (len(daily) + maxDateTicks - 1) / maxDateTicks
	}
	ticks := make([]chart.Tick, 0, maxDateTicks+1)
	for i := 0; i < len(daily); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: daily[i].Date})
	}
	if last := len(daily) - 1; ticks[len(ticks)-1].Value != float64(last) {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: daily[last].Date})
	}
	return ticks
}

type svgRenderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderSVG(graph svgRenderable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := graph.Render(chart.SVG, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
