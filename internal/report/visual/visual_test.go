package visual

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"orderetl/internal/report/salesagg"
)

func sampleAgg() salesagg.Result {
	return salesagg.Aggregate([]salesagg.Row{
		{Date: "2024-01-01", Category: "Gadgets", Product: "Cable", Quantity: 2, Price: 12.5},
		{Date: "2024-01-01", Category: "Food", Product: "Apple", Quantity: 4, Price: 1.2},
		{Date: "2024-01-02", Category: "Stationery", Product: "Pen", Quantity: 10, Price: 1.5},
	})
}

func readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err, "artifact %s", name)
	return string(b)
}

func TestBuild_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	agg := sampleAgg()

	res, err := Build(agg, dir)
	require.NoError(t, err)

	for _, name := range []string{DailyChartFile, CategoryChartFile, TopChartFile} {
		svg := readArtifact(t, dir, name)
		require.Contains(t, svg, "<svg", "chart %s should be an SVG document", name)
	}

	md := readArtifact(t, dir, ReportFile)
	require.Contains(t, md, "# Sales Visual Report")
	require.Contains(t, md, "- Total orders: 3")
	require.Contains(t, md, "- Total revenue: 44.8")
	require.Contains(t, md, "- Best sales day: 2024-01-01 (29.8)")
	require.Contains(t, md, "- Daily sales: `daily_sales.svg`")
	require.Contains(t, md, "- Top products: `top_products.svg`")

	require.Equal(t, agg.Summary, res.Summary)
	require.Equal(t, agg.DailySales, res.DailySales)
	require.Equal(t, agg.CategorySales, res.CategorySales)
	require.Equal(t, agg.TopProducts, res.TopProducts)
	require.Equal(t, Artifacts{
		DailySalesChart:        "daily_sales.svg",
		CategorySalesChart:     "category_sales.svg",
		TopProductsChart:       "top_products.svg",
		DecisionReportMarkdown: "decision_report.md",
	}, res.Artifacts)

	require.Equal(t, []string{
		"The best sales day is 2024-01-01 with revenue of 29.8.",
		"Gadgets is the strongest category with revenue of 25.",
		"Cable is the strongest product with revenue of 25.",
	}, res.Insights)
}

func TestBuild_SingleDay(t *testing.T) {
	t.Parallel()

	// One row exercises the degenerate chart ranges: a single x point and a
	// flat y series.
	dir := t.TempDir()
	agg := salesagg.Aggregate([]salesagg.Row{
		{Date: "2024-03-05", Category: "Food", Product: "Apple", Quantity: 1, Price: 2},
	})

	res, err := Build(agg, dir)
	require.NoError(t, err)
	require.Len(t, res.Insights, 3)

	svg := readArtifact(t, dir, DailyChartFile)
	require.Contains(t, svg, "<svg")
}

func TestBuild_EmptyAggregation(t *testing.T) {
	t.Parallel()

	_, err := Build(salesagg.Result{}, t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty aggregation")
}

func TestBuild_CreatesAndOverwrites(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports", "q1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReportFile), []byte("stale"), 0o644))

	_, err := Build(sampleAgg(), dir)
	require.NoError(t, err)

	md := readArtifact(t, dir, ReportFile)
	require.NotContains(t, md, "stale")
	require.Contains(t, md, "# Sales Visual Report")
}

func TestBuild_OutputDirIsFile(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Build(sampleAgg(), filepath.Join(blocker, "out"))
	require.Error(t, err)
}

func TestRenderMarkdown_Layout(t *testing.T) {
	t.Parallel()

	sum := salesagg.Summary{
		TotalOrders:       3,
		TotalRevenue:      44.8,
		AverageOrderValue: 14.93,
		BestSalesDay:      "2024-01-01",
		BestSalesAmount:   29.8,
	}
	a := Artifacts{
		DailySalesChart:        DailyChartFile,
		CategorySalesChart:     CategoryChartFile,
		TopProductsChart:       TopChartFile,
		DecisionReportMarkdown: ReportFile,
	}
	got := renderMarkdown(sum, []string{"First.", "Second.", "Third."}, a)

	want := strings.Join([]string{
		"# Sales Visual Report",
		"",
		"## Summary",
		"- Total orders: 3",
		"- Total revenue: 44.8",
		"- Average order value: 14.93",
		"- Best sales day: 2024-01-01 (29.8)",
		"",
		"## Decision Notes",
		"- First.",
		"- Second.",
		"- Third.",
		"",
		"## Generated Charts",
		"- Daily sales: `daily_sales.svg`",
		"- Category sales: `category_sales.svg`",
		"- Top products: `top_products.svg`",
		"",
	}, "\n")
	require.Equal(t, want, got)
}

func TestDateTicks_Thinning(t *testing.T) {
	t.Parallel()

	daily := make([]salesagg.DailySales, 40)
	for i := range daily {
		daily[i] = salesagg.DailySales{Date: "d", Sales: 1}
	}
	ticks := dateTicks(daily)
	require.LessOrEqual(t, len(ticks), maxDateTicks+1)
	require.Equal(t, float64(0), ticks[0].Value)
	require.Equal(t, float64(len(daily)-1), ticks[len(ticks)-1].Value)
}
