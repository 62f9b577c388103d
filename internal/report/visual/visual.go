// Package visual turns a sales aggregation into decision-support artifacts:
// three SVG charts and a short markdown report, written into one output
// directory. Chart rendering is independent per file, so the three renders
// run concurrently.
package visual

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"orderetl/internal/report/salesagg"
)

// Artifact file names, fixed so downstream links stay stable.
const (
	DailyChartFile    = "daily_sales.svg"
	CategoryChartFile = "category_sales.svg"
	TopChartFile      = "top_products.svg"
	ReportFile        = "decision_report.md"
)

// Artifacts lists the generated file names relative to the output dir.
type Artifacts struct {
	DailySalesChart        string `json:"daily_sales_chart"`
	CategorySalesChart     string `json:"category_sales_chart"`
	TopProductsChart       string `json:"top_products_chart"`
	DecisionReportMarkdown string `json:"decision_report_markdown"`
}

// Result wraps the aggregation with the insight sentences and artifact list.
type Result struct {
	Summary       salesagg.Summary         `json:"summary"`
	DailySales    []salesagg.DailySales    `json:"daily_sales"`
	CategorySales []salesagg.CategorySales `json:"category_sales"`
	TopProducts   []salesagg.TopProduct    `json:"top_products"`
	Insights      []string                 `json:"insights"`
	Artifacts     Artifacts                `json:"artifacts"`
}

// Build renders the charts and the markdown report for agg into outDir,
// creating it if needed. Existing artifacts are overwritten. The aggregation
// must not be empty; there is nothing to visualize in a zero batch.
func Build(agg salesagg.Result, outDir string) (Result, error) {
	if agg.Summary.TotalOrders == 0 || len(agg.DailySales) == 0 {
		return Result{}, fmt.Errorf("visual: empty aggregation, nothing to render")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("visual: create output dir: %w", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		return renderDailyChart(agg.DailySales, filepath.Join(outDir, DailyChartFile))
	})
	g.Go(func() error {
		return renderCategoryChart(agg.CategorySales, filepath.Join(outDir, CategoryChartFile))
	})
	g.Go(func() error {
		return renderTopProductsChart(agg.TopProducts, filepath.Join(outDir, TopChartFile))
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("visual: render charts: %w", err)
	}

	artifacts := Artifacts{
		DailySalesChart:        DailyChartFile,
		CategorySalesChart:     CategoryChartFile,
		TopProductsChart:       TopChartFile,
		DecisionReportMarkdown: ReportFile,
	}
	insights := buildInsights(agg)

	md := renderMarkdown(agg.Summary, insights, artifacts)
	if err := os.WriteFile(filepath.Join(outDir, ReportFile), []byte(md), 0o644); err != nil {
		return Result{}, fmt.Errorf("visual: write report: %w", err)
	}

	return Result{
		Summary:       agg.Summary,
		DailySales:    agg.DailySales,
		CategorySales: agg.CategorySales,
		TopProducts:   agg.TopProducts,
		Insights:      insights,
		Artifacts:     artifacts,
	}, nil
}

// buildInsights produces the three decision sentences: best day, strongest
// category, strongest product.
func buildInsights(agg salesagg.Result) []string {
	out := []string{
		fmt.Sprintf("The best sales day is %s with revenue of %s.",
			agg.Summary.BestSalesDay, agg.Summary.BestSalesAmount),
	}
	if len(agg.CategorySales) > 0 {
		top := agg.CategorySales[0]
		out = append(out, fmt.Sprintf("%s is the strongest category with revenue of %s.",
			top.Category, top.Sales))
	}
	if len(agg.TopProducts) > 0 {
		top := agg.TopProducts[0]
		out = append(out, fmt.Sprintf("%s is the strongest product with revenue of %s.",
			top.Product, top.Sales))
	}
	return out
}

// renderMarkdown lays out the decision report.
func renderMarkdown(sum salesagg.Summary, insights []string, a Artifacts) string {
	lines := []string{
		"# Sales Visual Report",
		"",
		"## Summary",
		fmt.Sprintf("- Total orders: %d", sum.TotalOrders),
		fmt.Sprintf("- Total revenue: %s", sum.TotalRevenue),
		fmt.Sprintf("- Average order value: %s", sum.AverageOrderValue),
		fmt.Sprintf("- Best sales day: %s (%s)", sum.BestSalesDay, sum.BestSalesAmount),
		"",
		"## Decision Notes",
	}
	for _, insight := range insights {
		lines = append(lines, "- "+insight)
	}
	lines = append(lines,
		"",
		"## Generated Charts",
		fmt.Sprintf("- Daily sales: `%s`", a.DailySalesChart),
		fmt.Sprintf("- Category sales: `%s`", a.CategorySalesChart),
		fmt.Sprintf("- Top products: `%s`", a.TopProductsChart),
	)
	return strings.Join(lines, "\n") + "\n"
}
