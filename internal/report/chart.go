package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/datasplit/internal/dataset"
)

// RenderChart writes a standalone HTML bar chart of the per-class sample
// counts: the distribution before and after pruning, plus one series per
// split partition.
func RenderChart(w io.Writer, run Run) error {
	if run.Prune == nil {
		return fmt.Errorf("no prune report to chart")
	}

	// X axis covers every class seen at any point in the run.
	union := make(dataset.Histogram)
	for class := range run.Prune.Before {
		union[class] = 1
	}
	for class := range run.Prune.After {
		union[class] = 1
	}
	classes := union.Classes()

	names := make([]string, len(classes))
	for i, class := range classes {
		names[i] = ClassName(class)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Class Distribution",
			Width:     "1100px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Class Distribution",
			Subtitle: fmt.Sprintf("source=%s seed=%d", run.Source, run.Seed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(names).
		AddSeries("before pruning", barSeries(run.Prune.Before, classes)).
		AddSeries("after pruning", barSeries(run.Prune.After, classes))

	if run.Splits != nil {
		for _, part := range run.Splits.Subsets() {
			bar.AddSeries(part.Name, barSeries(part.Pool.Histogram(), classes))
		}
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func barSeries(h dataset.Histogram, classes []dataset.ClassID) []opts.BarData {
	data := make([]opts.BarData, len(classes))
	for i, class := range classes {
		data[i] = opts.BarData{Value: h[class]}
	}
	return data
}
