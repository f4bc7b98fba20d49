package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// writeCSVResult writes every file ranked by total change.
func writeCSVResult(w io.Writer, r *schema.AnalysisResult) error {
	header := []string{"rank", "path", "insertions", "deletions", "total"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range r.FileStats.Top(0) {
			row := []string{
				strconv.Itoa(i + 1),
				f.Path,
				strconv.Itoa(f.Insertions),
				strconv.Itoa(f.Deletions),
				strconv.Itoa(f.Total()),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// chartLabelWidth bounds x-axis labels of the HTML chart.
const chartLabelWidth = 40

// writeHTMLResult renders a stacked bar chart of the top files.
func writeHTMLResult(w io.Writer, r *schema.AnalysisResult, limit int) error {
	top := r.FileStats.Top(limit)

	labels := make([]string, len(top))
	ins := make([]opts.BarData, len(top))
	del := make([]opts.BarData, len(top))
	for i, f := range top {
		labels[i] = contract.TruncatePath(f.Path, chartLabelWidth)
		ins[i] = opts.BarData{Name: f.Path, Value: f.Insertions}
		del[i] = opts.BarData{Name: f.Path, Value: f.Deletions}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "codemod: " + r.Author,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Most modified files by %s", r.Author),
			Subtitle: fmt.Sprintf("%s @ %s: %d commits, +%d -%d", r.Repository, r.Branch, r.TotalCommits, r.LinesAdded, r.LinesDeleted),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Added", ins, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2e7d32"})).
		AddSeries("Deleted", del, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#c62828"}))
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "changes"}))

	return bar.Render(w)
}
