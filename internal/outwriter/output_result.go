package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/parquet"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintResult outputs the analysis result as a text report or exports it in the configured format.
func PrintResult(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.YAMLOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, result)
		}, "Wrote YAML")
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResult(w, result)
		}, "Wrote CSV")
	case schema.HTMLOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTMLResult(w, result, cfg.ResultLimit)
		}, "Wrote HTML")
	case schema.ParquetOut:
		err = writeParquetResult(result, cfg.OutputFile)
	default:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTextResult(w, result, cfg, duration)
		}, "Wrote report")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

// writeParquetResult exports one row per file. Parquet always needs a file.
func writeParquetResult(result *schema.AnalysisResult, outputFile string) error {
	rows := parquet.ConvertResult(result)
	if err := parquet.WriteFile(rows, outputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %d file rows to %s\n", len(rows), outputFile)
	return nil
}

// writeTextResult renders the human-readable report.
func writeTextResult(w io.Writer, r *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	heading := painter(contract.HeaderColor, cfg.UseColors)
	added := painter(contract.AddedColor, cfg.UseColors)
	deleted := painter(contract.DeletedColor, cfg.UseColors)

	_, _ = fmt.Fprintln(w, heading("=== Analysis Results ==="))
	_, _ = fmt.Fprintf(w, "Author: %s\n", r.Author)
	_, _ = fmt.Fprintf(w, "Repository: %s\n", r.Repository)
	if r.BranchFallback {
		_, _ = fmt.Fprintf(w, "Branch: %s (requested '%s' not found)\n", r.Branch, r.RequestedBranch)
	} else {
		_, _ = fmt.Fprintf(w, "Branch: %s\n", r.Branch)
	}
	_, _ = fmt.Fprintf(w, "Total commits: %s\n", humanize.Comma(int64(r.TotalCommits)))
	if r.HasDates() {
		_, _ = fmt.Fprintf(w, "First commit: %s\n", *r.FirstCommitDate)
		_, _ = fmt.Fprintf(w, "Last commit: %s\n", *r.LastCommitDate)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, heading("Code Changes:"))
	_, _ = fmt.Fprintf(w, "  Lines added:   %s\n", added(humanize.Comma(int64(r.LinesAdded))))
	_, _ = fmt.Fprintf(w, "  Lines deleted: %s\n", deleted(humanize.Comma(int64(r.LinesDeleted))))
	_, _ = fmt.Fprintf(w, "  Total changes: %s\n", humanize.Comma(int64(r.TotalLinesModified)))

	if r.FileStats.Len() > 0 {
		top := r.FileStats.Top(cfg.ResultLimit)
		maxWidth := GetMaxPathWidth(cfg)
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, heading(fmt.Sprintf("Top %d Most Modified Files:", cfg.ResultLimit)))
		for i, f := range top {
			_, _ = fmt.Fprintf(w, "%2d. %s (%s changes: %s %s)\n",
				i+1,
				contract.TruncatePath(f.Path, maxWidth),
				humanize.Comma(int64(f.Total())),
				added("+"+humanize.Comma(int64(f.Insertions))),
				deleted("-"+humanize.Comma(int64(f.Deletions))),
			)
		}
	}

	if len(r.Languages) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, heading("Languages:"))
		if err := writeLanguageTable(w, r.Languages); err != nil {
			return err
		}
	}

	if duration > 0 {
		_, _ = fmt.Fprintf(w, "\nAnalysis completed in %v.\n", duration.Round(time.Millisecond))
	}
	return nil
}

// writeLanguageTable renders the per-language breakdown.
func writeLanguageTable(w io.Writer, languages []schema.LanguageStat) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Language", "Files", "Added", "Deleted", "Total"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, l := range languages {
		data = append(data, []string{
			l.Language,
			strconv.Itoa(l.Files),
			humanize.Comma(int64(l.Insertions)),
			humanize.Comma(int64(l.Deletions)),
			humanize.Comma(int64(l.Total())),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// painter returns a formatter that colors its input when colors are enabled.
func painter(c *color.Color, enabled bool) func(string) string {
	if !enabled {
		return func(s string) string { return s }
	}
	return func(s string) string { return c.Sprint(s) }
}
