package history

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// maxRepoWidth bounds the repository column of the runs table.
const maxRepoWidth = 40

// PrintStatus writes history status information to w.
func PrintStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s (%s)\n", status.LastRunTime.Local().Format("2006-01-02 15:04:05"), humanize.Time(status.LastRunTime))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Local().Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Total Commits Counted: %s\n", humanize.Comma(int64(status.TotalCommits)))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// PrintRuns renders stored runs as a table.
func PrintRuns(w io.Writer, runs []schema.HistoryRecord) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No analysis runs recorded.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "When", "Repository", "Branch", "Author", "Commits", "Added", "Deleted", "Total"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			shortID(r.RunID),
			humanize.Time(r.StartTime),
			contract.TruncatePath(r.Repository, maxRepoWidth),
			r.Branch,
			r.AuthorPattern,
			strconv.Itoa(r.TotalCommits),
			"+" + humanize.Comma(int64(r.LinesAdded)),
			"-" + humanize.Comma(int64(r.LinesDeleted)),
			humanize.Comma(int64(r.TotalLinesModified)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
