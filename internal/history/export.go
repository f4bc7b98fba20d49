package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/parquet"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// jsonExport is the document written when exporting to a .json file.
type jsonExport struct {
	Runs  []schema.HistoryRecord     `json:"runs"`
	Files []schema.HistoryFileRecord `json:"files"`
}

// Export writes every stored run and file row. A ".json" outputFile receives a single JSON
// document; anything else yields two Parquet files named after outputFile.
func Export(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis runs found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total file records: %d\n", status.TableSizes[runFilesTable])

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	files, err := store.ListRunFiles()
	if err != nil {
		return fmt.Errorf("failed to retrieve run files: %w", err)
	}

	if strings.EqualFold(filepath.Ext(outputFile), ".json") {
		return exportJSON(outputFile, jsonExport{Runs: runs, Files: files}, out)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertHistoryRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".run_files.parquet"
	if err := parquet.WriteFile(parquet.ConvertHistoryFileRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write run files: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d file records to: %s\n", len(files), filesFile)
	return nil
}

func exportJSON(outputFile string, doc jsonExport, out io.Writer) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Exported %d analysis runs and %d file records to: %s\n", len(doc.Runs), len(doc.Files), outputFile)
	return nil
}
