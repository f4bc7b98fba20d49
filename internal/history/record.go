package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// Record stores a finished analysis under a fresh run ID and returns that ID.
func Record(store contract.HistoryStore, req schema.AnalysisRequest, res *schema.AnalysisResult, start, end time.Time) (string, error) {
	runID := uuid.NewString()
	rec := schema.NewHistoryRecord(runID, req, res, start, end)
	if err := store.RecordRun(rec, schema.NewHistoryFileRecords(runID, res)); err != nil {
		return "", err
	}
	return runID, nil
}
