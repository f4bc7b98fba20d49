// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResult prints an analysis result using the configured output format.
func (ow *OutWriter) WriteResult(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return PrintResult(result, cfg, duration)
}

// WriteError prints a failed analysis using the configured output format.
func (ow *OutWriter) WriteError(err error, cfg *contract.Config) error {
	return PrintError(err, cfg)
}
