package outwriter

import (
	"os"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"golang.org/x/term"
)

// GetMaxPathWidth calculates the maximum width for file paths in the text report
// based on terminal width.
func GetMaxPathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank prefix plus the "(1,234 changes: +1,000 -234)" suffix
	baseWidth := 40

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 100 {
		return 100
	}
	return available
}
