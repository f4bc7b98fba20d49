// Package main is the entry point for the codemod CLI.
package main

import (
	"errors"
	"os"

	"github.com/metaconscious/CodeModificationAnalyzer/cmd"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// A failed analysis has already been rendered.
		if errors.Is(err, cmd.ErrAnalysisFailed) {
			os.Exit(1)
		}
		contract.LogFatal("Error", err)
	}
}
