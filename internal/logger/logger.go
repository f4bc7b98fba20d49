// Package logger configures structured diagnostics for codemod.
// User-facing messages go through contract.LogWarn; slog carries debug traces that only
// show up under --verbose.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Configure installs the default slog handler. Verbose enables debug records;
// otherwise only warnings and errors are emitted.
func Configure(verbose bool) {
	ConfigureWriter(os.Stderr, verbose)
}

// ConfigureWriter is like Configure but writes to w.
func ConfigureWriter(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// For returns a logger tagged with the given package name. It is resolved on every call
// so that it follows the handler installed by Configure.
func For(pkg string) *slog.Logger {
	return slog.Default().With("package", pkg)
}
