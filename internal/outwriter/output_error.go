package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// unknownErrorKind labels failures that are not an *schema.AnalysisError.
const unknownErrorKind = "Error"

type errorBody struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

type errorDoc struct {
	Error errorBody `json:"error" yaml:"error"`
}

func newErrorDoc(err error) errorDoc {
	if ae, ok := schema.AsAnalysisError(err); ok {
		msg := ae.Message
		if msg == "" {
			msg = ae.Error()
		}
		return errorDoc{Error: errorBody{Kind: string(ae.Kind), Message: msg}}
	}
	return errorDoc{Error: errorBody{Kind: unknownErrorKind, Message: err.Error()}}
}

// PrintError renders a failed analysis. Structured formats get an {"error": {...}} document
// at the usual destination; every other format reports on stderr.
func PrintError(err error, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newErrorDoc(err))
		}, "Wrote JSON error")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newErrorDoc(err))
		}, "Wrote YAML error")
	default:
		return writeTextError(os.Stderr, err, cfg.UseColors)
	}
}

func writeTextError(w io.Writer, err error, useColors bool) error {
	doc := newErrorDoc(err)
	label := painter(contract.DeletedColor, useColors)("Error")
	_, werr := fmt.Fprintf(w, "\n%s: %s\n", label, doc.Error.Message)
	return werr
}
