package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// errNoInput is returned when the prompt stream ends before a required answer.
var errNoInput = errors.New("input closed before an author was given")

// promptConfig asks for the analysis parameters on in and writes prompts to out.
// Answers replace the corresponding fields of c; blank answers keep the defaults.
func promptConfig(in io.Reader, out io.Writer, c *contract.Config) error {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		_, _ = fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	_, _ = fmt.Fprintln(out, "=== Git Repository Code Modification Analyzer ===")

	repo, _ := ask("Enter path or URL of the Git repository (or '.' for current directory): ")
	if repo == "" {
		repo = contract.DefaultSource
	}
	if !remote.IsRemote(repo) {
		if _, err := os.Stat(repo); err != nil {
			return fmt.Errorf("path %s does not exist", repo)
		}
	}
	c.Source = repo

	branch, _ := ask(fmt.Sprintf("Enter branch name (default: %s): ", schema.DefaultBranch))
	if branch == "" {
		branch = schema.DefaultBranch
	}
	c.Branch = branch

	for {
		author, ok := ask("Enter author name (can use regex patterns): ")
		if !ok {
			return errNoInput
		}
		if author != "" {
			c.Author = author
			break
		}
		_, _ = fmt.Fprintln(out, "Author name is required.")
	}

	c.StartDate, c.EndDate = nil, nil
	if dateRange, _ := ask("Enter date range (YYYY-MM-DD to YYYY-MM-DD) or press Enter to skip: "); dateRange != "" {
		parts := strings.Split(dateRange, " to ")
		if len(parts) != 2 {
			contract.LogWarn("Invalid date range format", errors.New("using no date filter"))
		} else {
			c.StartDate = contract.ParseDateOrWarn("start", parts[0])
			c.EndDate = contract.ParseDateOrWarn("end", parts[1])
		}
	}

	files, _ := ask("Enter specific file paths to analyze (comma-separated) or press Enter for all: ")
	c.Files = contract.SplitList(files)

	_, _ = fmt.Fprintln(out, "\nAnalyzing repository...")
	return nil
}
