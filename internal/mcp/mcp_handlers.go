package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/metaconscious/CodeModificationAnalyzer/core"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
}

// analyzeResponse is the JSON payload returned by analyze_author.
type analyzeResponse struct {
	Result   *schema.AnalysisResult `json:"result"`
	TopFiles []schema.FileStat      `json:"top_files"`
	Warnings []string               `json:"warnings,omitempty"`
}

func (h *toolHandler) handleAnalyzeAuthor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	author, err := request.RequireString("author")
	if err != nil || strings.TrimSpace(author) == "" {
		return mcp.NewToolResultError("author is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Author = author
	if r := request.GetString("repo", ""); r != "" && r != h.baseCfg.Source {
		// Configured credentials belong to the configured repository only.
		cfg.Source = r
		cfg.Credentials = schema.Credentials{}
	}
	if b := request.GetString("branch", ""); b != "" {
		cfg.Branch = b
	}
	if f := request.GetString("files", ""); f != "" {
		cfg.Files = contract.SplitList(f)
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit)), nil
		}
		cfg.ResultLimit = l
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = contract.DefaultResultLimit
	}

	var warnings []string
	cfg.StartDate, warnings = parseDateArg(request.GetString("start_date", ""), cfg.StartDate, warnings)
	cfg.EndDate, warnings = parseDateArg(request.GetString("end_date", ""), cfg.EndDate, warnings)

	result, err := core.Analyze(ctx, cfg.Request(), h.client, core.Options{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(analyzeResponse{
		Result:   result,
		TopFiles: result.FileStats.Top(cfg.ResultLimit),
		Warnings: warnings,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseDateArg parses an optional date argument. A malformed date leaves the bound open and is reported as a warning.
func parseDateArg(s string, fallback *time.Time, warnings []string) (*time.Time, []string) {
	if s == "" {
		return fallback, warnings
	}
	t, err := contract.ParseDate(s)
	if err != nil {
		return nil, append(warnings, err.Error())
	}
	return t, warnings
}
