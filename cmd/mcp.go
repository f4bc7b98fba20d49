package cmd

import (
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/gitclient"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the codemod MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run author analyses through the
analyze_author tool. Flags and config provide the defaults (repository, branch,
engine, credentials); every tool call supplies its own author.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if err := loadInput(); err != nil {
			return err
		}
		// The author arrives with each tool call.
		if err := contract.ProcessBase(cfg, input); err != nil {
			return err
		}
		applyPresentation(cfg)
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := applyTokenSecret(rootCtx, cfg); err != nil {
			return err
		}
		client, err := gitclient.New(cfg.Engine)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, client, version)
	},
}
