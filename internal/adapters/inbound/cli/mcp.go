package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/rulegate/rulegate/internal/adapters/inbound/mcp"
	configAdapter "github.com/rulegate/rulegate/internal/adapters/outbound/config"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the RuleGate MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start RuleGate MCP server (stdio)",
		Long:  "Start the RuleGate MCP server using stdio transport. This lets AI assistants validate detection rules and query supported formats.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configAdapter.New().Load(".")
			if err != nil {
				return err
			}
			s := mcpadapter.NewRuleGateMCPServer(cfg)
			return server.ServeStdio(s)
		},
	}
}
