package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/rulegate/rulegate/internal/domain"
)

// NewRuleGateMCPServer creates an MCP server with the RuleGate validation
// tools registered.
func NewRuleGateMCPServer(cfg domain.EngineConfig) *server.MCPServer {
	s := server.NewMCPServer(
		"rulegate",
		domain.EngineVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, cfg)

	return s
}
