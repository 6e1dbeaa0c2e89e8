package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rulegate/rulegate/internal/application"
	"github.com/rulegate/rulegate/internal/domain"
)

// registerTools registers all RuleGate MCP tools on the given server.
func registerTools(s *server.MCPServer, cfg domain.EngineConfig) {
	svc := application.NewDefaultValidationService(cfg, nil)

	// 1. rulegate_validate
	s.AddTool(
		mcplib.NewTool("rulegate_validate",
			mcplib.WithDescription("Validate a detection rule and return the scored result as JSON"),
			mcplib.WithString("content",
				mcplib.Required(),
				mcplib.Description("The detection rule content to validate"),
			),
			mcplib.WithString("format",
				mcplib.Required(),
				mcplib.Description("Rule format: splunk, qradar, sigma, kql, paloalto, crowdstrike, yara, or yaral"),
			),
		),
		handleValidate(svc),
	)

	// 2. rulegate_formats
	s.AddTool(
		mcplib.NewTool("rulegate_formats",
			mcplib.WithDescription("List the detection rule formats this server can validate"),
		),
		handleFormats(svc),
	)
}

func handleValidate(svc *application.ValidationService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		formatArg, err := request.RequireString("format")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		format, err := domain.ParseFormat(formatArg)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		det, err := domain.NewDetection(content, format)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		result, err := svc.Validate(ctx, det)
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleFormats(svc *application.ValidationService) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(svc.Formats())
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
