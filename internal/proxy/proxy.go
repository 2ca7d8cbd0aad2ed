// Package proxy serves a server IR directly as a live MCP server: one
// registered MCP tool per IR tool, each performing the HTTP call its
// handler describes. It is the in-process counterpart of the code
// generators and shares their handler semantics.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// NewServer builds an MCP server exposing every enabled tool in the config.
func NewServer(cfg ir.ServerConfig, exec *Executor, logger *zap.Logger) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &mcp.ServerOptions{
		Instructions: instructions(cfg),
	})

	server.AddReceivingMiddleware(loggingMiddleware(logger))

	for _, tool := range cfg.EnabledTools() {
		schema, err := toJSONSchema(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", tool.Name, err)
		}
		handler := tool.Handler

		mcp.AddTool(server, &mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			text, err := exec.Call(ctx, handler, args)
			if err != nil {
				return nil, nil, err
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{Text: text},
				},
			}, nil, nil
		})
	}

	return server, nil
}

// toJSONSchema converts the IR schema into the SDK's schema type by way of
// its JSON-Schema wire shape.
func toJSONSchema(s *ir.Schema) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}
	var js jsonschema.Schema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("failed to build JSON schema: %w", err)
	}
	return &js, nil
}

func instructions(cfg ir.ServerConfig) string {
	var sb strings.Builder
	sb.WriteString(cfg.Name)
	if cfg.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(cfg.Description)
	}
	sb.WriteString("\n\nEach tool proxies one HTTP operation of the upstream API")
	if cfg.BaseURL != "" {
		sb.WriteString(" at ")
		sb.WriteString(cfg.BaseURL)
	}
	sb.WriteString(".\n")

	if len(cfg.EnvVars) > 0 {
		sb.WriteString("\nRequired environment:\n")
		for _, ev := range cfg.EnvVars {
			if !ev.Required {
				continue
			}
			sb.WriteString("  - ")
			sb.WriteString(ev.Name)
			if ev.Description != "" {
				sb.WriteString(": ")
				sb.WriteString(ev.Description)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
