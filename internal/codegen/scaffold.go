package codegen

import (
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// baseURLEnvDefault is the global override variable emitted for single-API
// servers. Composed servers carry a per-API variable on each tool instead.
const baseURLEnvDefault = "API_BASE_URL"

// envExample renders the .env.example file from the config's env vars.
func envExample(cfg ir.ServerConfig) string {
	var sb strings.Builder
	sb.WriteString("# Environment for " + cfg.Name + "\n")
	sb.WriteString("# Copy to .env and fill in the values.\n\n")

	if cfg.BaseURL != "" {
		sb.WriteString("# Override the upstream API base URL (optional)\n")
		sb.WriteString(fmt.Sprintf("# %s=%s\n\n", baseURLEnvDefault, cfg.BaseURL))
	}

	for _, ev := range cfg.EnvVars {
		if ev.Description != "" {
			sb.WriteString("# " + ev.Description + "\n")
		}
		if !ev.Required {
			sb.WriteString("# (optional)\n")
		}
		example := ev.Example
		sb.WriteString(ev.Name + "=" + example + "\n\n")
	}
	return sb.String()
}

// readme renders the generated server's README: identity, tool listing,
// env vars, and target-specific run instructions.
func readme(cfg ir.ServerConfig, runSection string) string {
	var sb strings.Builder
	sb.WriteString("# " + cfg.Name + "\n\n")
	if cfg.Description != "" {
		sb.WriteString(cfg.Description + "\n\n")
	}
	sb.WriteString("Generated MCP server proxying an HTTP API. Version " + cfg.Version + ".\n\n")

	sb.WriteString("## Tools\n\n")
	sb.WriteString("| Tool | Method | Path | Description |\n")
	sb.WriteString("|------|--------|------|-------------|\n")
	for _, tool := range cfg.EnabledTools() {
		desc := strings.ReplaceAll(tool.Description, "|", "\\|")
		desc = strings.ReplaceAll(desc, "\n", " ")
		sb.WriteString(fmt.Sprintf("| `%s` | %s | `%s` | %s |\n",
			tool.Name, tool.Handler.Method, tool.Handler.Path, desc))
	}
	sb.WriteString("\n")

	if len(cfg.EnvVars) > 0 || cfg.BaseURL != "" {
		sb.WriteString("## Environment variables\n\n")
		if cfg.BaseURL != "" {
			sb.WriteString(fmt.Sprintf("- `%s` (optional): override the upstream base URL, defaults to `%s`\n", baseURLEnvDefault, cfg.BaseURL))
		}
		for _, ev := range cfg.EnvVars {
			requirement := "required"
			if !ev.Required {
				requirement = "optional"
			}
			sb.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", ev.Name, requirement, ev.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(runSection)
	return sb.String()
}

// escapeDoubleQuoted escapes s for inclusion in a double-quoted string
// literal in JS/TS/Python source.
func escapeDoubleQuoted(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// claimedInputKeys returns the input property names consumed by the URL,
// query string, and headers; the remainder forms the reconstructed body for
// BodyObjectSentinel handlers.
func claimedInputKeys(h ir.Handler) []string {
	keys := make([]string, 0, len(h.PathParams)+len(h.QueryParams)+len(h.HeaderParams))
	keys = append(keys, h.PathParams...)
	keys = append(keys, h.QueryParams...)
	for _, name := range h.HeaderParams {
		keys = append(keys, "header_"+name)
	}
	return keys
}
