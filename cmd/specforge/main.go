// Command specforge turns OpenAPI 3.x descriptions into MCP servers: it
// generates runnable server source (TypeScript or Python), composes several
// APIs into one server, diffs spec versions, and can serve a spec directly
// as a live MCP proxy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/mapper"
	"github.com/yousuf/specforge-mcp/internal/openapi"
)

var rootCmd = &cobra.Command{
	Use:           "specforge",
	Short:         "Turn OpenAPI specs into MCP servers",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads a spec file, parses it, and maps it to the IR. Parser
// warnings go to stderr; structural errors abort.
func loadConfig(specPath string) (ir.ServerConfig, error) {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return ir.ServerConfig{}, fmt.Errorf("failed to read spec: %w", err)
	}

	res := openapi.Parse(string(raw))
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !res.Success() {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Error())
		}
		return ir.ServerConfig{}, fmt.Errorf("%s is not a usable OpenAPI 3.x document", specPath)
	}
	return mapper.Map(res.Spec), nil
}
