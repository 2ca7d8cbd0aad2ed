// Package codegen turns a server IR into complete, runnable MCP server
// source trees. Each generator is a pure function from config to a map of
// relative file path to file content: no randomness, no clock reads, so
// generating the same config twice yields byte-identical output.
package codegen

import (
	"fmt"

	"github.com/yousuf/specforge-mcp/internal/ir"
)

// Generator produces one target language's output tree.
type Generator interface {
	// Target is the identifier used to select this generator ("typescript",
	// "python").
	Target() string
	// Generate renders the full output tree for the config. Only enabled
	// tools are emitted; disabled tools are omitted entirely.
	Generate(cfg ir.ServerConfig) (map[string]string, error)
}

// Targets lists the available generator identifiers.
func Targets() []string {
	return []string{"typescript", "python"}
}

// ForTarget returns the generator for the given identifier.
func ForTarget(target string) (Generator, error) {
	switch target {
	case "typescript", "ts":
		return NewTypeScriptGenerator(), nil
	case "python", "py":
		return NewPythonGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown target %q (available: typescript, python)", target)
	}
}
