package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yousuf/specforge-mcp/internal/codegen"
	"github.com/yousuf/specforge-mcp/internal/ir"
)

var generateCmd = &cobra.Command{
	Use:   "generate <spec-file>",
	Short: "Generate MCP server source from an OpenAPI spec",
	Long: `Parse an OpenAPI 3.x document (JSON or YAML), map every operation to an
MCP tool, and emit a complete runnable server in the chosen target language.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		target, err := cmd.Flags().GetString("target")
		if err != nil {
			return err
		}

		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		return emit(cfg, target, outputDir)
	},
}

func init() {
	generateCmd.Flags().StringP("output", "o", "./generated", "Directory to write the server into")
	generateCmd.Flags().StringP("target", "t", "typescript", "Target language (typescript, python)")
	rootCmd.AddCommand(generateCmd)
}

// emit renders the config with the target generator and writes the file map
// to disk, creating directories as needed.
func emit(cfg ir.ServerConfig, target, outputDir string) error {
	gen, err := codegen.ForTarget(target)
	if err != nil {
		return err
	}

	files, err := gen.Generate(cfg)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		full := filepath.Join(outputDir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(files[path]), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", full, err)
		}
		fmt.Printf("  %s\n", full)
	}

	fmt.Printf("\nGenerated %s server %q with %d tool(s) in %s\n",
		gen.Target(), cfg.Name, len(cfg.EnabledTools()), outputDir)
	return nil
}
