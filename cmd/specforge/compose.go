package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yousuf/specforge-mcp/internal/composer"
)

var composeCmd = &cobra.Command{
	Use:   "compose <manifest-file>",
	Short: "Compose several OpenAPI specs into one MCP server",
	Long: `Read a composition manifest (JSON or YAML) listing up to 20 APIs, merge
them into a single server config with per-API tool and env-var prefixes, and
optionally generate server source for it.`,
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
		configOnly, err := cmd.Flags().GetBool("config-only")
		if err != nil {
			return err
		}

		manifest, apis, err := composer.LoadManifest(args[0])
		if err != nil {
			return err
		}

		res, err := composer.Compose(apis, composer.Options{
			ServerName:        manifest.Name,
			ServerDescription: manifest.Description,
		})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}

		if err := writeConfig(res.Config, filepath.Join(outputDir, "server-config.json")); err != nil {
			return err
		}
		if configOnly {
			return nil
		}
		return emit(res.Config, target, outputDir)
	},
}

func init() {
	composeCmd.Flags().StringP("output", "o", "./composed", "Directory to write the server into")
	composeCmd.Flags().StringP("target", "t", "typescript", "Target language (typescript, python)")
	composeCmd.Flags().Bool("config-only", false, "Write only the composed server config, skip code generation")
	rootCmd.AddCommand(composeCmd)
}

func writeConfig(cfg any, path string) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("  %s\n", path)
	return nil
}
