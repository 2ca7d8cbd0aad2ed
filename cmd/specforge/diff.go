package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yousuf/specforge-mcp/internal/differ"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-spec> <new-spec>",
	Short: "Compare two versions of an OpenAPI spec at the tool level",
	Long: `Map both spec versions to their tool surface and report what changed:
added, removed, and modified tools plus env-var churn, each classified as
breaking, warning, or informational. Exits 1 when breaking changes exist.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		oldRaw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read old spec: %w", err)
		}
		newRaw, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read new spec: %w", err)
		}

		d, err := differ.CompareSpecs(string(oldRaw), string(newRaw))
		if err != nil {
			return err
		}

		if asJSON {
			raw, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
		} else {
			fmt.Print(differ.FormatText(d))
		}

		if !d.IsBackwardsCompatible {
			// Non-zero exit so CI gates can fail on breaking changes.
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().Bool("json", false, "Emit the diff as JSON instead of text")
	rootCmd.AddCommand(diffCmd)
}
