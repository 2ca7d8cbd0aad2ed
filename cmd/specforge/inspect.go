package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <spec-file>",
	Short: "Print the server config an OpenAPI spec maps to",
	Long: `Parse and map a spec without generating anything, printing the resulting
server config as JSON. Useful for previewing tool names, input schemas, and
required env vars before generating or serving.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
