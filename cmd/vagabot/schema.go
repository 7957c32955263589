package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the config file JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(config.Schema(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
