package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactive-notebook/nbcore/internal/notebook"
)

var parseCmd = &cobra.Command{
	Use:   "parse [notebook.py]",
	Short: "Parse a notebook file into its header, app options, and cells",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		ser, err := notebook.Parse(context.Background(), source)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ser)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
