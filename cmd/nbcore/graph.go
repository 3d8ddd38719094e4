package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/cellanalysis"
	"github.com/reactive-notebook/nbcore/internal/graph"
	"github.com/reactive-notebook/nbcore/internal/notebook"
)

type graphReport struct {
	Order      []api.CellId `json:"order,omitempty"`
	Errors     []string     `json:"errors,omitempty"`
	Violations []string     `json:"violations,omitempty"`
	CellCount  int          `json:"cell_count"`
}

var overrideNames []string
var outputFormat string

var graphCmd = &cobra.Command{
	Use:   "graph [notebook.py]",
	Short: "Build the dependency graph for a notebook and report order and errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		ctx := context.Background()
		ser, err := notebook.Parse(ctx, source)
		if err != nil {
			return err
		}

		co := graph.NewCoordinator()
		report := graphReport{}
		for _, v := range ser.Violations {
			report.Violations = append(report.Violations, v.String())
		}

		defs := ser.Cells
		if ser.Setup != nil {
			defs = append([]notebook.CellDef{*ser.Setup}, defs...)
		}

		for _, def := range defs {
			cfg := api.CellConfig{Disabled: def.Options.Disabled, HideCode: def.Options.HideCode}
			cell, violations, err := cellanalysis.Analyze(ctx, def.CellId, def.Code, cfg)
			if err != nil {
				return fmt.Errorf("analyze cell %s: %w", def.CellId, err)
			}
			for _, v := range violations {
				report.Violations = append(report.Violations, v.String())
			}
			if _, err := co.RegisterCell(def.CellId, cell); err != nil {
				return fmt.Errorf("register cell %s: %w", def.CellId, err)
			}
			report.CellCount++
		}

		for _, e := range graph.CheckForErrors(co) {
			report.Errors = append(report.Errors, e.Error())
		}

		if len(overrideNames) > 0 {
			overrides := map[api.Name]bool{}
			for _, n := range overrideNames {
				overrides[api.Name(strings.TrimSpace(n))] = true
			}
			order, err := graph.SortWithOverrides(co, overrides)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
			} else {
				report.Order = order
			}
		} else {
			report.Order = graph.TopologicalSort(co)
		}

		if outputFormat == "text" {
			for _, v := range report.Violations {
				fmt.Println("violation:", v)
			}
			for _, e := range report.Errors {
				fmt.Println("error:", e)
			}
			for _, cid := range report.Order {
				fmt.Println(cid)
			}
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	graphCmd.Flags().StringSliceVar(&overrideNames, "overrides", nil,
		"names supplied externally; cells defining them are pruned from the order (their consumers stay)")
	graphCmd.Flags().StringVar(&outputFormat, "format", "json", "output format: json or text")
	rootCmd.AddCommand(graphCmd)
}
