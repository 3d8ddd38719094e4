// Command nbcore exposes the notebook dependency-graph engine as a CLI:
// parse a notebook file into its serialized cells, or build the full
// dependency graph and report topological order and structural errors.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
