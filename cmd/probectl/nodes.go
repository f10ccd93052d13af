package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List nodes known to the agent's cluster registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := dial().Nodes(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(nodes) == 0 {
			fmt.Fprintln(os.Stderr, "no nodes registered")
			return nil
		}
		return enc.Encode(nodes)
	},
}
