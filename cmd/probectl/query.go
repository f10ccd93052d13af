package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queryTimeoutMs string

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL-subset query against the agent's query engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := map[string]string{}
		if queryTimeoutMs != "" {
			opts["engine.timeout_ms"] = queryTimeoutMs
		}
		data, err := dial().Query(ctx, args[0], opts)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if data.Kind == "error" {
			fmt.Fprintln(os.Stderr, data.Err.Code+": "+data.Err.Message)
			os.Exit(1)
		}
		return enc.Encode(data)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryTimeoutMs, "timeout-ms", "", "override engine.timeout_ms for this query")
}
