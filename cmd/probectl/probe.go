package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/probing-go/probing/internal/wire"
)

var (
	probeDepth int
	probeTid   int64
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Issue a single probe call against the agent",
}

var backtraceCmd = &cobra.Command{
	Use:   "backtrace",
	Short: "Capture a backtrace",
	RunE: func(cmd *cobra.Command, args []string) error {
		call := wire.ProbeCall{Kind: wire.CallBacktrace}
		if cmd.Flags().Changed("depth") {
			call.Depth = &probeDepth
		}
		if cmd.Flags().Changed("tid") {
			call.Tid = &probeTid
		}
		return runProbe(call)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <code>",
	Short: "Evaluate a snippet in the probe's scripting runtime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(wire.ProbeCall{Kind: wire.CallEval, Code: args[0]})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <feature>",
	Short: "Enable a collector feature (sampler, remote_server, crash_catcher, stack_tracer)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(wire.ProbeCall{Kind: wire.CallEnable, Feature: args[0]})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <feature>",
	Short: "Disable a collector feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(wire.ProbeCall{Kind: wire.CallDisable, Feature: args[0]})
	},
}

func runProbe(call wire.ProbeCall) error {
	reply, err := dial().Probe(ctx, call)
	if err != nil {
		return err
	}
	if reply.Kind == wire.ReturnErr {
		fmt.Fprintln(os.Stderr, reply.Err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(reply)
}

var flamegraphCmd = &cobra.Command{
	Use:   "flamegraph",
	Short: "Render the shared probe's current flamegraph as SVG",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := dial().Probe(ctx, wire.ProbeCall{Kind: wire.CallFlamegraph})
		if err != nil {
			return err
		}
		if reply.Kind == wire.ReturnErr {
			fmt.Fprintln(os.Stderr, reply.Err)
			os.Exit(1)
		}
		fmt.Println(reply.SVG)
		return nil
	},
}

func init() {
	backtraceCmd.Flags().IntVar(&probeDepth, "depth", 0, "maximum backtrace depth")
	backtraceCmd.Flags().Int64Var(&probeTid, "tid", 0, "thread/goroutine ID, default the calling one")
	probeCmd.AddCommand(backtraceCmd, evalCmd, enableCmd, disableCmd)
}
