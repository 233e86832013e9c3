package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topolab-net/topolab/pkg/util"
	"github.com/topolab-net/topolab/pkg/version"
)

var verboseFlag bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "topolab",
		Short: "Routing convergence verification for virtual lab topologies",
		Long: `Topolab verifies that a multi-router lab running a link-state routing
protocol converges to pre-computed routing tables, per router and per
routing instance (VRF).

A lab is a YAML file describing nodes, switches, and instance bindings,
plus a fixture tree of expected command output.

  topolab topo lab.yaml              # show the parsed topology
  topolab plan lab.yaml              # show the VRF provisioning plan
  topolab run lab.yaml               # provision, verify, and report`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verboseFlag {
				util.SetLogLevel("debug")
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newTopoCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("topolab %s\n", version.Info())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
