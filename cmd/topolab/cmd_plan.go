package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topolab-net/topolab/pkg/verify"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <lab.yaml>",
		Short: "Show the routing-instance provisioning plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := verify.ParseLab(args[0])
			if err != nil {
				return err
			}

			for _, n := range lab.Topology.Routers() {
				plan := lab.Instances.Plan(n.Name)
				if len(plan) == 0 {
					continue
				}
				fmt.Printf("%s:\n", n.Name)
				for _, c := range plan {
					fmt.Printf("  %s\n", c.Shell())
				}
			}
			return nil
		},
	}
}
