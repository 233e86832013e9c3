package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topolab-net/topolab/pkg/verify"
)

func newTopoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topo <lab.yaml>",
		Short: "Show the parsed lab topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := verify.ParseLab(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("lab %s\n", lab.Name)
			for _, n := range lab.Topology.Nodes() {
				fmt.Printf("  %s (%s)\n", n.Name, n.Role)
				for _, ifname := range n.Interfaces {
					inst := lab.Instances.InstanceFor(n.Name, ifname)
					fmt.Printf("    %-12s sw=%s vrf=%s\n",
						ifname, lab.Topology.SwitchFor(n.Name, ifname), inst)
				}
			}
			for _, name := range lab.Instances.Names() {
				inst, _ := lab.Instances.Instance(name)
				if inst.Table == 0 {
					fmt.Printf("  instance %s\n", name)
					continue
				}
				fmt.Printf("  instance %s table %d\n", name, inst.Table)
			}
			return nil
		},
	}
}
