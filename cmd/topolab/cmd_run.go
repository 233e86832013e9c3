package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/topolab-net/topolab/pkg/control"
	"github.com/topolab-net/topolab/pkg/verify"
)

func newRunCmd() *cobra.Command {
	var (
		backend   string
		sshUser   string
		sshPass   string
		workers   int
		junitPath string
		noKernel  bool
	)

	cmd := &cobra.Command{
		Use:   "run <lab.yaml>",
		Short: "Provision a lab and verify routing convergence",
		Long: `Run builds the lab topology, provisions routing instances, starts the
verification passes, and reports per-check results.

Two passes run by default: the protocol route table ("ospf" fixtures)
and the kernel route table ("zebra" fixtures).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := verify.ParseLab(args[0])
			if err != nil {
				return err
			}

			ctl, cleanup, err := buildBackend(backend, sshUser, sshPass, lab)
			if err != nil {
				return err
			}
			defer cleanup()

			runner := verify.NewRunner(lab.Topology, lab.Instances, ctl)
			runner.FixturesDir = lab.FixturesDir
			runner.Poll = lab.Poll
			runner.Workers = workers
			if lab.ConfigsDir != "" {
				runner.Configs = &verify.DirConfigLoader{Dir: lab.ConfigsDir}
			}

			ctx := cmd.Context()
			for node, addr := range lab.ConfigDBs {
				db := control.NewConfigDB(node, addr)
				if err := db.Connect(ctx); err != nil {
					return err
				}
				defer db.Close()
				if runner.Appliers == nil {
					runner.Appliers = make(map[string]verify.PlanApplier)
				}
				runner.Appliers[node] = db
			}
			if err := runner.Build(); err != nil {
				return err
			}
			if err := runner.Provision(ctx); err != nil {
				return err
			}
			if err := runner.Start(ctx); err != nil {
				return err
			}

			passes := []verify.Pass{verify.OSPFRoutes()}
			if !noKernel {
				passes = append(passes, verify.KernelRoutes())
			}

			report := &verify.ReportGenerator{Lab: lab.Name}
			failed := false
			for _, pass := range passes {
				result, err := runPass(ctx, runner, pass)
				if err != nil {
					return err
				}
				report.Results = append(report.Results, result)
				if result.Failed() {
					failed = true
				}
			}

			if junitPath != "" {
				if err := report.WriteJUnit(junitPath); err != nil {
					return fmt.Errorf("writing JUnit report: %w", err)
				}
			}
			if err := runner.Teardown(ctx); err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("lab %s: convergence verification failed", lab.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "netns", "Execution backend: netns or ssh")
	cmd.Flags().StringVar(&sshUser, "ssh-user", "root", "SSH user for the ssh backend")
	cmd.Flags().StringVar(&sshPass, "ssh-pass", "", "SSH password for the ssh backend")
	cmd.Flags().IntVar(&workers, "workers", 1, "Verify up to N routers in parallel")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Write a JUnit XML report to this path")
	cmd.Flags().BoolVar(&noKernel, "no-kernel-pass", false, "Skip the kernel route verification pass")

	return cmd
}

// runPass runs one verification pass and prints per-check outcomes.
func runPass(ctx context.Context, runner *verify.Runner, pass verify.Pass) (*verify.PassResult, error) {
	fmt.Printf("==> Pass %s\n", pass.Name)
	start := time.Now()
	checks, err := runner.Verify(ctx, pass)
	if err != nil {
		return nil, err
	}

	for _, c := range checks {
		printCheck(c)
	}

	result := &verify.PassResult{Pass: pass.Name, Duration: time.Since(start), Checks: checks}
	passed, failedN, skipped, errs := result.Counts()
	fmt.Printf("    %d passed, %d failed, %d skipped, %d errors (%s)\n",
		passed, failedN, skipped, errs, result.Duration.Round(time.Millisecond))
	return result, nil
}

func buildBackend(backend, sshUser, sshPass string, lab *verify.Lab) (control.NodeControl, func(), error) {
	switch backend {
	case "netns":
		return control.NewNetns(), func() {}, nil
	case "ssh":
		if len(lab.SSHAddrs) == 0 {
			return nil, nil, fmt.Errorf("ssh backend requires ssh: addresses in the lab file")
		}
		ctl := control.NewSSH(sshUser, sshPass)
		for node, addr := range lab.SSHAddrs {
			ctl.AddNode(node, addr)
		}
		return ctl, func() { ctl.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", backend)
}
