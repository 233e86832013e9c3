// Package verify sequences a lab run: build the topology, provision routing
// instances, load configs, start daemons, and drive the router x instance
// convergence matrix against expected-output fixtures.
package verify

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/topolab-net/topolab/pkg/control"
	"github.com/topolab-net/topolab/pkg/fixture"
	"github.com/topolab-net/topolab/pkg/poll"
	"github.com/topolab-net/topolab/pkg/topo"
	"github.com/topolab-net/topolab/pkg/util"
	"github.com/topolab-net/topolab/pkg/vrf"
)

// CheckStatus is the outcome of a single (node, instance) check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "PASS"
	CheckFailed  CheckStatus = "FAIL"
	CheckSkipped CheckStatus = "SKIP"
	CheckError   CheckStatus = "ERROR"
)

// CheckResult records one matrix entry.
type CheckResult struct {
	Node     string
	Instance string
	Status   CheckStatus
	Attempts int
	Message  string
	Diff     string
}

// Err returns the check's outcome as an error: a ConvergenceTimeout for a
// failed check, a generic error for a fixture load error, nil otherwise.
func (c CheckResult) Err() error {
	switch c.Status {
	case CheckFailed:
		return &ConvergenceTimeout{Node: c.Node, Instance: c.Instance, Attempts: c.Attempts, Diff: c.Diff}
	case CheckError:
		return fmt.Errorf("verify: %s: %s", c.Node, c.Message)
	}
	return nil
}

// ConvergenceTimeout reports a check whose poll budget ran out without a
// match. Sibling checks continue; the caller decides how to surface it.
type ConvergenceTimeout struct {
	Node     string
	Instance string
	Attempts int
	Diff     string
}

func (e *ConvergenceTimeout) Error() string {
	return fmt.Sprintf("verify: %s instance %s did not converge after %d attempts:\n%s",
		e.Node, e.Instance, e.Attempts, e.Diff)
}

// Pass names one verification family: which fixture prefix to read and how
// to probe a router for the corresponding live state.
type Pass struct {
	Name  string
	Probe func(instance string) string
}

// OSPFRoutes verifies the OSPF view of each routing instance.
func OSPFRoutes() Pass {
	return Pass{
		Name: "ospf",
		Probe: func(instance string) string {
			return fmt.Sprintf("vtysh -c 'show ip ospf vrf %s route'", instance)
		},
	}
}

// KernelRoutes verifies the routes zebra installed into each forwarding
// table.
func KernelRoutes() Pass {
	return Pass{
		Name: "zebra",
		Probe: func(instance string) string {
			return fmt.Sprintf("vtysh -c 'show ip route vrf %s'", instance)
		},
	}
}

// PlanApplier provisions a node's routing-instance plan natively instead of
// running its shell rendering, for devices configured through a management
// database rather than iproute2.
type PlanApplier interface {
	ApplyPlan(ctx context.Context, plan []vrf.Command) error
}

// Runner owns one lab run. It is single-writer: all mutation happens from
// the goroutine driving the run, except the failure flags, which verification
// workers update under the mutex.
type Runner struct {
	Topology  *topo.Topology
	Instances *vrf.Set
	Control   control.NodeControl

	FixturesDir string
	Configs     ConfigLoader           // optional
	Daemons     DaemonControl          // optional
	Leaks       LeakReporter           // optional
	Appliers    map[string]PlanApplier // optional, per-node native provisioning

	Poll    poll.Options
	Workers int // parallel node verification; <=1 means sequential

	lifecycle Lifecycle

	mu       sync.Mutex
	failures map[string]string // node -> first failure reason
}

// NewRunner returns a runner over the given topology, instance set, and
// execution backend.
func NewRunner(t *topo.Topology, set *vrf.Set, ctl control.NodeControl) *Runner {
	return &Runner{
		Topology:  t,
		Instances: set,
		Control:   ctl,
		failures:  make(map[string]string),
	}
}

// Phase returns the runner's lifecycle phase.
func (r *Runner) Phase() Phase {
	return r.lifecycle.Phase()
}

// Build validates the topology and marks the run built.
func (r *Runner) Build() error {
	if err := r.lifecycle.require(PhaseUnbuilt); err != nil {
		return err
	}
	if len(r.Topology.Routers()) == 0 {
		return util.NewSetupError("build", r.Topology.Name, fmt.Errorf("topology has no routers"))
	}
	util.Infof("Built topology %s: %d nodes, %d switches",
		r.Topology.Name, len(r.Topology.Nodes()), len(r.Topology.Switches()))
	return r.lifecycle.advance(PhaseUnbuilt, PhaseBuilt)
}

// Provision executes each router's routing-instance plan through the
// execution backend. Provisioning failures are fatal.
func (r *Runner) Provision(ctx context.Context) error {
	if err := r.lifecycle.require(PhaseBuilt); err != nil {
		return err
	}
	for _, n := range r.Topology.Routers() {
		plan := r.Instances.Plan(n.Name)
		if applier, ok := r.Appliers[n.Name]; ok {
			if err := applier.ApplyPlan(ctx, plan); err != nil {
				return util.NewSetupError("provision", n.Name, err)
			}
			continue
		}
		for _, cmd := range plan {
			if _, err := r.Control.Execute(ctx, n.Name, cmd.Shell()); err != nil {
				return util.NewSetupError("provision", n.Name, err)
			}
		}
	}
	return nil
}

// Start loads each node's daemon configuration and starts its daemons, then
// marks the run started. Both collaborators are optional; with neither set,
// Start only advances the lifecycle (the environment is assumed prepared).
func (r *Runner) Start(ctx context.Context) error {
	if err := r.lifecycle.require(PhaseBuilt); err != nil {
		return err
	}
	for _, n := range r.Topology.Nodes() {
		var config string
		if r.Configs != nil {
			var err error
			config, err = r.Configs.Load(n.Name)
			if err != nil {
				return util.NewSetupError("load-config", n.Name, err)
			}
		}
		if r.Daemons != nil {
			util.WithNode(n.Name).Infof("Starting routing daemons")
			if err := r.Daemons.Start(ctx, n.Name, config); err != nil {
				return util.NewSetupError("start", n.Name, err)
			}
		}
	}
	return r.lifecycle.advance(PhaseBuilt, PhaseStarted)
}

// Verify runs one pass of the router x instance matrix: every router in
// topology order against the default instance plus each named instance.
// Combinations without a fixture are skipped, routers already flagged as
// failed are short-circuited, and everything else is polled until it
// matches or the budget runs out. Verify itself only errors on lifecycle
// misuse; per-check outcomes are in the results.
func (r *Runner) Verify(ctx context.Context, pass Pass) ([]CheckResult, error) {
	if err := r.lifecycle.require(PhaseStarted); err != nil {
		return nil, err
	}
	store := fixture.NewStore(r.FixturesDir, pass.Name)

	routers := r.Topology.Routers()
	perNode := make([][]CheckResult, len(routers))

	if r.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.Workers)
		for i, n := range routers {
			g.Go(func() error {
				perNode[i] = r.verifyNode(gctx, pass, store, n.Name)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, n := range routers {
			perNode[i] = r.verifyNode(ctx, pass, store, n.Name)
		}
	}

	var results []CheckResult
	for _, nodeResults := range perNode {
		results = append(results, nodeResults...)
	}
	return results, nil
}

// verifyNode runs the full instance sequence for one router, strictly in
// order.
func (r *Runner) verifyNode(ctx context.Context, pass Pass, store *fixture.Store, node string) []CheckResult {
	if reason, failed := r.failure(node); failed {
		util.WithNode(node).Warnf("Skipping checks, node already failed: %s", reason)
		return []CheckResult{{
			Node:    node,
			Status:  CheckSkipped,
			Message: fmt.Sprintf("prior failure: %s", reason),
		}}
	}

	var results []CheckResult
	for _, instance := range r.Instances.Names() {
		res := r.check(ctx, pass, store, node, instance)
		results = append(results, res)
		if res.Status == CheckError {
			// Mandatory fixture missing is fatal for this node.
			break
		}
	}
	return results
}

// check verifies a single (node, instance) combination.
func (r *Runner) check(ctx context.Context, pass Pass, store *fixture.Store, node, instance string) CheckResult {
	log := util.WithCheck(node, instance)

	expected, err := store.Resolve(node, instance)
	if err != nil {
		if instance != vrf.DefaultName {
			log.Debugf("No %s fixture, skipping", pass.Name)
			return CheckResult{Node: node, Instance: instance, Status: CheckSkipped, Message: "no fixture"}
		}
		r.flagFailure(node, err.Error())
		return CheckResult{Node: node, Instance: instance, Status: CheckError, Message: err.Error()}
	}

	command := pass.Probe(instance)
	log.Infof("Waiting for convergence")
	res := poll.UntilMatch(ctx, func(ctx context.Context) (string, error) {
		return r.Control.Execute(ctx, node, command)
	}, expected, r.Poll)

	if res.OK {
		log.Infof("Converged after %d attempt(s)", res.Attempts)
		return CheckResult{Node: node, Instance: instance, Status: CheckPassed, Attempts: res.Attempts}
	}

	r.flagFailure(node, fmt.Sprintf("%s pass: instance %s did not converge", pass.Name, instance))
	log.Errorf("Did not converge after %d attempts:\n%s", res.Attempts, res.Diff)
	return CheckResult{
		Node:     node,
		Instance: instance,
		Status:   CheckFailed,
		Attempts: res.Attempts,
		Message:  fmt.Sprintf("did not converge after %d attempts", res.Attempts),
		Diff:     res.Diff,
	}
}

// ReportLeaks delegates leak diagnostics to the environment. It is a no-op
// without a reporter.
func (r *Runner) ReportLeaks(ctx context.Context) error {
	if r.Leaks == nil {
		return nil
	}
	return r.Leaks.Report(ctx)
}

// Teardown stops daemons if a daemon controller is set and marks the run
// torn down. Valid from Built or Started.
func (r *Runner) Teardown(ctx context.Context) error {
	switch r.lifecycle.Phase() {
	case PhaseBuilt, PhaseStarted:
	default:
		return fmt.Errorf("verify: teardown from phase %s", r.lifecycle.Phase())
	}
	if r.Daemons != nil {
		for _, n := range r.Topology.Nodes() {
			if err := r.Daemons.Stop(ctx, n.Name); err != nil {
				util.WithNode(n.Name).Warnf("Stop failed: %v", err)
			}
		}
	}
	r.lifecycle.phase = PhaseTornDown
	return nil
}

// HasFailures reports whether any node has been flagged as failed.
func (r *Runner) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) > 0
}

func (r *Runner) failure(node string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.failures[node]
	return reason, ok
}

// flagFailure records the first failure reason for a node.
func (r *Runner) flagFailure(node, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.failures[node]; !ok {
		r.failures[node] = reason
	}
}
