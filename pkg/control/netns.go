package control

import (
	"context"
	"os/exec"

	"github.com/topolab-net/topolab/pkg/util"
)

// Netns executes commands inside local network namespaces, one namespace
// per node, named after the node. This is the natural backend when the lab
// runs on a single Linux machine.
type Netns struct{}

// NewNetns returns a namespace-backed NodeControl.
func NewNetns() *Netns {
	return &Netns{}
}

// Execute runs the command inside the node's namespace and returns combined
// stdout and stderr.
func (n *Netns) Execute(ctx context.Context, node, command string) (string, error) {
	util.WithNode(node).Debugf("netns exec: %s", command)

	cmd := exec.CommandContext(ctx, "ip", "netns", "exec", node, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), &ExecError{Node: node, Command: command, Output: string(out), Err: err}
	}
	return string(out), nil
}
