// Package control abstracts command execution on lab nodes behind a single
// capability interface. Backends exist for local network namespaces, SSH
// reachable devices, and SONiC CONFIG_DB over redis; tests use scripted
// fakes. The verification core never cares which one it is talking to.
package control

import (
	"context"
	"fmt"
	"strings"
)

// NodeControl runs one shell command on a node and returns its combined
// output. Execution failures are transient from the caller's point of view:
// the poller retries them within its attempt budget.
type NodeControl interface {
	Execute(ctx context.Context, node, command string) (string, error)
}

// ExecError wraps a failed command execution with the output it produced.
type ExecError struct {
	Node    string
	Command string
	Output  string
	Err     error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("control: %s: %q failed: %v", e.Node, e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
