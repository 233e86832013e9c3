package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigLoader loads the routing daemon configuration artifact for a node.
// The artifact format and the daemon itself are outside the core's scope.
type ConfigLoader interface {
	Load(node string) (string, error)
}

// DaemonControl starts and stops the routing daemons on a node. Implemented
// by the surrounding infrastructure, not specified here.
type DaemonControl interface {
	Start(ctx context.Context, node, config string) error
	Stop(ctx context.Context, node string) error
}

// LeakReporter asks the environment for resource-leak diagnostics at the
// end of a run.
type LeakReporter interface {
	Report(ctx context.Context) error
}

// DirConfigLoader reads one configuration file per node from
// <dir>/<node>/frr.conf.
type DirConfigLoader struct {
	Dir string
}

// Load returns the node's configuration text.
func (l *DirConfigLoader) Load(node string) (string, error) {
	path := filepath.Join(l.Dir, node, "frr.conf")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load config for %s: %w", node, err)
	}
	return string(data), nil
}
