// Package fixture resolves (node, routing-instance) pairs to expected-output
// fixtures stored on disk. The layout is one directory per node holding
// <prefix>-vrf-<instance>.txt files, so the lookup key is derivable from the
// pair alone.
//
// The resolution policy is deliberately asymmetric: the default instance's
// fixture is mandatory and its absence is a load error, while a missing
// fixture for a named instance means the node does not participate in that
// instance and the check is skipped. This allows partial-topology tests
// without per-node boilerplate.
package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/topolab-net/topolab/pkg/vrf"
)

// ErrAbsent marks a named-instance fixture that is not present. Callers
// skip the corresponding check rather than failing it.
var ErrAbsent = errors.New("fixture: not present")

// LoadError reports a mandatory fixture that could not be read.
type LoadError struct {
	Node     string
	Instance string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("fixture: %s instance %s: missing %s: %v", e.Node, e.Instance, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store reads fixtures for one verification pass. Contents are cached for
// the lifetime of the Store, so one pass observes a stable snapshot. Safe
// for concurrent use when verification runs nodes in parallel.
type Store struct {
	Dir    string
	Prefix string // fixture family, e.g. "ospf" or "zebra"

	mu    sync.Mutex
	cache map[string]string
}

// NewStore returns a store over dir for the given fixture prefix.
func NewStore(dir, prefix string) *Store {
	return &Store{Dir: dir, Prefix: prefix, cache: make(map[string]string)}
}

// Path returns the fixture path for a (node, instance) pair.
func (s *Store) Path(node, instance string) string {
	return filepath.Join(s.Dir, node, fmt.Sprintf("%s-vrf-%s.txt", s.Prefix, instance))
}

// Exists reports whether a fixture is present without reading it.
func (s *Store) Exists(node, instance string) bool {
	s.mu.Lock()
	_, cached := s.cache[node+"/"+instance]
	s.mu.Unlock()
	if cached {
		return true
	}
	_, err := os.Stat(s.Path(node, instance))
	return err == nil
}

// Resolve returns the fixture text for the pair. A missing fixture yields
// ErrAbsent for a named instance and a LoadError for the default instance.
func (s *Store) Resolve(node, instance string) (string, error) {
	key := node + "/" + instance
	s.mu.Lock()
	text, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return text, nil
	}

	path := s.Path(node, instance)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && instance != vrf.DefaultName {
			return "", fmt.Errorf("%w: %s", ErrAbsent, path)
		}
		return "", &LoadError{Node: node, Instance: instance, Path: path, Err: err}
	}

	text = string(data)
	s.mu.Lock()
	s.cache[key] = text
	s.mu.Unlock()
	return text, nil
}
