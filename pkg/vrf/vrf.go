// Package vrf associates topology interfaces with named routing instances
// (VRFs) and their kernel forwarding tables. It records bindings as metadata
// and computes ordered command plans; it never touches the OS itself, which
// keeps the model portable across execution backends.
package vrf

import (
	"fmt"

	"github.com/topolab-net/topolab/pkg/topo"
	"github.com/topolab-net/topolab/pkg/util"
)

// DefaultName is the reserved name of the unnamed routing instance. Every
// interface not explicitly bound belongs to it.
const DefaultName = "default"

// Instance is a named routing instance backed by a kernel forwarding table.
type Instance struct {
	Name  string
	Table int
}

// Binding ties one node interface to a named instance.
type Binding struct {
	Node      string
	Interface string
	Instance  string
}

// Set holds the routing instances and interface bindings for one topology.
type Set struct {
	topo      *topo.Topology
	instances map[string]Instance
	order     []string
	bindings  []Binding
	byIface   map[string]string // "node:iface" -> instance name
}

// NewSet returns an empty instance set over the given topology.
func NewSet(t *topo.Topology) *Set {
	return &Set{
		topo:      t,
		instances: make(map[string]Instance),
		byIface:   make(map[string]string),
	}
}

// AddInstance registers a named instance. The default instance is implicit
// and cannot be registered; names and table IDs are unique.
func (s *Set) AddInstance(name string, table int) error {
	var v util.ValidationBuilder
	v.Add(name != "", "instance name is required")
	v.Add(name != DefaultName, fmt.Sprintf("instance name %q is reserved", DefaultName))
	v.Add(table > 0, fmt.Sprintf("instance %s: table must be positive, got %d", name, table))
	if _, ok := s.instances[name]; ok {
		v.AddErrorf("instance %s already defined", name)
	}
	for _, have := range s.instances {
		if have.Table == table {
			v.AddErrorf("table %d already used by instance %s", table, have.Name)
		}
	}
	if err := v.Build(); err != nil {
		return fmt.Errorf("vrf: %w", err)
	}
	s.instances[name] = Instance{Name: name, Table: table}
	s.order = append(s.order, name)
	return nil
}

// BindInterface binds a node interface to a named instance. The node and
// interface must already exist in the topology, the instance must be
// registered, and an interface binds at most once.
func (s *Set) BindInterface(node, ifname, instance string) error {
	n, err := s.topo.Node(node)
	if err != nil {
		return fmt.Errorf("vrf: bind %s: %w", ifname, err)
	}
	if !n.HasInterface(ifname) {
		return fmt.Errorf("vrf: bind %s on %s: interface %w", ifname, node, util.ErrNotFound)
	}
	if _, ok := s.instances[instance]; !ok {
		return fmt.Errorf("vrf: bind %s on %s: instance %s %w", ifname, node, instance, util.ErrNotFound)
	}
	key := node + ":" + ifname
	if prev, ok := s.byIface[key]; ok {
		return fmt.Errorf("vrf: interface %s on %s already bound to %s: %w",
			ifname, node, prev, util.ErrAlreadyExists)
	}
	s.byIface[key] = instance
	s.bindings = append(s.bindings, Binding{Node: node, Interface: ifname, Instance: instance})
	return nil
}

// InstanceFor returns the instance an interface is bound to, falling back
// to the default instance when unbound.
func (s *Set) InstanceFor(node, ifname string) string {
	if name, ok := s.byIface[node+":"+ifname]; ok {
		return name
	}
	return DefaultName
}

// Names returns the closed enumeration used for verification: the default
// instance first, then named instances in registration order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.order)+1)
	out = append(out, DefaultName)
	out = append(out, s.order...)
	return out
}

// Instance returns a registered named instance.
func (s *Set) Instance(name string) (Instance, bool) {
	in, ok := s.instances[name]
	return in, ok
}

// Bindings returns all bindings in bind order.
func (s *Set) Bindings() []Binding {
	return s.bindings
}
