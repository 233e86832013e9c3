// Package topo implements the in-memory lab topology model: nodes, shared
// broadcast segments (switches), and the links that attach node interfaces
// to them. The model is build-time only; it performs no OS-level work.
package topo

import (
	"fmt"

	"github.com/topolab-net/topolab/pkg/util"
)

// Role classifies a node.
type Role string

const (
	RoleRouter Role = "router"
	RoleHost   Role = "host"
)

// Node is a single lab device. Interfaces are allocated in connect order
// and named <node>-eth<N>, matching what the kernel side will see.
type Node struct {
	Name       string
	Role       Role
	Interfaces []string
}

// Port is one attachment point on a switch.
type Port struct {
	Node      string
	Interface string
}

// Switch models a shared broadcast segment.
type Switch struct {
	Name  string
	Ports []Port
}

// DuplicateBindingError reports an interface that is already attached
// to a switch.
type DuplicateBindingError struct {
	Node      string
	Interface string
	Switch    string // the switch the interface is already attached to
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("topo: interface %s on %s already attached to switch %s",
		e.Interface, e.Node, e.Switch)
}

func (e *DuplicateBindingError) Unwrap() error {
	return util.ErrAlreadyExists
}

// Topology owns all nodes, switches and links for one lab. It is built once
// and treated as immutable for the rest of the test's lifetime.
type Topology struct {
	Name string

	nodes     map[string]*Node
	nodeOrder []string
	switches  map[string]*Switch
	swOrder   []string
	attached  map[string]string // "node:iface" -> switch name
}

// New returns an empty topology.
func New(name string) *Topology {
	return &Topology{
		Name:     name,
		nodes:    make(map[string]*Node),
		switches: make(map[string]*Switch),
		attached: make(map[string]string),
	}
}

// AddNode creates a node with the given role. Node names are unique.
func (t *Topology) AddNode(name string, role Role) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("topo: node name is required")
	}
	if role != RoleRouter && role != RoleHost {
		return nil, fmt.Errorf("topo: node %s: unknown role %q", name, role)
	}
	if _, ok := t.nodes[name]; ok {
		return nil, fmt.Errorf("topo: node %s: %w", name, util.ErrAlreadyExists)
	}
	n := &Node{Name: name, Role: role}
	t.nodes[name] = n
	t.nodeOrder = append(t.nodeOrder, name)
	return n, nil
}

// AddRouter is shorthand for AddNode(name, RoleRouter).
func (t *Topology) AddRouter(name string) (*Node, error) {
	return t.AddNode(name, RoleRouter)
}

// AddHost is shorthand for AddNode(name, RoleHost).
func (t *Topology) AddHost(name string) (*Node, error) {
	return t.AddNode(name, RoleHost)
}

// AddSwitch creates a broadcast segment. Switch names are unique.
func (t *Topology) AddSwitch(name string) (*Switch, error) {
	if name == "" {
		return nil, fmt.Errorf("topo: switch name is required")
	}
	if _, ok := t.switches[name]; ok {
		return nil, fmt.Errorf("topo: switch %s: %w", name, util.ErrAlreadyExists)
	}
	sw := &Switch{Name: name}
	t.switches[name] = sw
	t.swOrder = append(t.swOrder, name)
	return sw, nil
}

// Connect attaches the node's next free interface to the switch and returns
// the allocated interface name (<node>-eth<N>, N counting from 0).
func (t *Topology) Connect(swName, nodeName string) (string, error) {
	n, ok := t.nodes[nodeName]
	if !ok {
		return "", fmt.Errorf("topo: node %s: %w", nodeName, util.ErrNotFound)
	}
	ifname := fmt.Sprintf("%s-eth%d", nodeName, len(n.Interfaces))
	if err := t.ConnectInterface(swName, nodeName, ifname); err != nil {
		return "", err
	}
	return ifname, nil
}

// ConnectInterface attaches a named interface to the switch. An interface
// belongs to at most one switch; reattaching fails with
// DuplicateBindingError.
func (t *Topology) ConnectInterface(swName, nodeName, ifname string) error {
	sw, ok := t.switches[swName]
	if !ok {
		return fmt.Errorf("topo: switch %s: %w", swName, util.ErrNotFound)
	}
	n, ok := t.nodes[nodeName]
	if !ok {
		return fmt.Errorf("topo: node %s: %w", nodeName, util.ErrNotFound)
	}
	key := nodeName + ":" + ifname
	if prev, ok := t.attached[key]; ok {
		return &DuplicateBindingError{Node: nodeName, Interface: ifname, Switch: prev}
	}
	t.attached[key] = swName
	sw.Ports = append(sw.Ports, Port{Node: nodeName, Interface: ifname})
	if !n.HasInterface(ifname) {
		n.Interfaces = append(n.Interfaces, ifname)
	}
	return nil
}

// Node returns the named node.
func (t *Topology) Node(name string) (*Node, error) {
	n, ok := t.nodes[name]
	if !ok {
		return nil, fmt.Errorf("topo: node %s: %w", name, util.ErrNotFound)
	}
	return n, nil
}

// Nodes returns all nodes in creation order.
func (t *Topology) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodeOrder))
	for _, name := range t.nodeOrder {
		out = append(out, t.nodes[name])
	}
	return out
}

// Routers returns router nodes in creation order.
func (t *Topology) Routers() []*Node {
	var out []*Node
	for _, name := range t.nodeOrder {
		if n := t.nodes[name]; n.Role == RoleRouter {
			out = append(out, n)
		}
	}
	return out
}

// Switches returns all switches in creation order.
func (t *Topology) Switches() []*Switch {
	out := make([]*Switch, 0, len(t.swOrder))
	for _, name := range t.swOrder {
		out = append(out, t.switches[name])
	}
	return out
}

// SwitchFor returns the switch an interface is attached to, or "" when the
// interface is unattached.
func (t *Topology) SwitchFor(node, ifname string) string {
	return t.attached[node+":"+ifname]
}

// HasInterface reports whether the node owns the named interface.
func (n *Node) HasInterface(ifname string) bool {
	for _, have := range n.Interfaces {
		if have == ifname {
			return true
		}
	}
	return false
}
