package vrf

import "fmt"

// Op identifies a plan step.
type Op string

const (
	// OpCreateInstance creates the VRF device for an instance.
	OpCreateInstance Op = "create-instance"
	// OpInstanceUp brings the VRF device up.
	OpInstanceUp Op = "instance-up"
	// OpBindInterface moves an interface into the instance and brings it up.
	OpBindInterface Op = "bind-interface"
)

// Command is one structured step of a provisioning plan. Backends either
// run Shell() on the node or translate the fields natively.
type Command struct {
	Op        Op
	Instance  string
	Table     int    // set for OpCreateInstance
	Interface string // set for OpBindInterface
}

// Shell renders the command as the iproute2 invocation for Linux backends.
func (c Command) Shell() string {
	switch c.Op {
	case OpCreateInstance:
		return fmt.Sprintf("ip link add name %s type vrf table %d", c.Instance, c.Table)
	case OpInstanceUp:
		return fmt.Sprintf("ip link set dev %s up", c.Instance)
	case OpBindInterface:
		return fmt.Sprintf("ip link set dev %s vrf %s up", c.Interface, c.Instance)
	}
	return ""
}

// Plan returns the ordered provisioning steps for one node: every instance
// with a binding on the node is created and brought up first, in
// registration order, then interfaces are bound in bind order. Creation
// strictly precedes any binding that refers to the instance.
func (s *Set) Plan(node string) []Command {
	used := make(map[string]bool)
	for _, b := range s.bindings {
		if b.Node == node {
			used[b.Instance] = true
		}
	}

	var plan []Command
	for _, name := range s.order {
		if !used[name] {
			continue
		}
		in := s.instances[name]
		plan = append(plan,
			Command{Op: OpCreateInstance, Instance: in.Name, Table: in.Table},
			Command{Op: OpInstanceUp, Instance: in.Name},
		)
	}
	for _, b := range s.bindings {
		if b.Node == node {
			plan = append(plan, Command{Op: OpBindInterface, Instance: b.Instance, Interface: b.Interface})
		}
	}
	return plan
}

// PlanAll returns the plan for every node that needs one.
func (s *Set) PlanAll() map[string][]Command {
	nodes := make(map[string]bool)
	for _, b := range s.bindings {
		nodes[b.Node] = true
	}
	out := make(map[string][]Command, len(nodes))
	for node := range nodes {
		out[node] = s.Plan(node)
	}
	return out
}
