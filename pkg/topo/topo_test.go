package topo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/topolab-net/topolab/pkg/util"
)

func TestAddNodeRoles(t *testing.T) {
	tp := New("t")
	if _, err := tp.AddRouter("r1"); err != nil {
		t.Fatalf("AddRouter: %v", err)
	}
	if _, err := tp.AddHost("h1"); err != nil {
		t.Fatalf("AddHost: %v", err)
	}
	if _, err := tp.AddNode("x", Role("firewall")); err == nil {
		t.Error("unknown role must be rejected")
	}
	if _, err := tp.AddNode("", RoleRouter); err == nil {
		t.Error("empty name must be rejected")
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	tp := New("t")
	if _, err := tp.AddRouter("r1"); err != nil {
		t.Fatalf("AddRouter: %v", err)
	}
	_, err := tp.AddRouter("r1")
	if !errors.Is(err, util.ErrAlreadyExists) {
		t.Errorf("duplicate node: got %v, want ErrAlreadyExists", err)
	}
}

func TestConnectAllocatesInterfaces(t *testing.T) {
	tp := New("t")
	tp.AddRouter("r1")
	tp.AddRouter("r2")
	tp.AddSwitch("s1-2")
	tp.AddSwitch("s1-x")

	if got, _ := tp.Connect("s1-2", "r1"); got != "r1-eth0" {
		t.Errorf("first interface = %q, want r1-eth0", got)
	}
	if got, _ := tp.Connect("s1-2", "r2"); got != "r2-eth0" {
		t.Errorf("first interface = %q, want r2-eth0", got)
	}
	if got, _ := tp.Connect("s1-x", "r1"); got != "r1-eth1" {
		t.Errorf("second interface = %q, want r1-eth1", got)
	}

	r1, _ := tp.Node("r1")
	if diff := cmp.Diff([]string{"r1-eth0", "r1-eth1"}, r1.Interfaces); diff != "" {
		t.Errorf("r1 interfaces mismatch (-want +got):\n%s", diff)
	}
	if got := tp.SwitchFor("r1", "r1-eth1"); got != "s1-x" {
		t.Errorf("SwitchFor(r1-eth1) = %q, want s1-x", got)
	}
}

func TestConnectInterfaceDuplicateBinding(t *testing.T) {
	tp := New("t")
	tp.AddRouter("r1")
	tp.AddSwitch("s1")
	tp.AddSwitch("s2")

	if _, err := tp.Connect("s1", "r1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	err := tp.ConnectInterface("s2", "r1", "r1-eth0")
	var dup *DuplicateBindingError
	if !errors.As(err, &dup) {
		t.Fatalf("reattach: got %v, want DuplicateBindingError", err)
	}
	if dup.Switch != "s1" {
		t.Errorf("existing switch = %q, want s1", dup.Switch)
	}
	if !errors.Is(err, util.ErrAlreadyExists) {
		t.Error("DuplicateBindingError should unwrap to ErrAlreadyExists")
	}
}

func TestConnectUnknownEndpoints(t *testing.T) {
	tp := New("t")
	tp.AddRouter("r1")
	tp.AddSwitch("s1")

	if _, err := tp.Connect("s1", "nope"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("unknown node: got %v, want ErrNotFound", err)
	}
	if _, err := tp.Connect("nope", "r1"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("unknown switch: got %v, want ErrNotFound", err)
	}
}

func TestRoutersExcludesHosts(t *testing.T) {
	tp := New("t")
	tp.AddRouter("r1")
	tp.AddHost("h1")
	tp.AddRouter("r2")

	var names []string
	for _, n := range tp.Routers() {
		names = append(names, n.Name)
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, names); diff != "" {
		t.Errorf("Routers mismatch (-want +got):\n%s", diff)
	}
	if got := len(tp.Nodes()); got != 3 {
		t.Errorf("Nodes() = %d entries, want 3", got)
	}
}
