package control

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/topolab-net/topolab/pkg/vrf"
)

func TestExecError(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &ExecError{Node: "r1", Command: "ip link", Output: "RTNETLINK answers: File exists\n", Err: inner}

	msg := err.Error()
	for _, want := range []string{"r1", "ip link", "RTNETLINK answers"} {
		if !strings.Contains(msg, want) {
			t.Errorf("ExecError message missing %q: %q", want, msg)
		}
	}
	if !errors.Is(err, inner) {
		t.Error("ExecError should unwrap to the inner error")
	}
}

func TestConfigDBWrites(t *testing.T) {
	tests := []struct {
		name string
		cmd  vrf.Command
		want []hashWrite
	}{
		{
			name: "create instance",
			cmd:  vrf.Command{Op: vrf.OpCreateInstance, Instance: "blue", Table: 11},
			want: []hashWrite{{Table: "VRF", Key: "blue", Fields: map[string]string{"table": "11"}}},
		},
		{
			name: "bind interface",
			cmd:  vrf.Command{Op: vrf.OpBindInterface, Instance: "blue", Interface: "r1-eth1"},
			want: []hashWrite{{Table: "INTERFACE", Key: "r1-eth1", Fields: map[string]string{"vrf_name": "blue"}}},
		},
		{
			name: "instance up has no config_db equivalent",
			cmd:  vrf.Command{Op: vrf.OpInstanceUp, Instance: "blue"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := configDBWrites(tt.cmd)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("configDBWrites mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSSHExecuteUnregisteredNode(t *testing.T) {
	s := NewSSH("admin", "admin")
	_, err := s.Execute(t.Context(), "ghost", "echo hi")

	var ee *ExecError
	if !errors.As(err, &ee) {
		t.Fatalf("got %v, want ExecError", err)
	}
	if ee.Node != "ghost" {
		t.Errorf("ExecError.Node = %q, want ghost", ee.Node)
	}
}
