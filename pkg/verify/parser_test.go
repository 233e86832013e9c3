package verify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleLab = `
name: ospf-vrf
nodes:
  - name: r1
  - name: r2
    configdb: 10.0.0.2:6379
  - name: h1
    role: host
switches:
  - name: s1-2
    links: [r1, r2]
  - name: s1-h1
    links: [r1, h1]
instances:
  - name: blue
    table: 11
    bindings:
      - node: r1
        interface: r1-eth0
fixtures: ./fixtures
configs: ./configs
poll:
  attempts: 40
  interval: 500ms
`

func writeLab(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseLab(t *testing.T) {
	path := writeLab(t, sampleLab)
	lab, err := ParseLab(path)
	if err != nil {
		t.Fatal(err)
	}

	if lab.Name != "ospf-vrf" {
		t.Errorf("Name = %q", lab.Name)
	}
	if got := len(lab.Topology.Routers()); got != 2 {
		t.Errorf("routers = %d, want 2 (host excluded)", got)
	}

	r1, err := lab.Topology.Node("r1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r1-eth0", "r1-eth1"}, r1.Interfaces); diff != "" {
		t.Errorf("r1 interfaces (-want +got):\n%s", diff)
	}

	if got := lab.Instances.InstanceFor("r1", "r1-eth0"); got != "blue" {
		t.Errorf("r1-eth0 instance = %q, want blue", got)
	}
	if diff := cmp.Diff([]string{"default", "blue"}, lab.Instances.Names()); diff != "" {
		t.Errorf("instance enumeration (-want +got):\n%s", diff)
	}

	if got := lab.ConfigDBs["r2"]; got != "10.0.0.2:6379" {
		t.Errorf("ConfigDBs[r2] = %q, want declared redis address", got)
	}

	if lab.Poll.MaxAttempts != 40 || lab.Poll.Interval != 500*time.Millisecond {
		t.Errorf("poll = %+v, want 40 x 500ms", lab.Poll)
	}

	base := filepath.Dir(path)
	if lab.FixturesDir != filepath.Join(base, "fixtures") {
		t.Errorf("FixturesDir = %q, want resolved against lab dir", lab.FixturesDir)
	}
	if lab.ConfigsDir != filepath.Join(base, "configs") {
		t.Errorf("ConfigsDir = %q, want resolved against lab dir", lab.ConfigsDir)
	}
}

func TestParseLabRejectsBadTopology(t *testing.T) {
	cases := []struct {
		name string
		lab  string
	}{
		{"duplicate node", "nodes: [{name: r1}, {name: r1}]"},
		{"unknown link target", "nodes: [{name: r1}]\nswitches: [{name: s1, links: [r9]}]"},
		{"reserved instance name", "nodes: [{name: r1}]\ninstances: [{name: default, table: 1}]"},
		{"binding unknown interface", `
nodes: [{name: r1}]
instances: [{name: blue, table: 11, bindings: [{node: r1, interface: r1-eth5}]}]`},
		{"bad interval", "nodes: [{name: r1}]\npoll: {interval: sometimes}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLab(writeLab(t, tc.lab)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseLabDefaultsNameFromDir(t *testing.T) {
	path := writeLab(t, "nodes: [{name: r1}]")
	lab, err := ParseLab(path)
	if err != nil {
		t.Fatal(err)
	}
	if lab.Name != filepath.Base(filepath.Dir(path)) {
		t.Errorf("Name = %q, want the lab directory name", lab.Name)
	}
}
