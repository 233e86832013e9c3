package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/topolab-net/topolab/pkg/poll"
	"github.com/topolab-net/topolab/pkg/topo"
	"github.com/topolab-net/topolab/pkg/vrf"
)

// labFile is the on-disk YAML shape of a lab definition.
type labFile struct {
	Name      string         `yaml:"name"`
	Nodes     []nodeDecl     `yaml:"nodes"`
	Switches  []switchDecl   `yaml:"switches"`
	Instances []instanceDecl `yaml:"instances"`
	Fixtures  string         `yaml:"fixtures"`
	Configs   string         `yaml:"configs"`
	Poll      pollDecl       `yaml:"poll,omitempty"`
}

type nodeDecl struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role,omitempty"`     // "router" (default) or "host"
	SSH      string `yaml:"ssh,omitempty"`      // host:port for the SSH backend
	ConfigDB string `yaml:"configdb,omitempty"` // redis host:port for CONFIG_DB provisioning
}

type switchDecl struct {
	Name  string   `yaml:"name"`
	Links []string `yaml:"links"`
}

type instanceDecl struct {
	Name     string        `yaml:"name"`
	Table    int           `yaml:"table"`
	Bindings []bindingDecl `yaml:"bindings"`
}

type bindingDecl struct {
	Node      string `yaml:"node"`
	Interface string `yaml:"interface"`
}

type pollDecl struct {
	Attempts int    `yaml:"attempts,omitempty"`
	Interval string `yaml:"interval,omitempty"`
}

// Lab is a fully parsed lab definition ready to back a Runner.
type Lab struct {
	Name        string
	Topology    *topo.Topology
	Instances   *vrf.Set
	Poll        poll.Options
	FixturesDir string
	ConfigsDir  string
	SSHAddrs    map[string]string // node -> host:port, when declared
	ConfigDBs   map[string]string // node -> redis host:port, when declared
}

// ParseLab reads a lab YAML file and builds the topology and instance set.
// Relative fixture and config paths are resolved against the file's
// directory.
func ParseLab(path string) (*Lab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lab %s: %w", path, err)
	}

	var f labFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing lab %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = filepath.Base(filepath.Dir(path))
	}

	t := topo.New(f.Name)
	sshAddrs := make(map[string]string)
	configDBs := make(map[string]string)
	for _, n := range f.Nodes {
		role := topo.Role(n.Role)
		if n.Role == "" {
			role = topo.RoleRouter
		}
		if _, err := t.AddNode(n.Name, role); err != nil {
			return nil, fmt.Errorf("lab %s: %w", f.Name, err)
		}
		if n.SSH != "" {
			sshAddrs[n.Name] = n.SSH
		}
		if n.ConfigDB != "" {
			configDBs[n.Name] = n.ConfigDB
		}
	}
	for _, sw := range f.Switches {
		if _, err := t.AddSwitch(sw.Name); err != nil {
			return nil, fmt.Errorf("lab %s: %w", f.Name, err)
		}
		for _, node := range sw.Links {
			if _, err := t.Connect(sw.Name, node); err != nil {
				return nil, fmt.Errorf("lab %s: switch %s: %w", f.Name, sw.Name, err)
			}
		}
	}

	set := vrf.NewSet(t)
	for _, in := range f.Instances {
		if err := set.AddInstance(in.Name, in.Table); err != nil {
			return nil, fmt.Errorf("lab %s: %w", f.Name, err)
		}
		for _, b := range in.Bindings {
			if err := set.BindInterface(b.Node, b.Interface, in.Name); err != nil {
				return nil, fmt.Errorf("lab %s: %w", f.Name, err)
			}
		}
	}

	opts := poll.Options{MaxAttempts: f.Poll.Attempts}
	if f.Poll.Interval != "" {
		interval, err := time.ParseDuration(f.Poll.Interval)
		if err != nil {
			return nil, fmt.Errorf("lab %s: poll interval: %w", f.Name, err)
		}
		opts.Interval = interval
	}

	dir := filepath.Dir(path)
	return &Lab{
		Name:        f.Name,
		Topology:    t,
		Instances:   set,
		Poll:        opts,
		FixturesDir: resolveDir(dir, f.Fixtures),
		ConfigsDir:  resolveDir(dir, f.Configs),
		SSHAddrs:    sshAddrs,
		ConfigDBs:   configDBs,
	}, nil
}

func resolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
