package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFixtures creates a fixture tree under dir. Keys are
// "node/prefix-vrf-instance" and values are the fixture text.
func WriteFixtures(t *testing.T, dir string, fixtures map[string]string) {
	t.Helper()
	for key, text := range fixtures {
		path := filepath.Join(dir, key+".txt")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// WriteConfigs creates one frr.conf per node under dir.
func WriteConfigs(t *testing.T, dir string, configs map[string]string) {
	t.Helper()
	for node, text := range configs {
		nodeDir := filepath.Join(dir, node)
		if err := os.MkdirAll(nodeDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(nodeDir, "frr.conf"), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
}
