package textdiff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	got := Normalize("a  \nb\t\n\n \n")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "x\ny\n", "x\ny\n", true},
		{"trailing whitespace", "x  \ny\t\n", "x\ny", true},
		{"trailing blank lines", "x\ny\n\n\n", "x\ny", true},
		{"different line", "x\ny", "x\nz", false},
		{"extra line", "x\ny\nz", "x\ny", false},
		{"leading whitespace significant", "  x", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqualSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"a\nb", "a\nc"},
		{"a\nb", "a\nb"},
		{"", "a"},
		{"route 10.0.1.0/24", "route 10.0.2.0/24"},
	}
	for _, p := range pairs {
		eqAB := Diff(p[0], p[1], "A", "B") == ""
		eqBA := Diff(p[1], p[0], "B", "A") == ""
		if eqAB != eqBA {
			t.Errorf("equality not symmetric for %q vs %q", p[0], p[1])
		}
		if eqAB != Equal(p[0], p[1]) {
			t.Errorf("Diff and Equal disagree for %q vs %q", p[0], p[1])
		}
	}
}

func TestDiffRendering(t *testing.T) {
	current := "N 10.0.1.0/24 [110/20] via 10.0.50.6\nN 10.0.2.0/24 [110/30] via 10.0.50.6\n"
	expected := "N 10.0.1.0/24 [110/20] via 10.0.50.6\nN 10.0.2.0/24 [110/40] via 10.0.50.6\n"

	out := Diff(current, expected, "Current output", "Expected output")
	if out == "" {
		t.Fatal("different texts must produce a diff")
	}
	for _, want := range []string{
		"--- Current output",
		"+++ Expected output",
		"-N 10.0.2.0/24 [110/30] via 10.0.50.6",
		"+N 10.0.2.0/24 [110/40] via 10.0.50.6",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestDiffEqualTextsEmpty(t *testing.T) {
	if out := Diff("a \n", "a", "cur", "exp"); out != "" {
		t.Errorf("equal texts should render no diff, got:\n%s", out)
	}
}

func TestDiffDeterministic(t *testing.T) {
	a, b := "one\ntwo\nthree", "one\n2\nthree"
	first := Diff(a, b, "cur", "exp")
	for i := 0; i < 5; i++ {
		if got := Diff(a, b, "cur", "exp"); got != first {
			t.Fatal("Diff output is not deterministic")
		}
	}
}
