// Package textdiff normalizes and line-diffs command output against expected
// fixtures. All functions are pure, so results are reproducible across runs.
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Normalize splits text into lines with trailing whitespace removed and
// trailing blank lines dropped. Comparison is defined over this form only;
// leading whitespace is significant.
func Normalize(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Equal reports line-by-line equality of the normalized texts.
func Equal(a, b string) bool {
	la, lb := Normalize(a), Normalize(b)
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}

// Diff renders a line-oriented delta between current and expected output,
// labeled with the given titles. It returns "" when the normalized texts
// are equal. Lines only in current are prefixed with "-", lines only in
// expected with "+".
func Diff(current, expected, titleCurrent, titleExpected string) string {
	if Equal(current, expected) {
		return ""
	}

	curText := strings.Join(Normalize(current), "\n") + "\n"
	expText := strings.Join(Normalize(expected), "\n") + "\n"

	dmp := diffmatchpatch.New()
	cur, exp, lineIndex := dmp.DiffLinesToChars(curText, expText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(cur, exp, false), lineIndex)

	var b strings.Builder
	b.WriteString("--- " + titleCurrent + "\n")
	b.WriteString("+++ " + titleExpected + "\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			b.WriteString(prefix + line + "\n")
		}
	}
	return b.String()
}
