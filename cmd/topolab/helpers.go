package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/topolab-net/topolab/pkg/verify"
)

var colorOut = term.IsTerminal(int(os.Stdout.Fd()))

// printCheck writes one per-check result line, colored when stdout is a
// terminal.
func printCheck(c verify.CheckResult) {
	name := c.Node
	if c.Instance != "" {
		name += "/vrf-" + c.Instance
	}

	detail := ""
	switch c.Status {
	case verify.CheckPassed:
		detail = fmt.Sprintf("converged after %d attempt(s)", c.Attempts)
	case verify.CheckSkipped:
		detail = c.Message
	case verify.CheckFailed, verify.CheckError:
		detail = c.Message
	}

	fmt.Printf("    %s %-24s %s\n", statusLabel(c.Status), name, detail)
	if c.Status == verify.CheckFailed && c.Diff != "" && verboseFlag {
		fmt.Println(c.Diff)
	}
}

func statusLabel(s verify.CheckStatus) string {
	if !colorOut {
		return fmt.Sprintf("%-5s", string(s))
	}
	switch s {
	case verify.CheckPassed:
		return fmt.Sprintf("\033[32m%-5s\033[0m", string(s))
	case verify.CheckFailed, verify.CheckError:
		return fmt.Sprintf("\033[31m%-5s\033[0m", string(s))
	case verify.CheckSkipped:
		return fmt.Sprintf("\033[33m%-5s\033[0m", string(s))
	}
	return string(s)
}
