package verify

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PassResult groups the checks of one verification pass for reporting.
type PassResult struct {
	Pass     string
	Duration time.Duration
	Checks   []CheckResult
}

// Counts returns (passed, failed, skipped, errors).
func (p *PassResult) Counts() (passed, failed, skipped, errors int) {
	for _, c := range p.Checks {
		switch c.Status {
		case CheckPassed:
			passed++
		case CheckFailed:
			failed++
		case CheckSkipped:
			skipped++
		case CheckError:
			errors++
		}
	}
	return
}

// Failed reports whether the pass had any failures or errors.
func (p *PassResult) Failed() bool {
	_, failed, _, errs := p.Counts()
	return failed > 0 || errs > 0
}

// ReportGenerator produces run reports from pass results.
type ReportGenerator struct {
	Lab     string
	Results []*PassResult
}

// WriteJUnit writes a JUnit XML report for CI integration: one testsuite
// per pass, one testcase per (node, instance) check.
func (g *ReportGenerator) WriteJUnit(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	suites := junitTestSuites{}
	for _, r := range g.Results {
		suite := junitTestSuite{
			Name: fmt.Sprintf("%s/%s", g.Lab, r.Pass),
			Time: r.Duration.Seconds(),
		}

		for _, c := range r.Checks {
			suite.Tests++
			tc := junitTestCase{
				Name:      caseName(c),
				ClassName: suite.Name,
			}
			switch c.Status {
			case CheckFailed:
				suite.Failures++
				tc.Failure = &junitFailure{Message: c.Message, Type: "convergence-timeout"}
			case CheckSkipped:
				suite.Skipped++
				tc.Skipped = &junitSkipped{Message: c.Message}
			case CheckError:
				suite.Errors++
				tc.Error = &junitError{Message: c.Message, Type: "fixture-load"}
			}
			suite.Cases = append(suite.Cases, tc)
		}

		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}

func caseName(c CheckResult) string {
	if c.Instance == "" {
		return c.Node
	}
	return fmt.Sprintf("%s/vrf-%s", c.Node, c.Instance)
}

// JUnit XML types

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     float64         `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	Error     *junitError   `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}
