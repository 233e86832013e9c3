package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// scriptedProbe returns each output in sequence, then repeats the last one.
func scriptedProbe(outputs ...string) func(context.Context) (string, error) {
	i := 0
	return func(context.Context) (string, error) {
		out := outputs[i]
		if i < len(outputs)-1 {
			i++
		}
		return out, nil
	}
}

func TestUntilMatchFirstAttempt(t *testing.T) {
	res := UntilMatch(context.Background(), scriptedProbe("routes ok  \n"), "routes ok",
		Options{MaxAttempts: 10, Interval: time.Millisecond})
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 for an immediate match", res.Attempts)
	}
	if res.Diff != "" {
		t.Errorf("success must carry no diff, got %q", res.Diff)
	}
}

func TestUntilMatchAfterKAttempts(t *testing.T) {
	const k = 6
	outputs := make([]string, k)
	for i := 0; i < k-1; i++ {
		outputs[i] = fmt.Sprintf("converging %d", i)
	}
	outputs[k-1] = "converged"

	interval := 5 * time.Millisecond
	start := time.Now()
	res := UntilMatch(context.Background(), scriptedProbe(outputs...), "converged",
		Options{MaxAttempts: 80, Interval: interval})
	elapsed := time.Since(start)

	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Attempts != k {
		t.Errorf("Attempts = %d, want %d", res.Attempts, k)
	}
	if min := time.Duration(k-1) * interval; elapsed < min {
		t.Errorf("elapsed %v, want at least %v ((k-1) x interval)", elapsed, min)
	}
}

func TestUntilMatchBudgetExhausted(t *testing.T) {
	calls := 0
	probe := func(context.Context) (string, error) {
		calls++
		return "still wrong", nil
	}

	res := UntilMatch(context.Background(), probe, "the expected table",
		Options{MaxAttempts: 7, Interval: time.Millisecond})
	if res.OK {
		t.Fatal("expected failure")
	}
	if calls != 7 {
		t.Errorf("probe called %d times, want exactly 7", calls)
	}
	if res.Attempts != 7 {
		t.Errorf("Attempts = %d, want 7", res.Attempts)
	}
	if res.Diff == "" {
		t.Fatal("failure must carry a rendered diff")
	}
	if !strings.Contains(res.Diff, "still wrong") || !strings.Contains(res.Diff, "the expected table") {
		t.Errorf("diff must contain both sides:\n%s", res.Diff)
	}
	if !strings.Contains(res.Diff, "Current output") || !strings.Contains(res.Diff, "Expected output") {
		t.Errorf("diff must be labeled with both titles:\n%s", res.Diff)
	}
}

func TestUntilMatchRetriesProbeErrors(t *testing.T) {
	calls := 0
	probe := func(context.Context) (string, error) {
		calls++
		if calls < 4 {
			return "", errors.New("connection refused")
		}
		return "table", nil
	}

	res := UntilMatch(context.Background(), probe, "table",
		Options{MaxAttempts: 10, Interval: time.Millisecond})
	if !res.OK {
		t.Fatalf("transient probe errors must be retried, got %+v", res)
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
}

func TestUntilMatchPersistentProbeError(t *testing.T) {
	probeErr := errors.New("node unreachable")
	res := UntilMatch(context.Background(), func(context.Context) (string, error) {
		return "", probeErr
	}, "table", Options{MaxAttempts: 3, Interval: time.Millisecond})

	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if !errors.Is(res.LastErr, probeErr) {
		t.Errorf("LastErr = %v, want the persistent probe error", res.LastErr)
	}
}

func TestUntilBudgetError(t *testing.T) {
	_, attempts, err := Until(context.Background(), func(context.Context) (int, error) {
		return 1, nil
	}, func(int) bool { return false }, Options{MaxAttempts: 5, Interval: 0})

	if !errors.Is(err, ErrBudgetExhausted) {
		t.Errorf("err = %v, want ErrBudgetExhausted", err)
	}
	if attempts != 5 {
		t.Errorf("attempts = %d, want 5", attempts)
	}
}

func TestUntilContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Until(ctx, func(context.Context) (string, error) {
		return "nope", nil
	}, func(string) bool { return false }, Options{MaxAttempts: 100, Interval: time.Second})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.MaxAttempts != DefaultMaxAttempts || o.Interval != 0 {
		// zero interval is legal (back-to-back attempts); only negative
		// values fall back to the default.
		t.Errorf("withDefaults() = %+v", o)
	}
	if o := (Options{Interval: -1}).withDefaults(); o.Interval != DefaultInterval {
		t.Errorf("negative interval not defaulted: %+v", o)
	}
}
