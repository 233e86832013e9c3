// Package poll implements the bounded-retry engine used to wait for routing
// convergence. The probed systems expose no completion event, so the only
// portable strategy is to re-read their state until it matches or a caller
// supplied attempt budget runs out.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/topolab-net/topolab/pkg/textdiff"
)

// Defaults match a generous convergence window for a lab-sized topology:
// worst case 80 attempts x 1s.
const (
	DefaultMaxAttempts = 80
	DefaultInterval    = time.Second
)

// ErrBudgetExhausted is returned by Until when every attempt has been used
// without the predicate holding.
var ErrBudgetExhausted = errors.New("poll: attempt budget exhausted")

// Options bound a poll. Worst-case wait is MaxAttempts * Interval; both are
// part of the caller's contract because different topologies converge at
// different rates.
type Options struct {
	MaxAttempts int
	Interval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Interval < 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Result is the outcome of one UntilMatch call.
type Result struct {
	OK         bool
	Attempts   int
	LastOutput string
	LastErr    error  // probe error from the final attempt, if any
	Diff       string // rendered delta when OK is false
}

// Until invokes probe up to opts.MaxAttempts times, sleeping opts.Interval
// between attempts, until done returns true. The first attempt runs
// immediately. A probe error counts as a failed attempt and is retried; it
// is only surfaced in the return values when the budget runs out. The
// context cancels the wait between attempts.
func Until[T any](ctx context.Context, probe func(context.Context) (T, error), done func(T) bool, opts Options) (last T, attempts int, err error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempts = 1; ; attempts++ {
		got, probeErr := probe(ctx)
		lastErr = probeErr
		if probeErr == nil {
			last = got
			if done(got) {
				return last, attempts, nil
			}
		}

		if attempts >= opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return last, attempts, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}

	if lastErr != nil {
		return last, attempts, fmt.Errorf("%w after %d attempts: %v", ErrBudgetExhausted, attempts, lastErr)
	}
	return last, attempts, fmt.Errorf("%w after %d attempts", ErrBudgetExhausted, attempts)
}

// UntilMatch polls probe until its output equals expected under line
// normalization. On failure the result carries the last observed output and
// a rendered diff against the expectation.
func UntilMatch(ctx context.Context, probe func(context.Context) (string, error), expected string, opts Options) Result {
	var lastErr error
	wrapped := func(ctx context.Context) (string, error) {
		out, err := probe(ctx)
		lastErr = err
		return out, err
	}

	out, attempts, err := Until(ctx, wrapped, func(got string) bool {
		return textdiff.Equal(got, expected)
	}, opts)

	res := Result{
		Attempts:   attempts,
		LastOutput: out,
		LastErr:    lastErr,
	}
	if err == nil {
		res.OK = true
		return res
	}
	res.Diff = textdiff.Diff(out, expected, "Current output", "Expected output")
	return res
}
