package verify

import "fmt"

// Phase is the lifecycle state of one lab run. Transitions are strictly
// forward: Unbuilt -> Built -> Started -> TornDown. Keeping this on the
// Runner rather than in process-wide state lets several independent runs
// coexist in one process and makes teardown deterministic.
type Phase int

const (
	PhaseUnbuilt Phase = iota
	PhaseBuilt
	PhaseStarted
	PhaseTornDown
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbuilt:
		return "unbuilt"
	case PhaseBuilt:
		return "built"
	case PhaseStarted:
		return "started"
	case PhaseTornDown:
		return "torn-down"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Lifecycle tracks the current phase and rejects out-of-order transitions.
type Lifecycle struct {
	phase Phase
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	return l.phase
}

// advance moves from exactly `from` to `to`.
func (l *Lifecycle) advance(from, to Phase) error {
	if l.phase != from {
		return fmt.Errorf("verify: cannot move to %s from %s (need %s)", to, l.phase, from)
	}
	l.phase = to
	return nil
}

// require checks the current phase.
func (l *Lifecycle) require(p Phase) error {
	if l.phase != p {
		return fmt.Errorf("verify: requires phase %s, currently %s", p, l.phase)
	}
	return nil
}
