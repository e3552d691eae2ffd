// SPDX-License-Identifier: MPL-2.0

package packaging

import "fmt"

// Per-module processing states. Ready and Aborted are terminal.
const (
	StateDiscovered  State = "discovered"
	StateDescribed   State = "described"
	StateClassifying State = "classifying"
	StateReady       State = "ready"
	StateAborted     State = "aborted"
)

type (
	// State is where a module is in its packaging pass.
	State string

	// Tracker follows one module through its states. Transitions only move
	// forward; there is no retry.
	Tracker struct {
		state State
		cause error
	}
)

// NewTracker returns a Tracker in StateDiscovered.
func NewTracker() *Tracker {
	return &Tracker{state: StateDiscovered}
}

// String returns the string representation of the State.
func (s State) String() string { return string(s) }

// IsTerminal reports whether s is Ready or Aborted.
func (s State) IsTerminal() bool {
	return s == StateReady || s == StateAborted
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Cause returns the error that aborted the module, if any.
func (t *Tracker) Cause() error { return t.cause }

// Advance moves to the next state. Allowed transitions are
// discovered->described, described->classifying and classifying->ready.
func (t *Tracker) Advance(to State) error {
	if !isAllowedTransition(t.state, to) {
		return fmt.Errorf("disallowed module state transition: %s -> %s", t.state, to)
	}
	t.state = to
	return nil
}

// Abort moves any non-terminal state to Aborted and records cause.
func (t *Tracker) Abort(cause error) error {
	if t.state.IsTerminal() {
		return fmt.Errorf("disallowed module state transition: %s -> %s", t.state, StateAborted)
	}
	t.state = StateAborted
	t.cause = cause
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateDiscovered:
		return to == StateDescribed
	case StateDescribed:
		return to == StateClassifying
	case StateClassifying:
		return to == StateReady
	default:
		return false
	}
}
