// Package overlay is the page-embedded side of the engine: gesture
// handling, the palette/result surfaces, and the single-in-flight
// request policy. The transition rules live in Machine, a pure state
// core driven by typed events, so every rule is testable without a
// terminal; the bubbletea model in model.go is a thin shell around it.
package overlay

import (
	"actionnerd/internal/action"
)

// State is the overlay lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateShowingPalette
	StateExecuting
	StateShowingResult
)

// String returns the state name for logs and test failures.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateShowingPalette:
		return "showing_palette"
	case StateExecuting:
		return "executing"
	case StateShowingResult:
		return "showing_result"
	default:
		return "unknown"
	}
}

// Machine holds the overlay's session state. Request supersession uses
// monotonically increasing version tokens: a response, timeout or
// failure only applies if its token still matches the latest request.
// Superseded work is never cancelled, only disregarded on arrival.
type Machine struct {
	state State

	// reqVersion is the token of the newest GetActions request;
	// execVersion the newest execution.
	reqVersion  uint64
	execVersion uint64

	ctx     *action.Context
	actions []action.Action
	chosen  *action.Action
	result  string
	notice  string
}

// NewMachine returns an idle machine.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Context returns the context of the current flow.
func (m *Machine) Context() *action.Context { return m.ctx }

// Actions returns the palette contents, valid in StateShowingPalette
// and later.
func (m *Machine) Actions() []action.Action { return m.actions }

// Chosen returns the action being or last executed.
func (m *Machine) Chosen() *action.Action { return m.chosen }

// Result returns the generated text, valid in StateShowingResult.
func (m *Machine) Result() string { return m.result }

// TakeNotice returns and clears the pending transient notification.
func (m *Machine) TakeNotice() string {
	n := m.notice
	m.notice = ""
	return n
}

// Gesture handles a qualifying user gesture. It is accepted in every
// state except Executing: a pending execution must not be interrupted
// by selection changes. An accepted gesture supersedes any in-flight
// GetActions request and returns the new request token.
func (m *Machine) Gesture(ctx *action.Context) (uint64, bool) {
	if m.state == StateExecuting {
		return 0, false
	}
	if ctx == nil || ctx.Empty() {
		// Loss of selection outside Loading tears the surface down.
		m.SelectionLost()
		return 0, false
	}

	m.reqVersion++
	m.state = StateLoading
	m.ctx = ctx
	m.actions = nil
	m.chosen = nil
	m.result = ""
	return m.reqVersion, true
}

// ActionsArrived applies a GetActions response. Stale tokens are
// discarded silently; that is the supersession rule, not an error.
func (m *Machine) ActionsArrived(version uint64, actions []action.Action) bool {
	if version != m.reqVersion || m.state != StateLoading {
		return false
	}
	if len(actions) == 0 {
		m.state = StateIdle
		m.notice = "No actions available"
		return false
	}
	m.actions = actions
	m.state = StateShowingPalette
	return true
}

// RequestFailed applies a transport failure or timeout for the token's
// request: back to idle with a transient notice, stale tokens ignored.
func (m *Machine) RequestFailed(version uint64, notice string) bool {
	if version != m.reqVersion || m.state != StateLoading {
		return false
	}
	m.state = StateIdle
	m.notice = notice
	return true
}

// Choose selects a palette entry by index and moves to Executing,
// disabling further palette input. Returns the execution token.
func (m *Machine) Choose(index int) (uint64, bool) {
	if m.state != StateShowingPalette || index < 0 || index >= len(m.actions) {
		return 0, false
	}
	act := m.actions[index]
	m.chosen = &act
	m.execVersion++
	m.state = StateExecuting
	return m.execVersion, true
}

// ExecutionDone applies a successful execution result.
func (m *Machine) ExecutionDone(version uint64, result string) bool {
	if version != m.execVersion || m.state != StateExecuting {
		return false
	}
	m.result = result
	m.state = StateShowingResult
	return true
}

// ExecutionFailed returns to idle with a user-visible error notice.
func (m *Machine) ExecutionFailed(version uint64, notice string) bool {
	if version != m.execVersion || m.state != StateExecuting {
		return false
	}
	m.state = StateIdle
	m.notice = notice
	return true
}

// Dismiss handles an explicit dismissal or an outside click. It is a
// no-op while Loading or Executing: those states resolve through their
// own timeout/failure paths.
func (m *Machine) Dismiss() bool {
	switch m.state {
	case StateLoading, StateExecuting, StateIdle:
		return false
	default:
		m.state = StateIdle
		m.actions = nil
		m.result = ""
		return true
	}
}

// SelectionLost mirrors Dismiss for losing the selection.
func (m *Machine) SelectionLost() bool {
	return m.Dismiss()
}
