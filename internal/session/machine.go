package session

import (
	"errors"
	"fmt"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ErrIllegalTransition is returned when an event is not legal in the current
// state. The machine is left unchanged; nothing is ever silently dropped.
var ErrIllegalTransition = errors.New("illegal session transition")

// Recovery is the transient side-branch taken during the forgot flow. It is
// deliberately not persisted: a reloaded client re-enters recovery from
// LoggingIn rather than resuming mid-flow.
type Recovery int

const (
	RecoveryNone Recovery = iota
	RecoveryViaLock
	RecoveryViaFace
)

// Event is a session state machine input.
type Event interface{ isEvent() }

// SubmitUsername starts a session attempt. Guard: letters and digits only.
type SubmitUsername struct{ Username string }

// ExistenceResolved records the oracle's answer for the submitted username.
type ExistenceResolved struct{ Exists bool }

// RequestRecovery enters the forgot flow. When the account has no lock
// combination, face recovery is auto-selected.
type RequestRecovery struct{ HasLock bool }

// CancelRecovery abandons the forgot flow and returns to login.
type CancelRecovery struct{}

// VerifySucceeded is a Success pipeline outcome for the pending attempt.
type VerifySucceeded struct{}

// VerifyRejected is a Mismatch or ValidationError outcome: the user must
// resupply input, the state does not change.
type VerifyRejected struct{}

// VerifyUnavailable is a WorkerError outcome: retry later, state unchanged.
type VerifyUnavailable struct{}

// LoggedOut clears the session after a successful logout verification.
type LoggedOut struct{}

// AccountDeleted clears the session after the account was destroyed.
type AccountDeleted struct{}

func (SubmitUsername) isEvent()    {}
func (ExistenceResolved) isEvent() {}
func (RequestRecovery) isEvent()   {}
func (CancelRecovery) isEvent()    {}
func (VerifySucceeded) isEvent()   {}
func (VerifyRejected) isEvent()    {}
func (VerifyUnavailable) isEvent() {}
func (LoggedOut) isEvent()         {}
func (AccountDeleted) isEvent()    {}

// Apply is the pure transition function. It returns the next data and
// recovery branch, or ErrIllegalTransition with both left as they were.
func Apply(d Data, rec Recovery, ev Event) (Data, Recovery, error) {
	state := stateOf(d, rec)

	switch e := ev.(type) {
	case SubmitUsername:
		if state != Anonymous {
			return d, rec, transitionError(state, "submit username")
		}
		if !usernamePattern.MatchString(e.Username) {
			return d, rec, fmt.Errorf("username may only contain letters and digits: %w", ErrIllegalTransition)
		}
		return Data{Username: e.Username, Exists: Unknown}, RecoveryNone, nil

	case ExistenceResolved:
		if state != UsernameEntered {
			return d, rec, transitionError(state, "resolve existence")
		}
		d.Exists = False
		if e.Exists {
			d.Exists = True
		}
		return d, RecoveryNone, nil

	case RequestRecovery:
		if state != LoggingIn {
			return d, rec, transitionError(state, "request recovery")
		}
		if e.HasLock {
			return d, RecoveryViaLock, nil
		}
		return d, RecoveryViaFace, nil

	case CancelRecovery:
		if state != RecoveringViaLock && state != RecoveringViaFace {
			return d, rec, transitionError(state, "cancel recovery")
		}
		return d, RecoveryNone, nil

	case VerifySucceeded:
		switch state {
		case Registering:
			d.Exists = True
			d.Authenticated = true
			return d, RecoveryNone, nil
		case LoggingIn, RecoveringViaLock, RecoveringViaFace:
			d.Authenticated = true
			return d, RecoveryNone, nil
		}
		return d, rec, transitionError(state, "verification success")

	case VerifyRejected, VerifyUnavailable:
		switch state {
		case Registering, LoggingIn, RecoveringViaLock, RecoveringViaFace, Authenticated:
			// The user stays where they are and resupplies input or retries.
			return d, rec, nil
		}
		return d, rec, transitionError(state, "verification failure")

	case LoggedOut, AccountDeleted:
		if state != Authenticated {
			return d, rec, transitionError(state, "clear session")
		}
		return Data{}, RecoveryNone, nil
	}

	return d, rec, fmt.Errorf("unhandled event %T: %w", ev, ErrIllegalTransition)
}

func stateOf(d Data, rec Recovery) State {
	derived := DeriveState(d)
	if derived == LoggingIn {
		switch rec {
		case RecoveryViaLock:
			return RecoveringViaLock
		case RecoveryViaFace:
			return RecoveringViaFace
		}
	}
	return derived
}

func transitionError(s State, what string) error {
	return fmt.Errorf("cannot %s in state %s: %w", what, s, ErrIllegalTransition)
}

// Machine wraps the pure transition function with current data and the
// transient recovery branch. Construct it from persisted Data at any time.
type Machine struct {
	data Data
	rec  Recovery
}

func NewMachine(d Data) *Machine {
	return &Machine{data: d}
}

func (m *Machine) State() State {
	return stateOf(m.data, m.rec)
}

func (m *Machine) Data() Data {
	return m.data
}

func (m *Machine) Apply(ev Event) error {
	next, rec, err := Apply(m.data, m.rec, ev)
	if err != nil {
		return err
	}
	m.data = next
	m.rec = rec
	return nil
}
