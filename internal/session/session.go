// Package session implements the client-side identity lifecycle as a state
// machine over three persisted fields: username, account existence and the
// authenticated flag. The machine is derived purely from those fields, so a
// reloaded client lands in exactly the state it left.
package session

import (
	"encoding/json"
	"fmt"
)

// Tristate is an existence answer that may not have been resolved yet.
type Tristate int

const (
	Unknown Tristate = iota
	False
	True
)

func (t Tristate) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	}
	return "unknown"
}

func (t Tristate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tristate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal tristate: %w", err)
	}
	switch s {
	case "false":
		*t = False
	case "true":
		*t = True
	case "unknown", "":
		*t = Unknown
	default:
		return fmt.Errorf("invalid tristate value %q", s)
	}
	return nil
}

// Data is the serializable session state. Each field is independently
// settable and clearable; clearing all three is a logout.
type Data struct {
	Username      string   `json:"username"`
	Exists        Tristate `json:"exists"`
	Authenticated bool     `json:"authenticated"`
}

// State is the derived position in the identity lifecycle.
type State int

const (
	Anonymous State = iota
	UsernameEntered
	Registering
	LoggingIn
	RecoveringViaLock
	RecoveringViaFace
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case UsernameEntered:
		return "username_entered"
	case Registering:
		return "registering"
	case LoggingIn:
		return "logging_in"
	case RecoveringViaLock:
		return "recovering_via_lock"
	case RecoveringViaFace:
		return "recovering_via_face"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// DeriveState rebuilds the state from persisted data alone, with no network
// calls. Authenticated requires a resolved existing account; anything
// inconsistent degrades to the nearest legal state.
func DeriveState(d Data) State {
	if d.Username == "" {
		return Anonymous
	}
	if d.Authenticated && d.Exists == True {
		return Authenticated
	}
	switch d.Exists {
	case True:
		return LoggingIn
	case False:
		return Registering
	}
	return UsernameEntered
}

// View is a navigable client view, named by its route.
type View string

const (
	ViewHome      View = "/"
	ViewAuth      View = "/login"
	ViewForgot    View = "/forgot"
	ViewDashboard View = "/dashboard"
	ViewLogout    View = "/logout"
	ViewEdit      View = "/edit"
)

// Gate returns the view to show for a navigation attempt: the requested view
// when the state permits it, otherwise the minimal legal fallback.
func Gate(s State, v View) View {
	switch v {
	case ViewHome:
		return ViewHome
	case ViewAuth:
		if s == Registering || s == LoggingIn {
			return v
		}
	case ViewForgot:
		if s == LoggingIn || s == RecoveringViaLock || s == RecoveringViaFace {
			return v
		}
	case ViewDashboard, ViewLogout, ViewEdit:
		if s == Authenticated {
			return v
		}
	}
	return ViewHome
}
