package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/horusauth/horus/internal/session"
)

// ErrNotRetryable marks a verification rejection: the input was wrong, trying
// again with the same input will not help.
var ErrNotRetryable = errors.New("verification rejected")

// Flow drives the session state machine through the server API. Every
// transition is persisted immediately, so a client restarted at any point
// resumes in the state it left.
type Flow struct {
	api         *Client
	machine     *session.Machine
	sessionFile string
}

// NewFlow builds a flow from persisted session data.
func NewFlow(api *Client, data session.Data, sessionFile string) *Flow {
	return &Flow{
		api:         api,
		machine:     session.NewMachine(data),
		sessionFile: sessionFile,
	}
}

// LoadFlow restores a flow from the session file.
func LoadFlow(api *Client, sessionFile string) (*Flow, error) {
	data, err := session.Load(sessionFile)
	if err != nil {
		return nil, err
	}
	return NewFlow(api, data, sessionFile), nil
}

func (f *Flow) State() session.State {
	return f.machine.State()
}

func (f *Flow) Data() session.Data {
	return f.machine.Data()
}

func (f *Flow) apply(ev session.Event) error {
	if err := f.machine.Apply(ev); err != nil {
		return err
	}
	return session.Save(f.sessionFile, f.machine.Data())
}

// ResolveUser submits a username, asks the oracle whether the account exists
// and returns the resulting state: Registering for a new name, LoggingIn for
// a known one. An oracle failure leaves the session at UsernameEntered.
//
// ResolveUser is re-entrant: a rejected verification leaves the persisted
// session mid-attempt, and rerunning a command resumes that attempt instead
// of failing on a second username submission. Submitting a different
// username abandons the unauthenticated attempt and starts fresh.
func (f *Flow) ResolveUser(ctx context.Context, username string) (session.State, error) {
	if f.State() == session.Authenticated {
		return f.State(), fmt.Errorf("already logged in as %s, log out first", f.Data().Username)
	}

	if f.Data().Username != username {
		f.machine = session.NewMachine(session.Data{})
		if err := f.apply(session.SubmitUsername{Username: username}); err != nil {
			return f.State(), err
		}
	}

	if f.Data().Exists == session.Unknown {
		exists, err := f.api.Exists(ctx, username)
		if err != nil {
			return f.State(), fmt.Errorf("resolving user %s: %w", username, err)
		}
		if err := f.apply(session.ExistenceResolved{Exists: exists}); err != nil {
			return f.State(), err
		}
	}
	return f.State(), nil
}

// Register uploads the face image and gesture combinations and creates the
// account. On success the session becomes authenticated.
func (f *Flow) Register(ctx context.Context, facePath string, lockPaths, unlockPaths []string) (*Result, error) {
	if f.State() != session.Registering {
		return nil, fmt.Errorf("cannot register in state %s", f.State())
	}

	face, err := f.uploadOne(ctx, facePath)
	if err != nil {
		return nil, err
	}
	locks, err := f.uploadAll(ctx, lockPaths)
	if err != nil {
		return nil, err
	}
	unlocks, err := f.uploadAll(ctx, unlockPaths)
	if err != nil {
		return nil, err
	}

	res, err := f.api.Create(ctx, f.Data().Username, face, locks, unlocks)
	if err != nil {
		return nil, err
	}
	return res, f.settle(res, session.VerifySucceeded{})
}

// Login uploads the face image and unlock combination and verifies them.
func (f *Flow) Login(ctx context.Context, facePath string, unlockPaths []string) (*Result, error) {
	if f.State() != session.LoggingIn {
		return nil, fmt.Errorf("cannot log in in state %s", f.State())
	}

	face, err := f.uploadOne(ctx, facePath)
	if err != nil {
		return nil, err
	}
	unlocks, err := f.uploadAll(ctx, unlockPaths)
	if err != nil {
		return nil, err
	}

	res, err := f.api.Auth(ctx, f.Data().Username, face, nil, unlocks)
	if err != nil {
		return nil, err
	}
	return res, f.settle(res, session.VerifySucceeded{})
}

// Logout verifies the face image and lock combination; only on success is the
// session cleared. A user without a lock combination logs out with the face
// image alone.
func (f *Flow) Logout(ctx context.Context, facePath string, lockPaths []string) (*Result, error) {
	if f.State() != session.Authenticated {
		return nil, fmt.Errorf("cannot log out in state %s", f.State())
	}

	face, err := f.uploadOne(ctx, facePath)
	if err != nil {
		return nil, err
	}
	locks, err := f.uploadAll(ctx, lockPaths)
	if err != nil {
		return nil, err
	}

	res, err := f.api.Auth(ctx, f.Data().Username, face, locks, nil)
	if err != nil {
		return nil, err
	}
	if err := f.settle(res, session.LoggedOut{}); err != nil {
		return res, err
	}
	if res.OK {
		return res, session.Clear(f.sessionFile)
	}
	return res, nil
}

// StartRecovery enters the forgot flow. The branch depends on the account:
// with a stored lock combination recovery verifies it, without one it falls
// back to a face check.
func (f *Flow) StartRecovery(ctx context.Context) (session.State, error) {
	if f.State() != session.LoggingIn {
		return f.State(), fmt.Errorf("cannot start recovery in state %s", f.State())
	}

	hasLock, err := f.api.HasLock(ctx, f.Data().Username)
	if err != nil {
		return f.State(), fmt.Errorf("checking lock combination: %w", err)
	}
	if err := f.apply(session.RequestRecovery{HasLock: hasLock}); err != nil {
		return f.State(), err
	}
	return f.State(), nil
}

// Recover completes the forgot flow: a lock-combination check when the branch
// is RecoveringViaLock, a face check when it is RecoveringViaFace.
func (f *Flow) Recover(ctx context.Context, facePath string, lockPaths []string) (*Result, error) {
	var res *Result
	var err error

	switch f.State() {
	case session.RecoveringViaLock:
		var locks []string
		locks, err = f.uploadAll(ctx, lockPaths)
		if err != nil {
			return nil, err
		}
		res, err = f.api.Auth(ctx, f.Data().Username, "", locks, nil)
	case session.RecoveringViaFace:
		var face string
		face, err = f.uploadOne(ctx, facePath)
		if err != nil {
			return nil, err
		}
		res, err = f.api.FaceCheck(ctx, f.Data().Username, face)
	default:
		return nil, fmt.Errorf("cannot recover in state %s", f.State())
	}
	if err != nil {
		return nil, err
	}
	return res, f.settle(res, session.VerifySucceeded{})
}

// CancelRecovery abandons the forgot flow and returns to login.
func (f *Flow) CancelRecovery() error {
	return f.apply(session.CancelRecovery{})
}

// Edit replaces bundle factors while authenticated. The session state does
// not change, whatever the outcome.
func (f *Flow) Edit(ctx context.Context, facePath string, lockPaths, unlockPaths []string, deleteLock bool) (*Result, error) {
	if f.State() != session.Authenticated {
		return nil, fmt.Errorf("cannot edit the account in state %s", f.State())
	}

	var face string
	var err error
	if facePath != "" {
		face, err = f.uploadOne(ctx, facePath)
		if err != nil {
			return nil, err
		}
	}
	locks, err := f.uploadAll(ctx, lockPaths)
	if err != nil {
		return nil, err
	}
	unlocks, err := f.uploadAll(ctx, unlockPaths)
	if err != nil {
		return nil, err
	}

	return f.api.Edit(ctx, f.Data().Username, face, locks, unlocks, deleteLock)
}

// Delete destroys the account and clears the session.
func (f *Flow) Delete(ctx context.Context) (*Result, error) {
	if f.State() != session.Authenticated {
		return nil, fmt.Errorf("cannot delete the account in state %s", f.State())
	}

	res, err := f.api.Delete(ctx, f.Data().Username)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return res, f.resultError(res)
	}
	if err := f.apply(session.AccountDeleted{}); err != nil {
		return res, err
	}
	return res, session.Clear(f.sessionFile)
}

// settle applies the session event a verification result warrants: the given
// success event, or a rejection or unavailability event that leaves the state
// in place.
func (f *Flow) settle(res *Result, onSuccess session.Event) error {
	if res.OK {
		return f.apply(onSuccess)
	}
	if res.Retryable {
		if err := f.apply(session.VerifyUnavailable{}); err != nil {
			return err
		}
	} else {
		if err := f.apply(session.VerifyRejected{}); err != nil {
			return err
		}
	}
	return f.resultError(res)
}

func (f *Flow) resultError(res *Result) error {
	if res.Retryable {
		return fmt.Errorf("%s, try again later", res.Message)
	}
	return fmt.Errorf("%s: %w", res.Message, ErrNotRetryable)
}

func (f *Flow) uploadOne(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	paths, err := f.api.Upload(ctx, []string{path})
	if err != nil {
		return "", err
	}
	if len(paths) != 1 {
		return "", fmt.Errorf("expected one uploaded path, got %d", len(paths))
	}
	return paths[0], nil
}

func (f *Flow) uploadAll(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	return f.api.Upload(ctx, paths)
}
