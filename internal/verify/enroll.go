package verify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/horusauth/horus/internal/constants"
	"github.com/horusauth/horus/internal/store"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// EnrollRequest carries the factors supplied to create or edit an account.
// For edits every field is optional but at least one must be present;
// DeleteLock removes the lock combination instead of replacing it.
type EnrollRequest struct {
	User       string
	Face       string
	Locks      []string
	Unlocks    []string
	DeleteLock bool
}

// EnrollResult surfaces the classified gesture names so the caller can
// confirm the combination reads the way they intended.
type EnrollResult struct {
	Lock   []string `json:"lock,omitempty"`
	Unlock []string `json:"unlock,omitempty"`
}

// Create registers a new account: classification pass over every gesture
// image first, persistence only after everything passed. The face and the
// unlock combination are required, the lock combination is optional.
func (p *Pipeline) Create(ctx context.Context, req EnrollRequest) (*EnrollResult, Outcome) {
	if req.User == "" {
		return nil, Invalid("user is required")
	}
	if !usernamePattern.MatchString(req.User) {
		return nil, Invalid("username may only contain letters and digits")
	}
	if req.Face == "" {
		return nil, Invalid("a face image is required")
	}
	if len(req.Unlocks) == 0 {
		return nil, Invalid("an unlock combination is required")
	}
	if out, ok := checkCombinationLength(req.Locks, req.Unlocks); !ok {
		return nil, out
	}

	p.locks.Lock(req.User)
	defer p.locks.Unlock(req.User)

	exists, err := p.store.Exists(ctx, req.User)
	if err != nil {
		return nil, Unavailable(err)
	}
	if exists {
		return nil, Invalid(fmt.Sprintf("user %s already exists", req.User))
	}

	face, out, ok := readImage(req.Face)
	if !ok {
		return nil, out
	}

	unlock, out := p.classifyCombination(ctx, req.Unlocks)
	if out.Kind != Success {
		return nil, out
	}
	var lock []store.GestureImage
	if len(req.Locks) > 0 {
		lock, out = p.classifyCombination(ctx, req.Locks)
		if out.Kind != Success {
			return nil, out
		}
		if sameGestures(lock, unlock) {
			return nil, Invalid("the lock combination must differ from the unlock combination")
		}
	}

	acct := &store.Account{User: req.User, Face: face, Lock: lock, Unlock: unlock}
	if err := p.store.CreateAccount(ctx, acct); err != nil {
		return nil, Unavailable(err)
	}

	return &EnrollResult{Lock: gestureNames(lock), Unlock: gestureNames(unlock)}, Succeeded()
}

// Edit replaces individual factors of an existing account. Everything is
// validated and classified before the first write, so a rejected edit leaves
// the stored bundle exactly as it was.
func (p *Pipeline) Edit(ctx context.Context, req EnrollRequest) (*EnrollResult, Outcome) {
	if req.User == "" {
		return nil, Invalid("user is required")
	}
	if req.Face == "" && len(req.Locks) == 0 && len(req.Unlocks) == 0 && !req.DeleteLock {
		return nil, Invalid("nothing to edit")
	}
	if out, ok := checkCombinationLength(req.Locks, req.Unlocks); !ok {
		return nil, out
	}

	p.locks.Lock(req.User)
	defer p.locks.Unlock(req.User)

	bundle, err := p.store.LoadBundle(ctx, req.User)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Invalid(fmt.Sprintf("user %s does not exist", req.User))
	}
	if err != nil {
		return nil, Unavailable(err)
	}

	var face []byte
	if req.Face != "" {
		var out Outcome
		var ok bool
		face, out, ok = readImage(req.Face)
		if !ok {
			return nil, out
		}
	}

	var lock, unlock []store.GestureImage
	if len(req.Locks) > 0 {
		var out Outcome
		lock, out = p.classifyCombination(ctx, req.Locks)
		if out.Kind != Success {
			return nil, out
		}
	}
	if len(req.Unlocks) > 0 {
		var out Outcome
		unlock, out = p.classifyCombination(ctx, req.Unlocks)
		if out.Kind != Success {
			return nil, out
		}
	}

	// The rule from account creation holds across edits too: whichever
	// combination is changing is compared against the one that will remain.
	if out, ok := checkCombinationsDiffer(bundle, lock, unlock, req.DeleteLock); !ok {
		return nil, out
	}

	if face != nil {
		if err := p.store.ReplaceFace(ctx, req.User, face); err != nil {
			return nil, Unavailable(err)
		}
	}
	if req.DeleteLock {
		if err := p.store.DeleteLockCombination(ctx, req.User); err != nil {
			return nil, Unavailable(err)
		}
	}
	if lock != nil {
		if err := p.store.ReplaceCombination(ctx, req.User, store.RoleLock, lock); err != nil {
			return nil, Unavailable(err)
		}
	}
	if unlock != nil {
		if err := p.store.ReplaceCombination(ctx, req.User, store.RoleUnlock, unlock); err != nil {
			return nil, Unavailable(err)
		}
	}

	return &EnrollResult{Lock: gestureNames(lock), Unlock: gestureNames(unlock)}, Succeeded()
}

// Delete destroys an account and every object belonging to it.
func (p *Pipeline) Delete(ctx context.Context, user string) Outcome {
	if user == "" {
		return Invalid("user is required")
	}

	p.locks.Lock(user)
	defer p.locks.Unlock(user)

	err := p.store.DeleteAccount(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return Invalid(fmt.Sprintf("user %s does not exist", user))
	}
	if err != nil {
		return Unavailable(err)
	}
	return Succeeded()
}

// classifyCombination runs the classification pass over newly supplied
// gesture images. This is enrollment, not authentication, so unclassifiable
// images are named so the user can replace them.
func (p *Pipeline) classifyCombination(ctx context.Context, paths []string) ([]store.GestureImage, Outcome) {
	images := make([]store.GestureImage, 0, len(paths))
	var unknown []string

	for _, path := range paths {
		data, out, ok := readImage(path)
		if !ok {
			return nil, out
		}

		name, err := p.classify(ctx, data)
		if err != nil {
			return nil, Unavailable(err)
		}
		if name == constants.GestureUnknown {
			unknown = append(unknown, path)
			continue
		}
		images = append(images, store.GestureImage{Gesture: name, Data: data})
	}

	if len(unknown) > 0 {
		return nil, Invalid(fmt.Sprintf(
			"no recognizable gesture was found in: %s. Please retake these images and try again",
			strings.Join(unknown, ", "),
		))
	}
	return images, Succeeded()
}

func checkCombinationLength(locks, unlocks []string) (Outcome, bool) {
	if len(locks) > constants.MaxCombinationLength || len(unlocks) > constants.MaxCombinationLength {
		return Invalid(fmt.Sprintf("a combination may contain at most %d gestures", constants.MaxCombinationLength)), false
	}
	return Outcome{}, true
}

// checkCombinationsDiffer rejects edits that would leave the lock and unlock
// combinations identical.
func checkCombinationsDiffer(bundle *store.Bundle, lock, unlock []store.GestureImage, deleteLock bool) (Outcome, bool) {
	lockNames := refNames(bundle.Lock)
	if deleteLock {
		lockNames = nil
	}
	if lock != nil {
		lockNames = gestureNames(lock)
	}
	unlockNames := refNames(bundle.Unlock)
	if unlock != nil {
		unlockNames = gestureNames(unlock)
	}
	if len(lockNames) > 0 && equalNames(lockNames, unlockNames) {
		return Invalid("the lock combination must differ from the unlock combination"), false
	}
	return Outcome{}, true
}

func sameGestures(a, b []store.GestureImage) bool {
	return equalNames(gestureNames(a), gestureNames(b))
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func gestureNames(images []store.GestureImage) []string {
	if len(images) == 0 {
		return nil
	}
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Gesture
	}
	return names
}

func refNames(refs []store.GestureRef) []string {
	if len(refs) == 0 {
		return nil
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Gesture
	}
	return names
}
