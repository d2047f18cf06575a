// Package store persists account credential bundles: one reference face image
// and one or two ordered gesture combinations per user. It also answers the
// existence questions the authentication flows branch on.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user account or bundle does not exist.
// Transport failures are returned as distinct errors and must never be
// mistaken for absence.
var ErrNotFound = errors.New("not found")

// Role distinguishes the two gesture combinations of an account.
type Role string

const (
	RoleLock   Role = "lock"
	RoleUnlock Role = "unlock"
)

// GestureRef is one position of a stored combination: the classified gesture
// name and the storage path of the image it was enrolled from.
type GestureRef struct {
	Gesture string `json:"gesture"`
	Path    string `json:"path"`
}

// Bundle is the persisted gesture configuration of an account. The unlock
// combination is always present; the lock combination is optional.
type Bundle struct {
	Lock   []GestureRef `json:"lock,omitempty"`
	Unlock []GestureRef `json:"unlock"`
}

// Combination returns the combination for a role, nil when absent.
func (b *Bundle) Combination(role Role) []GestureRef {
	if role == RoleLock {
		return b.Lock
	}
	return b.Unlock
}

// GestureImage pairs a classified gesture name with the enrolled image bytes.
type GestureImage struct {
	Gesture string
	Data    []byte
}

// Account is the full credential bundle written on creation.
type Account struct {
	User   string
	Face   []byte
	Lock   []GestureImage
	Unlock []GestureImage
}

// Store is the server-side account store. Exists and HasLockCombination are
// idempotent reads; absence is a legitimate false, not an error. Mutating
// calls replace whole factors, never parts of them.
type Store interface {
	Exists(ctx context.Context, user string) (bool, error)
	HasLockCombination(ctx context.Context, user string) (bool, error)
	LoadFace(ctx context.Context, user string) ([]byte, error)
	LoadBundle(ctx context.Context, user string) (*Bundle, error)
	CreateAccount(ctx context.Context, acct *Account) error
	ReplaceFace(ctx context.Context, user string, face []byte) error
	ReplaceCombination(ctx context.Context, user string, role Role, images []GestureImage) error
	DeleteLockCombination(ctx context.Context, user string) error
	DeleteAccount(ctx context.Context, user string) error
}
