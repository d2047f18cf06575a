package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and for local development
// when no S3 bucket is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memAccount
}

type memAccount struct {
	face   []byte
	bundle Bundle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*memAccount)}
}

func (s *MemoryStore) Exists(ctx context.Context, user string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[user]
	return ok, nil
}

func (s *MemoryStore) HasLockCombination(ctx context.Context, user string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[user]
	if !ok {
		return false, nil
	}
	return len(acct.bundle.Lock) > 0, nil
}

func (s *MemoryStore) LoadFace(ctx context.Context, user string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[user]
	if !ok {
		return nil, ErrNotFound
	}
	face := make([]byte, len(acct.face))
	copy(face, acct.face)
	return face, nil
}

func (s *MemoryStore) LoadBundle(ctx context.Context, user string) (*Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[user]
	if !ok {
		return nil, ErrNotFound
	}
	bundle := Bundle{
		Lock:   append([]GestureRef(nil), acct.bundle.Lock...),
		Unlock: append([]GestureRef(nil), acct.bundle.Unlock...),
	}
	return &bundle, nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.User] = &memAccount{
		face: append([]byte(nil), acct.Face...),
		bundle: Bundle{
			Lock:   toRefs(acct.User, RoleLock, acct.Lock),
			Unlock: toRefs(acct.User, RoleUnlock, acct.Unlock),
		},
	}
	return nil
}

func (s *MemoryStore) ReplaceFace(ctx context.Context, user string, face []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[user]
	if !ok {
		return ErrNotFound
	}
	acct.face = append([]byte(nil), face...)
	return nil
}

func (s *MemoryStore) ReplaceCombination(ctx context.Context, user string, role Role, images []GestureImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[user]
	if !ok {
		return ErrNotFound
	}
	refs := toRefs(user, role, images)
	if role == RoleLock {
		acct.bundle.Lock = refs
	} else {
		acct.bundle.Unlock = refs
	}
	return nil
}

func (s *MemoryStore) DeleteLockCombination(ctx context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[user]
	if !ok {
		return ErrNotFound
	}
	acct.bundle.Lock = nil
	return nil
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[user]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, user)
	return nil
}

func toRefs(user string, role Role, images []GestureImage) []GestureRef {
	refs := make([]GestureRef, len(images))
	for i, img := range images {
		refs[i] = GestureRef{Gesture: img.Gesture, Path: gestureKey(user, role, i+1)}
	}
	return refs
}
