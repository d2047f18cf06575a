package store

import "sync"

// AccountLocks serializes mutating operations per account. Create, edit and
// delete for the same username must not interleave; different usernames
// proceed independently.
type AccountLocks struct {
	mu   sync.Mutex
	held map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{held: make(map[string]*accountLock)}
}

// Lock acquires the mutation lock for a username, blocking until any
// in-flight mutation for the same username completes.
func (l *AccountLocks) Lock(user string) {
	l.mu.Lock()
	entry, ok := l.held[user]
	if !ok {
		entry = &accountLock{}
		l.held[user] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutation lock for a username.
func (l *AccountLocks) Unlock(user string) {
	l.mu.Lock()
	entry, ok := l.held[user]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, user)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
