package identity

import (
	"context"
	"sync"

	"huddle/internal/credentials"
	pkgerrors "huddle/pkg/errors"
)

// InMemoryStore is the authoritative account store for a process lifetime.
// Durability comes from the snapshot gateway, not from this store.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	verifier credentials.Verifier
	dirty    bool
}

func NewInMemoryStore(verifier credentials.Verifier) *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[string]*Account),
		verifier: verifier,
	}
}

func (s *InMemoryStore) Ensure(_ context.Context, username string) (Account, error) {
	if username == "" {
		return Account{}, pkgerrors.ErrMissingField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		acc = newAccount(username)
		s.accounts[username] = acc
		s.dirty = true
	}
	return acc.Clone(), nil
}

func (s *InMemoryStore) Register(_ context.Context, username, password string) (Account, error) {
	if username == "" || password == "" {
		return Account{}, pkgerrors.ErrMissingField
	}
	hash, err := s.verifier.Hash(password)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.accounts[username]; ok && existing.Credential != "" {
		return Account{}, pkgerrors.ErrUsernameTaken
	}
	// A session-created placeholder account may exist without a credential;
	// registration claims it rather than conflicting.
	acc, ok := s.accounts[username]
	if !ok {
		acc = newAccount(username)
		s.accounts[username] = acc
	}
	acc.Credential = hash
	s.dirty = true
	return acc.Clone(), nil
}

func (s *InMemoryStore) Verify(_ context.Context, username, password string) (Account, error) {
	s.mu.RLock()
	acc, ok := s.accounts[username]
	var stored string
	if ok {
		stored = acc.Credential
	}
	s.mu.RUnlock()

	if !ok {
		return Account{}, pkgerrors.ErrUserNotFound
	}
	if err := s.verifier.Compare(stored, password); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[username].Clone(), nil
}

func (s *InMemoryStore) Find(_ context.Context, username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	if !ok {
		return Account{}, pkgerrors.ErrUserNotFound
	}
	return acc.Clone(), nil
}

// ExecutePair applies a two-account transition atomically. Both accounts
// must already exist; validation and mutation run under the write lock so
// pending-edge removal and friend-edge insertion are one step.
func (s *InMemoryStore) ExecutePair(_ context.Context, a, b string,
	validate func(a, b *Account) error,
	mutate func(a, b *Account)) (Account, Account, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	accA, ok := s.accounts[a]
	if !ok {
		return Account{}, Account{}, pkgerrors.ErrUserNotFound
	}
	accB, ok := s.accounts[b]
	if !ok {
		return Account{}, Account{}, pkgerrors.ErrUserNotFound
	}

	if validate != nil {
		if err := validate(accA, accB); err != nil {
			return Account{}, Account{}, err
		}
	}
	if mutate != nil {
		mutate(accA, accB)
		s.dirty = true
	}
	return accA.Clone(), accB.Clone(), nil
}

func (s *InMemoryStore) Export(_ context.Context) (map[string]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Account, len(s.accounts))
	for username, acc := range s.accounts {
		out[username] = acc.Clone()
	}
	return out, nil
}

func (s *InMemoryStore) Import(_ context.Context, accounts map[string]Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*Account, len(accounts))
	for username, acc := range accounts {
		copied := acc.Clone()
		s.accounts[username] = &copied
	}
	s.dirty = false
	return nil
}

func (s *InMemoryStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *InMemoryStore) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}
