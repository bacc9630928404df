package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAccountStore keeps the full AccountStore contract in a map. It
// backs the engine's test suite and local runs; it intentionally favors
// clarity over performance.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account // keyed by username
}

var _ AccountStore = (*InMemoryAccountStore)(nil)

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[string]*Account)}
}

func (s *InMemoryAccountStore) GetOne(_ context.Context, username string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[username]; ok {
		return copyOf(account), nil
	}
	return nil, ErrAccountNotFound
}

func (s *InMemoryAccountStore) GetOneByEmailAddress(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if strings.EqualFold(account.EmailAddress, email) {
			return copyOf(account), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *InMemoryAccountStore) GetOneByKey(_ context.Context, kind KeyKind, key string) (*Account, error) {
	if key == "" {
		return nil, ErrAccountNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if current, _ := account.Key(kind); current == key {
			return copyOf(account), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *InMemoryAccountStore) Register(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// re-check uniqueness under the lock; the engine's earlier reads do
	// not close the race window
	if _, ok := s.accounts[account.Username]; ok {
		return ErrDuplicateAccount
	}
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.EmailAddress, account.EmailAddress) {
			return ErrDuplicateAccount
		}
	}

	record := copyOf(account)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	record.CreatedAt = &now
	record.UpdatedAt = &now

	s.accounts[record.Username] = record
	return nil
}

func (s *InMemoryAccountStore) Activate(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok || record.UsernameVerified || record.ActivationKey != account.ActivationKey {
		return ErrAccountNotFound
	}

	record.UsernameVerified = true
	record.ClearKey(KeyKindActivation)
	return nil
}

func (s *InMemoryAccountStore) Authenticate(_ context.Context, account *Account) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.accounts[account.Username]
	if !ok || !record.UsernameVerified || record.PasswordHash != account.PasswordHash {
		return nil, ErrAccountNotFound
	}
	return copyOf(record), nil
}

func (s *InMemoryAccountStore) ChangePassword(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok {
		return ErrAccountNotFound
	}

	record.PasswordHash = account.PasswordHash
	record.ClearKey(KeyKindPasswordReset)
	return nil
}

func (s *InMemoryAccountStore) ReinitiateActivation(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok || record.UsernameVerified {
		return ErrAccountNotFound
	}

	key, expiry := account.Key(KeyKindActivation)
	record.SetKey(KeyKindActivation, key, *expiry)
	return nil
}

func (s *InMemoryAccountStore) InitiatePasswordResetRequest(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok {
		return ErrAccountNotFound
	}

	key, expiry := account.Key(KeyKindPasswordReset)
	record.SetKey(KeyKindPasswordReset, key, *expiry)
	return nil
}

func (s *InMemoryAccountStore) ExchangeKey(_ context.Context, kind KeyKind, oldKey, newKey string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.accounts {
		current, currentExpiry := record.Key(kind)
		if current != oldKey {
			continue
		}
		if currentExpiry == nil || !currentExpiry.After(time.Now()) {
			return ErrAccountNotFound
		}
		record.SetKey(kind, newKey, expiry)
		return nil
	}
	return ErrAccountNotFound
}

func (s *InMemoryAccountStore) TrackAttemptedLogin(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok {
		return ErrAccountNotFound
	}

	record.LoginAttempts++
	now := time.Now()
	record.LoginAttemptAt = &now
	return nil
}

func (s *InMemoryAccountStore) TrackSuccessfulLogin(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[account.Username]
	if !ok {
		return ErrAccountNotFound
	}

	now := time.Now()
	record.LoggedInAt = &now
	record.LoginAttemptAt = nil
	record.LoginAttempts = 0
	return nil
}

func copyOf(account *Account) *Account {
	dup := *account
	return &dup
}
