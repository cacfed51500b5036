package memory

import (
	"context"
	"sync"
	"time"

	"sat-practice-service/internal/domain"
)

// AccountStore is an in-memory implementation of app.AccountRepository.
// A single mutex serializes writes, which gives AppendAttempt all-or-nothing semantics.
type AccountStore struct {
	clock func() time.Time

	mu         sync.RWMutex
	nextID     int64
	nextAttID  int64
	byID       map[int64]domain.Account
	byUsername map[string]int64
	attempts   map[int64][]domain.Attempt
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		clock:      time.Now,
		byID:       make(map[int64]domain.Account),
		byUsername: make(map[string]int64),
		attempts:   make(map[int64][]domain.Attempt),
	}
}

func (s *AccountStore) FindByUsername(_ context.Context, username string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *AccountStore) FindByID(_ context.Context, id int64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountStore) Create(_ context.Context, username, passwordHash string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[username]; ok {
		return domain.Account{}, domain.ErrDuplicateUsername
	}
	s.nextID++
	account := domain.Account{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.clock().UTC(),
	}
	s.byID[account.ID] = account
	s.byUsername[username] = account.ID
	return account, nil
}

func (s *AccountStore) AppendAttempt(_ context.Context, accountID int64, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[accountID]; !ok {
		return domain.Attempt{}, domain.ErrAccountNotFound
	}
	s.nextAttID++
	attempt.ID = s.nextAttID
	attempt.AccountID = accountID
	s.attempts[accountID] = append(s.attempts[accountID], attempt)
	return attempt, nil
}

func (s *AccountStore) ListAttempts(_ context.Context, accountID int64, category string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[accountID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	var out []domain.Attempt
	for _, a := range s.attempts[accountID] {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}
