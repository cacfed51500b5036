package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sat-practice-service/internal/domain"
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// AccountRepository persists accounts and their progress logs (Postgres, SQLite, memory).
// AppendAttempt must either store the attempt durably or leave no trace of it.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (domain.Account, error)
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	Create(ctx context.Context, username, passwordHash string) (domain.Account, error)
	AppendAttempt(ctx context.Context, accountID int64, attempt domain.Attempt) (domain.Attempt, error)
	ListAttempts(ctx context.Context, accountID int64, category string) ([]domain.Attempt, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher is the production PasswordHasher.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// AccountService handles registration, login and progress lookups.
type AccountService struct {
	accounts AccountRepository
	hasher   PasswordHasher
}

func NewAccountService(accounts AccountRepository, hasher PasswordHasher) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher}
}

// Register creates an account. An existing username yields domain.ErrDuplicateUsername
// and leaves that account untouched.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, domain.ErrInvalidRegistration
	}
	if len(password) > MaxPasswordBytes {
		return domain.Account{}, domain.ErrPasswordTooLong
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Account{}, err
	}
	return s.accounts.Create(ctx, username, hash)
}

// Authenticate returns the account for valid credentials and domain.ErrInvalidCredentials otherwise.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	return account, nil
}

// Account looks up the account behind a session.
func (s *AccountService) Account(ctx context.Context, id int64) (domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// Progress returns the practice log, oldest first.
func (s *AccountService) Progress(ctx context.Context, accountID int64) ([]domain.Attempt, error) {
	return s.accounts.ListAttempts(ctx, accountID, domain.CategoryPractice)
}
