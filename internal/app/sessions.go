package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sat-practice-service/internal/domain"
)

// SessionRepository abstracts where sessions live (in-memory, Redis).
// Get returns domain.ErrSessionNotFound for unknown or expired tokens.
type SessionRepository interface {
	Create(ctx context.Context, accountID int64) (domain.Session, error)
	Get(ctx context.Context, token string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, token string) error
}

// NewSession is exported for infrastructure layers that mint sessions.
func NewSession(accountID int64, now time.Time) domain.Session {
	return domain.Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		CreatedAt: now,
	}
}
