package memory

import (
	"context"
	"sync"
	"time"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]storedSession
}

type storedSession struct {
	session   domain.Session
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock is test-only for controlling expiry.
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Create(ctx context.Context, accountID int64) (domain.Session, error) {
	session := app.NewSession(accountID, s.clock())
	return session, s.Save(ctx, session)
}

func (s *SessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if s.ttl > 0 && !entry.expiresAt.After(s.clock()) {
		s.expire(token)
		return domain.Session{}, domain.ErrSessionNotFound
	}
	session := entry.session
	session.Flashes = append([]string(nil), entry.session.Flashes...)
	return session, nil
}

// expire drops token unless a Save refreshed it after the caller saw it expired.
func (s *SessionStore) expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[token]; ok && !entry.expiresAt.After(s.clock()) {
		delete(s.sessions, token)
	}
}

// Save stores the session and restarts its expiry window.
func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.Flashes = append([]string(nil), session.Flashes...)
	s.sessions[session.Token] = storedSession{
		session:   session,
		expiresAt: s.clock().Add(s.ttl),
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
