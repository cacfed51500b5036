package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
)

// SessionStore keeps sessions as JSON strings in Redis.
// Keys are session:{token}; every Save restarts the TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, clock: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, accountID int64) (domain.Session, error) {
	session := app.NewSession(accountID, s.clock().UTC())
	if err := s.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(session.Token), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "session:" + token
}
