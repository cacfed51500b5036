package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"sat-practice-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour)

	session, err := store.Create(ctx, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Token == "" || session.AccountID != 42 {
		t.Fatalf("unexpected session %+v", session)
	}

	session.AddFlash("hello")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Flashes) != 1 || got.Flashes[0] != "hello" {
		t.Fatalf("expected flash persisted, got %v", got.Flashes)
	}

	if err := store.Delete(ctx, session.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(time.Minute, func() time.Time { return now })

	session, _ := store.Create(ctx, 1)
	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, session.Token); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestSessionStoreExpireKeepsRefreshedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(time.Minute, func() time.Time { return now })

	session, _ := store.Create(ctx, 1)
	now = now.Add(2 * time.Minute)

	// A Save lands between Get seeing the stale entry and taking the write lock.
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.expire(session.Token)

	if _, err := store.Get(ctx, session.Token); err != nil {
		t.Fatalf("expected refreshed session to survive, got %v", err)
	}
}
