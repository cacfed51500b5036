package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sat-practice-service/internal/domain"
	"sat-practice-service/internal/infra/sqlstore/migrations"
)

func newSQLiteStore(t *testing.T) *AccountStore {
	t.Helper()
	db, err := Open("sqlite:" + filepath.Join(t.TempDir(), "practice.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAccountStore(db)
}

func TestDriverFor(t *testing.T) {
	cases := map[string]Driver{
		"":                              DriverNone,
		"postgres://u:p@localhost/db":   DriverPostgres,
		"postgresql://u:p@localhost/db": DriverPostgres,
		"sqlite:practice.db":            DriverSQLite,
		"file:practice.db?cache=shared": DriverSQLite,
	}
	for url, want := range cases {
		got, err := DriverFor(url)
		if err != nil || got != want {
			t.Fatalf("%q: expected %q, got %q (%v)", url, want, got, err)
		}
	}
	if _, err := DriverFor("mysql://localhost"); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}
}

func TestAccountStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	created, err := store.Create(ctx, "alice", "hash-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated id")
	}

	byName, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	byID, err := store.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byName.ID != created.ID || byID.Username != "alice" || byID.PasswordHash != "hash-1" {
		t.Fatalf("unexpected lookups %+v / %+v", byName, byID)
	}

	if _, err := store.FindByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAccountStoreDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	if _, err := store.Create(ctx, "alice", "hash-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "alice", "hash-2"); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}
	account, _ := store.FindByUsername(ctx, "alice")
	if account.PasswordHash != "hash-1" {
		t.Fatalf("original password hash changed to %q", account.PasswordHash)
	}
}

func TestAccountStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	account, _ := store.Create(ctx, "bob", "hash")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.AppendAttempt(ctx, account.ID, domain.Attempt{
			Category:  domain.CategoryPractice,
			Score:     i,
			Total:     2,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	attempts, err := store.ListAttempts(ctx, account.ID, domain.CategoryPractice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	for i, a := range attempts {
		if a.Score != i || a.Total != 2 || !a.CreatedAt.Equal(base.Add(time.Duration(i)*time.Minute)) {
			t.Fatalf("attempt %d out of order or altered: %+v", i, a)
		}
	}
}

func TestAccountStoreAppendUnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	_, err := store.AppendAttempt(ctx, 404, domain.Attempt{Category: domain.CategoryPractice, Total: 1, CreatedAt: time.Now()})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := store.ListAttempts(ctx, 404, domain.CategoryPractice); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found on list, got %v", err)
	}
	var count int
	if err := store.db.NewSelect().Model((*attemptRow)(nil)).ColumnExpr("count(*)").Scan(ctx, &count); err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing recorded, got %d rows", count)
	}
}

func TestAccountStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	account, _ := store.Create(ctx, "carol", "hash")

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AppendAttempt(ctx, account.ID, domain.Attempt{Category: domain.CategoryPractice, Score: 1, Total: 1, CreatedAt: time.Now()})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	attempts, _ := store.ListAttempts(ctx, account.ID, domain.CategoryPractice)
	if len(attempts) != 10 {
		t.Fatalf("expected 10 attempts, got %d", len(attempts))
	}
}
