package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"sat-practice-service/internal/domain"
)

type accountRow struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username"`
	PasswordHash string    `bun:"password_hash"`
	CreatedAt    time.Time `bun:"created_at"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts,alias:att"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id"`
	Category  string    `bun:"category"`
	Score     int       `bun:"score"`
	Total     int       `bun:"total"`
	CreatedAt time.Time `bun:"created_at"`
}

// AccountStore implements app.AccountRepository on bun, for Postgres and SQLite alike.
// Attempts live in their own table keyed by account id and are only ever inserted.
type AccountStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewAccountStore(db *bun.DB) *AccountStore {
	return &AccountStore{db: db, clock: time.Now}
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := new(accountRow)
	err := s.db.NewSelect().Model(row).Where("username = ?", username).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Account{}, lookupErr(err)
	}
	return row.toDomain(), nil
}

func (s *AccountStore) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	row := new(accountRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Account{}, lookupErr(err)
	}
	return row.toDomain(), nil
}

// Create inserts an account. The existence check and the unique constraint
// both map to domain.ErrDuplicateUsername so concurrent registrations agree.
func (s *AccountStore) Create(ctx context.Context, username, passwordHash string) (domain.Account, error) {
	row := &accountRow{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.clock().UTC(),
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*accountRow)(nil)).Where("username = ?", username).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateUsername
		}
		_, err = tx.NewInsert().Model(row).Returning("id").Exec(ctx)
		return err
	})
	if isUniqueViolation(err) {
		return domain.Account{}, domain.ErrDuplicateUsername
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return domain.Account{}, err
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return row.toDomain(), nil
}

// AppendAttempt inserts one attempt in a transaction that first confirms the account exists.
func (s *AccountStore) AppendAttempt(ctx context.Context, accountID int64, attempt domain.Attempt) (domain.Attempt, error) {
	row := &attemptRow{
		AccountID: accountID,
		Category:  attempt.Category,
		Score:     attempt.Score,
		Total:     attempt.Total,
		CreatedAt: attempt.CreatedAt.UTC(),
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*accountRow)(nil)).Where("id = ?", accountID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrAccountNotFound
		}
		_, err = tx.NewInsert().Model(row).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Attempt{}, err
		}
		return domain.Attempt{}, fmt.Errorf("append attempt: %w", err)
	}
	return row.toDomain(), nil
}

// ListAttempts returns domain.ErrAccountNotFound for an unknown account.
func (s *AccountStore) ListAttempts(ctx context.Context, accountID int64, category string) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*accountRow)(nil)).Where("id = ?", accountID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrAccountNotFound
		}
		return tx.NewSelect().Model(&rows).
			Where("account_id = ?", accountID).
			Where("category = ?", category).
			OrderExpr("id ASC").
			Scan(ctx)
	})
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.Attempt, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:        r.ID,
		AccountID: r.AccountID,
		Category:  r.Category,
		Score:     r.Score,
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
	}
}

func lookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("find account: %w", err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
