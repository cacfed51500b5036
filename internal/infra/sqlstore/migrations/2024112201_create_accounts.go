package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

type account struct {
	bun.BaseModel `bun:"table:accounts"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type attempt struct {
	bun.BaseModel `bun:"table:attempts"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	Category  string    `bun:"category,notnull"`
	Score     int       `bun:"score,notnull"`
	Total     int       `bun:"total,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewCreateTable().Model((*account)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateTable().Model((*attempt)(nil)).
				IfNotExists().
				ForeignKey(`("account_id") REFERENCES "accounts" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().Model((*attempt)(nil)).
				Index("attempts_account_category_idx").
				Column("account_id", "category").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.NewDropTable().Model((*attempt)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewDropTable().Model((*account)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}
