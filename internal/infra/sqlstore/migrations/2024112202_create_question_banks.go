package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// questionBank holds a raw bank document per name. The column is json, not jsonb:
// topic order and duplicate keys in the document must survive the round trip.
type questionBank struct {
	bun.BaseModel `bun:"table:question_banks"`

	Name     string `bun:"name,pk"`
	Document string `bun:"document,type:json,notnull"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateTable().Model((*questionBank)(nil)).IfNotExists().Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropTable().Model((*questionBank)(nil)).IfExists().Exec(ctx)
			return err
		},
	)
}
