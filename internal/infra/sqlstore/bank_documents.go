package sqlstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type bankDocumentRow struct {
	bun.BaseModel `bun:"table:question_banks,alias:qb"`

	Name     string `bun:"name,pk"`
	Document string `bun:"document"`
}

// SaveBankDocument stores or replaces the raw bank document under name.
func SaveBankDocument(ctx context.Context, db bun.IDB, name string, document []byte) error {
	row := &bankDocumentRow{Name: name, Document: string(document)}
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("document = EXCLUDED.document").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save bank %q: %w", name, err)
	}
	return nil
}
