package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sat-practice-service/internal/domain"
)

// BankLoader loads a question bank document stored as JSONB in question_banks.
type BankLoader struct {
	pool *pgxpool.Pool
	name string
}

func NewBankLoader(pool *pgxpool.Pool, name string) *BankLoader {
	return &BankLoader{pool: pool, name: name}
}

func (l *BankLoader) LoadBank(ctx context.Context) (*domain.Bank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT document FROM question_banks WHERE name=$1`, l.name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load bank %q: not found", l.name)
	}
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", l.name, err)
	}
	bank, err := domain.ParseBank(raw)
	if err != nil {
		return nil, fmt.Errorf("bank %q: %w", l.name, err)
	}
	return bank, nil
}
