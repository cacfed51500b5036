package file

import (
	"context"
	"fmt"
	"os"

	"sat-practice-service/internal/domain"
)

// BankLoader reads the question bank from a JSON file.
type BankLoader struct {
	path string
}

func NewBankLoader(path string) *BankLoader {
	return &BankLoader{path: path}
}

func (l *BankLoader) LoadBank(_ context.Context) (*domain.Bank, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	bank, err := domain.ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return bank, nil
}
