package app

import (
	"context"
	"fmt"
	"time"

	"sat-practice-service/internal/domain"
)

// BankLoader reads the question bank from its backing source (file or Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context) (*domain.Bank, error)
}

// PracticeService serves questions and records scored submissions.
type PracticeService struct {
	bank     *domain.Bank
	selector *Selector
	accounts AccountRepository
	now      func() time.Time
}

func NewPracticeService(bank *domain.Bank, selector *Selector, accounts AccountRepository) *PracticeService {
	return NewPracticeServiceWithClock(bank, selector, accounts, time.Now)
}

// NewPracticeServiceWithClock is test-only for deterministic timestamps.
func NewPracticeServiceWithClock(bank *domain.Bank, selector *Selector, accounts AccountRepository, now func() time.Time) *PracticeService {
	return &PracticeService{bank: bank, selector: selector, accounts: accounts, now: now}
}

// Topics lists the topics a user can practice.
func (s *PracticeService) Topics() []string {
	return s.selector.Topics()
}

// Select returns questions for a practice round; see Selector.Select.
func (s *PracticeService) Select(_ context.Context, topic string) ([]domain.Question, error) {
	return s.selector.Select(topic)
}

// FullTest returns questions for a full test; see Selector.FullTest.
func (s *PracticeService) FullTest(_ context.Context) ([]domain.Question, error) {
	return s.selector.FullTest()
}

// Submit scores answers (question id -> chosen key) and appends the result to
// the account's practice log. Nothing is recorded if the append fails.
func (s *PracticeService) Submit(ctx context.Context, accountID int64, answers map[string]string) (domain.Result, error) {
	result := scoreAnswers(s.bank, answers)

	_, err := s.accounts.AppendAttempt(ctx, accountID, domain.Attempt{
		AccountID: accountID,
		Category:  domain.CategoryPractice,
		Score:     result.Score,
		Total:     result.Total,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("record attempt: %w", err)
	}
	return result, nil
}

// scoreAnswers counts every submitted entry toward the total, including ids
// the bank does not know.
func scoreAnswers(bank *domain.Bank, answers map[string]string) domain.Result {
	result := domain.Result{Total: len(answers)}
	for id, answer := range answers {
		if bank.IsCorrect(id, answer) {
			result.Score++
		}
	}
	return result
}
