package app_test

import (
	"testing"

	"sat-practice-service/internal/domain"
)

func newBank(t *testing.T, topics ...domain.Topic) *domain.Bank {
	t.Helper()
	bank, err := domain.NewBank(topics)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	return bank
}

func numbered(topic string, from, to int) domain.Topic {
	t := domain.Topic{Name: topic}
	for id := from; id <= to; id++ {
		t.Questions = append(t.Questions, domain.Question{ID: id, Text: "q", Correct: "A"})
	}
	return t
}
