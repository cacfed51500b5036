package app

import (
	"math/rand"
	"sync"
	"time"

	"sat-practice-service/internal/domain"
)

const (
	// PracticeSampleSize is how many questions a practice round without a topic gets.
	PracticeSampleSize = 5
	// FullTestSize caps the number of questions in a full test.
	FullTestSize = 20
)

// Selector picks questions from the bank. Both random paths clamp to the bank
// size and only fail when the bank is empty.
type Selector struct {
	bank *domain.Bank

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSelector(bank *domain.Bank) *Selector {
	return NewSelectorWithRand(bank, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand allows deterministic sampling in tests.
func NewSelectorWithRand(bank *domain.Bank, rnd *rand.Rand) *Selector {
	return &Selector{bank: bank, rnd: rnd}
}

// Select returns every question of topic in stored order, or a random sample
// of PracticeSampleSize when topic is empty.
func (s *Selector) Select(topic string) ([]domain.Question, error) {
	if topic == "" {
		return s.sample(PracticeSampleSize)
	}
	questions, ok := s.bank.Questions(topic)
	if !ok {
		return nil, domain.ErrUnknownTopic
	}
	return questions, nil
}

// FullTest returns up to FullTestSize random questions from all topics.
func (s *Selector) FullTest() ([]domain.Question, error) {
	return s.sample(FullTestSize)
}

// Topics lists the bank's topics in order.
func (s *Selector) Topics() []string {
	return s.bank.Topics()
}

func (s *Selector) sample(n int) ([]domain.Question, error) {
	all := s.bank.All()
	if len(all) == 0 {
		return nil, domain.ErrInsufficientQuestions
	}
	if n > len(all) {
		n = len(all)
	}

	s.mu.Lock()
	perm := s.rnd.Perm(len(all))
	s.mu.Unlock()

	out := make([]domain.Question, n)
	for i := 0; i < n; i++ {
		out[i] = all[perm[i]]
	}
	return out, nil
}
