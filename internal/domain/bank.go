package domain

import (
	"fmt"
	"strconv"
)

// Choice is one selectable answer. Key is what a client submits.
type Choice struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is a multiple-choice question. Correct is withheld from JSON so
// questions can be sent to clients as-is.
type Question struct {
	ID      int      `json:"id"`
	Topic   string   `json:"topic"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
	Correct string   `json:"-"`
}

// Topic is a named, ordered group of questions.
type Topic struct {
	Name      string
	Questions []Question
}

// Bank is the immutable question bank. It is safe for concurrent use because
// nothing mutates it after NewBank returns.
type Bank struct {
	topics []Topic
	byName map[string]int
	all    []Question
	byID   map[string][]int
	dupIDs []int
}

// NewBank indexes topics in the given order. Topic names must be unique and non-empty.
func NewBank(topics []Topic) (*Bank, error) {
	b := &Bank{
		topics: make([]Topic, 0, len(topics)),
		byName: make(map[string]int, len(topics)),
		byID:   make(map[string][]int),
	}
	seen := make(map[int]bool)
	for _, t := range topics {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: empty topic name", ErrInvalidBank)
		}
		if _, ok := b.byName[t.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate topic %q", ErrInvalidBank, t.Name)
		}
		questions := make([]Question, len(t.Questions))
		for i, q := range t.Questions {
			q.Topic = t.Name
			questions[i] = q

			key := strconv.Itoa(q.ID)
			b.byID[key] = append(b.byID[key], len(b.all))
			b.all = append(b.all, q)
			if seen[q.ID] {
				b.dupIDs = append(b.dupIDs, q.ID)
			}
			seen[q.ID] = true
		}
		b.byName[t.Name] = len(b.topics)
		b.topics = append(b.topics, Topic{Name: t.Name, Questions: questions})
	}
	return b, nil
}

// Topics returns topic names in bank order.
func (b *Bank) Topics() []string {
	names := make([]string, len(b.topics))
	for i, t := range b.topics {
		names[i] = t.Name
	}
	return names
}

// Questions returns a copy of the questions stored under topic.
func (b *Bank) Questions(topic string) ([]Question, bool) {
	i, ok := b.byName[topic]
	if !ok {
		return nil, false
	}
	return append([]Question(nil), b.topics[i].Questions...), true
}

// All returns every question, topics in bank order.
func (b *Bank) All() []Question {
	return append([]Question(nil), b.all...)
}

// Len is the number of questions across all topics.
func (b *Bank) Len() int {
	return len(b.all)
}

// DuplicateIDs lists ids that occur more than once, in the order the repeats were seen.
func (b *Bank) DuplicateIDs() []int {
	return append([]int(nil), b.dupIDs...)
}

// IsCorrect reports whether answer matches a question with the given id.
// Ids compare as decimal strings and answers compare exactly. When ids
// repeat, questions are tried in bank order and the first match wins.
func (b *Bank) IsCorrect(id, answer string) bool {
	for _, pos := range b.byID[id] {
		if b.all[pos].Correct == answer {
			return true
		}
	}
	return false
}
