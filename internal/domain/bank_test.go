package domain

import (
	"errors"
	"reflect"
	"testing"
)

const sampleDoc = `{
  "Math": [
    {"id": 1, "text": "2 + 2?", "choices": ["A", "B"], "correct": "A"},
    {"id": 2, "text": "3 * 3?", "choices": {"A": "6", "B": "9"}, "correct": "B"}
  ],
  "Algebra": [
    {"id": 3, "text": "x + 1 = 2", "choices": {"C": "1", "A": "2"}, "correct": "C"}
  ]
}`

func TestParseBankKeepsDocumentOrder(t *testing.T) {
	bank, err := ParseBank([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := bank.Topics(); !reflect.DeepEqual(got, []string{"Math", "Algebra"}) {
		t.Fatalf("expected document topic order, got %v", got)
	}
	if bank.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", bank.Len())
	}

	algebra, ok := bank.Questions("Algebra")
	if !ok || len(algebra) != 1 {
		t.Fatalf("expected one algebra question, got %v", algebra)
	}
	want := []Choice{{Key: "C", Text: "1"}, {Key: "A", Text: "2"}}
	if !reflect.DeepEqual(algebra[0].Choices, want) {
		t.Fatalf("expected ordered object choices, got %+v", algebra[0].Choices)
	}
	if algebra[0].Topic != "Algebra" {
		t.Fatalf("expected topic stamped on question, got %q", algebra[0].Topic)
	}

	math, _ := bank.Questions("Math")
	if math[0].Choices[1] != (Choice{Key: "B", Text: "B"}) {
		t.Fatalf("expected array choices keyed by value, got %+v", math[0].Choices)
	}
}

func TestParseBankRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not an object":  `[1, 2]`,
		"missing id":     `{"Math": [{"text": "x", "correct": "A"}]}`,
		"missing answer": `{"Math": [{"id": 1, "text": "x"}]}`,
		"bad topic":      `{"Math": {"id": 1}}`,
		"duplicate key":  `{"Math": [], "Math": []}`,
		"empty topic":    `{"": []}`,
		"trailing data":  `{"Math": []} {}`,
		"truncated":      `{"Math": [`,
	}
	for name, doc := range cases {
		if _, err := ParseBank([]byte(doc)); !errors.Is(err, ErrInvalidBank) {
			t.Fatalf("%s: expected ErrInvalidBank, got %v", name, err)
		}
	}
}

func TestIsCorrectFirstMatchWins(t *testing.T) {
	bank, err := NewBank([]Topic{
		{Name: "A", Questions: []Question{{ID: 7, Correct: "X"}}},
		{Name: "B", Questions: []Question{{ID: 7, Correct: "Y"}, {ID: 8, Correct: "a"}}},
	})
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	if !bank.IsCorrect("7", "X") || !bank.IsCorrect("7", "Y") {
		t.Fatalf("expected either duplicate to match")
	}
	if bank.IsCorrect("8", "A") {
		t.Fatalf("expected case-sensitive comparison")
	}
	if bank.IsCorrect("07", "X") || bank.IsCorrect("99", "X") {
		t.Fatalf("expected string id comparison with no match")
	}
	if got := bank.DuplicateIDs(); !reflect.DeepEqual(got, []int{7}) {
		t.Fatalf("expected duplicate id 7, got %v", got)
	}
}

func TestBankReturnsCopies(t *testing.T) {
	bank, _ := ParseBank([]byte(sampleDoc))
	qs, _ := bank.Questions("Math")
	qs[0].Correct = "Z"
	if !bank.IsCorrect("1", "A") {
		t.Fatalf("mutating a returned slice must not change the bank")
	}
	again, _ := bank.Questions("Math")
	if again[0].Correct != "A" {
		t.Fatalf("expected stored question unchanged")
	}
}

func TestSessionFlashes(t *testing.T) {
	s := Session{}
	s.AddFlash("Score: 1/2")
	if got := s.PopFlashes(); len(got) != 1 || got[0] != "Score: 1/2" {
		t.Fatalf("unexpected flashes %v", got)
	}
	if got := s.PopFlashes(); len(got) != 0 {
		t.Fatalf("expected flashes consumed, got %v", got)
	}
}
