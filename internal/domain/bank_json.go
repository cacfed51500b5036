package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type questionDoc struct {
	ID      *int       `json:"id"`
	Text    string     `json:"text"`
	Choices choiceList `json:"choices"`
	Correct string     `json:"correct"`
}

// choiceList accepts either ["A", "B"] or {"A": "text", "B": "text"}.
type choiceList []Choice

func (c *choiceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	switch data[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(choiceList, len(items))
		for i, item := range items {
			out[i] = Choice{Key: item, Text: item}
		}
		*c = out
		return nil
	case '{':
		var out choiceList
		err := decodeObject(json.NewDecoder(bytes.NewReader(data)), func(key string, dec *json.Decoder) error {
			var text string
			if err := dec.Decode(&text); err != nil {
				return err
			}
			out = append(out, Choice{Key: key, Text: text})
			return nil
		})
		if err != nil {
			return err
		}
		*c = out
		return nil
	default:
		return fmt.Errorf("choices must be an array or an object")
	}
}

// ParseBank decodes a document of the form {"Topic": [{id, text, choices, correct}, ...], ...}.
// Topic order follows the document.
func ParseBank(data []byte) (*Bank, error) {
	var topics []Topic
	dec := json.NewDecoder(bytes.NewReader(data))
	err := decodeObject(dec, func(name string, dec *json.Decoder) error {
		var docs []questionDoc
		if err := dec.Decode(&docs); err != nil {
			return fmt.Errorf("topic %q: %v", name, err)
		}
		questions := make([]Question, 0, len(docs))
		for i, d := range docs {
			if d.ID == nil {
				return fmt.Errorf("topic %q: question %d has no id", name, i)
			}
			if d.Correct == "" {
				return fmt.Errorf("topic %q: question %d has no correct answer", name, *d.ID)
			}
			questions = append(questions, Question{
				ID:      *d.ID,
				Text:    d.Text,
				Choices: []Choice(d.Choices),
				Correct: d.Correct,
			})
		}
		topics = append(topics, Topic{Name: name, Questions: questions})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidBank)
	}
	return NewBank(topics)
}

// decodeObject walks a JSON object key by key so member order is kept.
func decodeObject(dec *json.Decoder, member func(key string, dec *json.Decoder) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key")
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
