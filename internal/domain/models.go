package domain

import "time"

// CategoryPractice is the progress log category every scored submission is filed under.
const CategoryPractice = "practice"

// Account is a registered user. PasswordHash is never exposed outside the store and auth code.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Attempt is one scored submission in an account's progress log.
type Attempt struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"accountId"`
	Category  string    `json:"category"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is the outcome of scoring a submission.
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Session binds a client cookie to an authenticated account.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"accountId"`
	Flashes   []string  `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddFlash queues a message for the next page the session renders.
func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns queued messages and clears them.
func (s *Session) PopFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}
