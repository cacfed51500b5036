package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a request carries no live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAccountNotFound indicates the session or lookup refers to an account the store does not have.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateUsername is returned when registering a username that is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRegistration indicates a registration form with an empty username or password.
	ErrInvalidRegistration = errors.New("username and password are required")
	// ErrPasswordTooLong indicates a password longer than bcrypt accepts.
	ErrPasswordTooLong = errors.New("password is too long")
	// ErrUnknownTopic indicates a practice request for a topic the bank does not have.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrInsufficientQuestions indicates there are no questions to sample from.
	ErrInsufficientQuestions = errors.New("not enough questions")
	// ErrInvalidBank indicates a malformed question bank document.
	ErrInvalidBank = errors.New("invalid question bank")
)
