package domain

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidMode          = errors.New("invalid conversation mode")
	ErrUsernameTaken        = errors.New("username already registered")
)
