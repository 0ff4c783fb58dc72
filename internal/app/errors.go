package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidCredential    = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrConversationNotFound = errors.New("conversation not found")
)
