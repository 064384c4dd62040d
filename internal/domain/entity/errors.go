package entity

import "errors"

var (
	// User errors
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrMissingUsername = errors.New("username is required")
	ErrMissingEmail    = errors.New("email is required")

	// Message errors
	ErrInvalidMessageID = errors.New("invalid message id")
	ErrInvalidChatID    = errors.New("invalid chat id")
	ErrEmptyMessageText = errors.New("message text is empty")
)
