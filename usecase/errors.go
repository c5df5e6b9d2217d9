package usecase

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrItemNotFound   = errors.New("item not found")
	ErrUserNotFound   = errors.New("user not found")
	// ErrStore wraps item, user and message store failures. Callers report
	// it without detail.
	ErrStore = errors.New("storage failure")
	// ErrEmptyMessage means the message was blank after trimming and was not stored.
	ErrEmptyMessage = errors.New("empty message")
)
