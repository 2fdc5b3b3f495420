package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidResponse = errors.New("invalid response")
	ErrClosed          = errors.New("closed")
)
