package domain

import "errors"

var (
	ErrEmptyContent   = errors.New("empty_content")
	ErrInvalidOptions = errors.New("invalid_options")
)
