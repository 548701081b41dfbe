package domain

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNotFound      = errors.New("not found")
)
