package envpool

import "errors"

var (
	ErrNotFound = errors.New("environment not found")
	ErrClosed   = errors.New("environment pool is closed")
)
