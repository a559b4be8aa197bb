package access

import "errors"

var (
	ErrNotFound     = errors.New("access: grant not found")
	ErrInvalidInput = errors.New("access: invalid input")
	ErrConflict     = errors.New("access: resource conflict")
	ErrUnavailable  = errors.New("access: storage unavailable")
)
