package errors

import (
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrPermission    = fmt.Errorf("permission denied")
	ErrAlreadyExists = fmt.Errorf("already exists")
	// ErrTransient marks storage failures the caller may retry.
	ErrTransient = fmt.Errorf("storage unavailable")
)
