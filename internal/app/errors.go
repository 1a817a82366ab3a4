package app

import "errors"

// ErrNotDragging and related errors describe engine-level failures.
var (
	ErrNotDragging           = errors.New("no drag in progress")
	ErrInvalidPriorityFilter = errors.New("invalid priority filter")
)
