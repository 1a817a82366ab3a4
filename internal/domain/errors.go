package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidWIPLimit = errors.New("invalid wip limit")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrDuplicateStatus = errors.New("duplicate column status")
	ErrStatusMismatch  = errors.New("task status does not match column status")
	ErrTaskNotFound    = errors.New("task not found")
	ErrColumnNotFound  = errors.New("column not found")
	ErrTaskNotInColumn = errors.New("task not in column")
)
