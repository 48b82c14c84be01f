package engine

import "errors"

var (
	// ErrBusy is returned when an apply or refresh is already running
	ErrBusy = errors.New("another operation is in progress")
	// ErrUnknownField is returned by SetField for a field name it does not know
	ErrUnknownField = errors.New("unknown field")
)
