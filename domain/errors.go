package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced post or channel that no longer exists.
var ErrNotFound = errors.New("not found")

// ErrNotAdmin marks an action attempted without an admin grant for the
// target channel.
var ErrNotAdmin = errors.New("not a channel admin")

// TooLongError reports input exceeding a per-field length limit. The flow
// keeps its state and re-prompts with the offending length.
type TooLongError struct {
	Length int
	Limit  int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("text too long: %d runes, limit %d", e.Length, e.Limit)
}

// Code lets the router derive a stable error code for logs.
func (e *TooLongError) Code() string { return "too_long" }
