package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when no transition is configured
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned for an unknown state
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every configured transition was vetoed
	ErrGuardFailed = errors.New("guard condition failed")
)
