package entity

import (
	"errors"
	"fmt"
)

// Error taxonomy of the user domain. Callers match with errors.Is.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrPasswordRejected       = errors.New("password rejected by policy")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnexpectedEvent        = errors.New("unexpected event")
)

// Value object failures
var (
	ErrInvalidUserID    = fmt.Errorf("%w: user id must be a positive integer", ErrInvalidArgument)
	ErrLoginInvalid     = fmt.Errorf("%w: login should be a valid email address", ErrInvalidArgument)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, MinPasswordLength)
)

// Guard failures
var (
	ErrUserAlreadyActive   = fmt.Errorf("%w: user is already active", ErrInvalidStateTransition)
	ErrUserNotActive       = fmt.Errorf("%w: user is not active", ErrInvalidStateTransition)
	ErrUserAlreadyEnabled  = fmt.Errorf("%w: user is already enabled", ErrInvalidStateTransition)
	ErrUserAlreadyDisabled = fmt.Errorf("%w: user is already disabled", ErrInvalidStateTransition)
)
