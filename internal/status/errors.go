package status

import (
	"errors"
	"fmt"

	"github.com/mcstatusbot/statusbot/internal/validators"
)

var (
	// ErrInvalidAddress is matched by errors caused by an address failing host validation.
	// These are user-correctable and never retried.
	ErrInvalidAddress = errors.New("invalid server address")

	// ErrTransient is matched by network and provider failures.
	// These are not user-correctable and clear up on a later attempt.
	ErrTransient = errors.New("status provider unavailable")
)

// InvalidAddressError reports an address rejected before any request was made
type InvalidAddressError struct {
	Address string
	Reason  validators.HostReason
}

// Error returns the error message
func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid server address %q: %s", e.Address, e.Reason)
}

// Is matches ErrInvalidAddress
func (*InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// TransientError wraps the cause of a failed status request
type TransientError struct {
	Address string
	Err     error
}

// Error returns the error message
func (e *TransientError) Error() string {
	return fmt.Sprintf("failed to fetch status for %s: %v", e.Address, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransient
func (*TransientError) Is(target error) bool {
	return target == ErrTransient
}
