package display

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is matched by mutations rejected because the rate limit was exhausted
	ErrRateLimited = errors.New("rate limited")

	// ErrPermissionDenied is matched by mutations the bot lacks permission for
	ErrPermissionDenied = errors.New("permission denied")
)

// Kind classifies a failed mutation
type Kind string

const (
	// KindRateLimited means the platform rejected the call for exceeding its rate limit
	KindRateLimited Kind = "rate_limited"

	// KindPermissionDenied means the bot is missing a permission on the surface
	KindPermissionDenied Kind = "permission_denied"

	// KindUnknown is any other failure
	KindUnknown Kind = "failed"
)

// MutationError is returned by Rename and SetEveryoneVisibility. It is built
// once where the platform response is interpreted so that callers never need
// to inspect platform specific error payloads.
type MutationError struct {
	Kind      Kind
	SurfaceID string
	Err       error
}

// Error returns the error message
func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation of surface %s failed (%s): %v", e.SurfaceID, e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is matches ErrRateLimited and ErrPermissionDenied according to the kind
func (e *MutationError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrPermissionDenied:
		return e.Kind == KindPermissionDenied
	}
	return false
}

// Classify returns the kind of a mutation error
func Classify(err error) Kind {
	var merr *MutationError
	if errors.As(err, &merr) {
		return merr.Kind
	}
	switch {
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	default:
		return KindUnknown
	}
}

// Suppressed reports whether a failure of this kind is expected often enough
// that it is only counted and not logged
func (k Kind) Suppressed() bool {
	return k == KindRateLimited || k == KindPermissionDenied
}
