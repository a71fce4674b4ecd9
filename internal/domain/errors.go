package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrDuplicatePendingRequest = errors.New("duplicate pending request")
	ErrDuplicateAssignment     = errors.New("duplicate assignment")
	ErrDuplicateEndorsement    = errors.New("duplicate endorsement")
	ErrAllocationExceeded      = errors.New("allocation exceeded")
	ErrInternal                = errors.New("internal error")
)

// AllocationExceededError reports the totals behind a rejected allocation so
// callers can present an actionable message.
type AllocationExceededError struct {
	Current   int
	Requested int
	Resulting int
	AsOf      time.Time
}

func (e *AllocationExceededError) Error() string {
	if e == nil {
		return ErrAllocationExceeded.Error()
	}
	msg := fmt.Sprintf(
		"allocation exceeded: current %d%% + requested %d%% = %d%% (max 100%%)",
		e.Current, e.Requested, e.Resulting,
	)
	if !e.AsOf.IsZero() {
		msg += " on " + e.AsOf.Format(DateLayout)
	}
	return msg
}

func (e *AllocationExceededError) Is(target error) bool {
	return target == ErrAllocationExceeded
}

// IsKnown reports whether err belongs to the domain error taxonomy.
func IsKnown(err error) bool {
	for _, k := range []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrForbidden,
		ErrInvalidStateTransition,
		ErrDuplicatePendingRequest,
		ErrDuplicateAssignment,
		ErrDuplicateEndorsement,
		ErrAllocationExceeded,
		ErrInternal,
	} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
