package faults

import "errors"

var (
	ErrNotFound          = errors.New("referenced entity not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotAssigned       = errors.New("employee is not assigned to project")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicatePayment  = errors.New("payment already recorded for period")
	ErrUnavailable       = errors.New("store unavailable")
)

// Code returns the stable API error code for a taxonomy error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotAssigned):
		return "not_assigned"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrDuplicatePayment):
		return "duplicate_payment"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal_error"
	}
}
