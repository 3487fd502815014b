package domain

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied: host role required")
	ErrAccessDenied     = errors.New("access denied")
	ErrSelfBooking      = errors.New("cannot book own time slot")

	ErrTimeSlotNotFound = errors.New("time slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrHostNotFound     = errors.New("host not found")
	ErrMemberNotFound   = errors.New("member not found")

	ErrTimeSlotOverlap       = errors.New("time slot overlaps an existing slot")
	ErrBookingAlreadyExists  = errors.New("time slot is already booked for that date")
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled")
	ErrBookingNotModifiable  = errors.New("booking status cannot be changed")

	ErrPastBooking         = errors.New("booking date is in the past")
	ErrWeekdayNotAvailable = errors.New("time slot is not available on that weekday")
	ErrInvalidStatus       = errors.New("status cannot be set by host")

	// ErrLockTimeout means the slot was held by another transaction for too
	// long. The identical request may be retried.
	ErrLockTimeout = errors.New("timed out waiting for time slot lock")
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// NewValidationError reports malformed input.
func NewValidationError(msg string) error {
	return validationError(msg)
}

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// KindOf classifies err for transport mapping.
func KindOf(err error) Kind {
	var vErr *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &vErr),
		errors.Is(err, ErrPastBooking),
		errors.Is(err, ErrWeekdayNotAvailable),
		errors.Is(err, ErrInvalidStatus):
		return KindValidation
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrSelfBooking):
		return KindAuthorization
	case errors.Is(err, ErrTimeSlotNotFound),
		errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrCalendarNotFound),
		errors.Is(err, ErrHostNotFound),
		errors.Is(err, ErrMemberNotFound):
		return KindNotFound
	case errors.Is(err, ErrTimeSlotOverlap),
		errors.Is(err, ErrBookingAlreadyExists),
		errors.Is(err, ErrBookingNotCancellable),
		errors.Is(err, ErrBookingNotModifiable):
		return KindConflict
	case errors.Is(err, ErrLockTimeout):
		return KindTransient
	default:
		return KindInternal
	}
}
