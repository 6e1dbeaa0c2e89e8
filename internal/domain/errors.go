package domain

import (
	"errors"
	"fmt"
	"time"
)

// Engine-level errors. These indicate a misconfiguration or operational limit,
// never a judgment about rule quality: content problems always come back as a
// ValidationResult with issues, not as an error.
var (
	ErrUnsupportedFormat = errors.New("unsupported detection format")
	ErrRegistration      = errors.New("validator registration rejected")
	ErrTimeout           = errors.New("validation timed out")
	ErrCancelled         = errors.New("validation cancelled")
)

// UnsupportedFormatError reports a lookup for a format with no registered
// validator.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported detection format: %s", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// RegistrationError reports an invalid validator registration: empty format,
// nil validator, or a duplicate.
type RegistrationError struct {
	Format Format
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("validator registration rejected for %q: %s", e.Format, e.Reason)
}

func (e *RegistrationError) Unwrap() error { return ErrRegistration }

// TimeoutError reports that a validation exceeded its per-call deadline.
// Any partial result is discarded.
type TimeoutError struct {
	Format  Format
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("validation of %s detection timed out after %s", e.Format, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// CancelledError reports that the caller's context was cancelled while a
// validation was in flight.
type CancelledError struct {
	Format Format
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("validation of %s detection cancelled", e.Format)
}

func (e *CancelledError) Unwrap() error { return ErrCancelled }
