package placement

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

// Error codes.
const (
	// CodeInvalidConfiguration covers an empty or degenerate outline, a negative
	// margin, an unknown objective and a non-positive iteration budget.
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"

	// CodeDegenerateFootprint marks a footprint that cannot fit the placement area
	// even on an empty board. The engine skips such footprints per step.
	CodeDegenerateFootprint Code = "DEGENERATE_FOOTPRINT"

	// CodeNoEligibleFootprints means every footprint is ignored or there are none.
	CodeNoEligibleFootprints Code = "NO_ELIGIBLE_FOOTPRINTS"

	// CodeDuplicateFootprint is returned at ingest when two footprints share an id.
	CodeDuplicateFootprint Code = "DUPLICATE_FOOTPRINT"

	// CodeFootprintNotFound is used when an id has no matching footprint.
	CodeFootprintNotFound Code = "FOOTPRINT_NOT_FOUND"
)

// Sentinel errors for use with errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration, Message: "invalid configuration"}
	ErrDegenerateFootprint  = &Error{Code: CodeDegenerateFootprint, Message: "footprint does not fit placement area"}
	ErrNoEligibleFootprints = &Error{Code: CodeNoEligibleFootprints, Message: "no eligible footprints"}
	ErrDuplicateFootprint   = &Error{Code: CodeDuplicateFootprint, Message: "duplicate footprint"}
	ErrFootprintNotFound    = &Error{Code: CodeFootprintNotFound, Message: "footprint not found"}
)

// Error is a placement error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so errors.Is works against the
// sentinels above.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err, or any error it wraps, is an *Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
