package style

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the whole service. Handlers map these to
// HTTP status codes; everything else is surfaced as a generic failure.
var (
	// ErrInvalidParameter is returned for out-of-range or missing fields.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound is returned when a named template does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when creating a template whose name is taken.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned for operations on the protected default template.
	ErrForbidden = errors.New("forbidden")

	// ErrTimeout is returned when a render exceeded its ceiling.
	ErrTimeout = errors.New("timeout")

	// ErrEncoding is returned when the encoding engine rejected input or crashed.
	ErrEncoding = errors.New("encoding failure")
)

// InvalidField wraps ErrInvalidParameter naming the offending field.
func InvalidField(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, fmt.Sprintf(format, args...))
}
