package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the caller may not act on the target resource.
	// Missing token, bad token, wrong owner and inactive account all collapse
	// into this one error so callers cannot probe which accounts exist.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries one or more field-level violations, keyed by field
// name with a message key resolved to text at the HTTP boundary.
type ValidationError struct {
	Violations map[string]string
}

// NewValidationError builds an empty ValidationError ready to accumulate.
func NewValidationError() *ValidationError {
	return &ValidationError{Violations: make(map[string]string)}
}

// Add records a violation for a field. The first violation per field wins.
func (e *ValidationError) Add(field, messageKey string) {
	if _, ok := e.Violations[field]; !ok {
		e.Violations[field] = messageKey
	}
}

// HasViolations reports whether any violation was recorded.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
