package response

import (
	"errors"
	"net/http"
)

// Error is an error that already knows which HTTP status it maps to. Err holds
// the message that is safe to show to clients.
type Error struct {
	Code int
	Err  error
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by status and message, so a copy compares equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var respErr *Error
	ok := errors.As(err, &respErr)
	return respErr, ok
}

// Public returns the status and client-facing message for err. Errors without
// a *Error in their chain are reported as an opaque 500.
func Public(err error) (int, string) {
	if respErr, ok := As(err); ok {
		return respErr.Code, respErr.Err.Error()
	}
	return http.StatusInternalServerError, "An unexpected error occurred"
}
