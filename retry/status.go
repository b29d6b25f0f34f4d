package retry

import (
	"errors"
	"fmt"
)

// StatusError is an HTTP failure from a provider API, preserving the
// status code for retry classification and the response body for
// diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// asErr is errors.As without the package name stutter at call sites.
func asErr[T error](err error, target *T) bool {
	return errors.As(err, target)
}
