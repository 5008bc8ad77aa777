package llm

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned when a request names a provider that was
// not configured at startup.
var ErrUnknownProvider = errors.New("unknown provider")

// InvocationError is a transient network, timeout, or provider failure.
// The retry wrapper treats it as retryable.
type InvocationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s/%s: %v", e.Provider, e.Model, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// MalformedResponseError reports a provider payload that could not be used:
// non-JSON, schema-violating, or empty output. It is not retried within the
// same call; the stage fails instead.
type MalformedResponseError struct {
	Provider string
	Model    string
	Detail   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s/%s: %s", e.Provider, e.Model, e.Detail)
}

// retryable reports whether err warrants another attempt.
func retryable(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie)
}
