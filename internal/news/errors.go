package news

import (
	"errors"
	"fmt"
)

// Fetch and parse errors.
var (
	ErrInvalidRequest       = errors.New("invalid request: empty or malformed URL")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrResponseTooLarge     = errors.New("response body exceeds size limit")
	ErrMalformedJSON        = errors.New("malformed JSON document")
	ErrMissingResults       = errors.New("missing response.results array")
	ErrAPIStatus            = errors.New("content API reported an error")
)

// HTTPError is returned when the server answers with a status other than 200.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatusCode, e.StatusCode)
}

// Is matches ErrUnexpectedStatusCode.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnexpectedStatusCode
}

// NetworkError wraps DNS, connection and timeout failures.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Cause, &t) {
		return t.Timeout()
	}

	return false
}

// ParseError reports a document that could not be turned into articles.
// It is a classification, not a fatal condition.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
