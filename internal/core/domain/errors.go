package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecode indicates a catalog response was received but could not be parsed.
	ErrDecode = errors.New("undecodable response")

	// ErrRepositoryClosed indicates the repository no longer accepts work.
	ErrRepositoryClosed = errors.New("repository closed")
)

// StatusError is returned by catalog adapters when the remote answered
// with a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog responded with status %d: %s", e.StatusCode, e.Message)
}

// SearchError carries an ErrorCode through APIs that return plain errors.
type SearchError struct {
	Code ErrorCode
}

func (e *SearchError) Error() string {
	return e.Code.Message()
}

// CodeForError maps a catalog error to the failure taxonomy.
// Status errors map by status code; transport and decode failures are unknown.
func CodeForError(err error) ErrorCode {
	if err == nil {
		return CodeNone
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return CodeForStatus(statusErr.StatusCode)
	}
	var searchErr *SearchError
	if errors.As(err, &searchErr) {
		return searchErr.Code
	}
	return CodeUnknown
}
