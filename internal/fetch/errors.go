package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("fetch: unexpected HTTP status")

	// ErrUnsafePath is returned for archive entries that would be extracted
	// outside the destination directory.
	ErrUnsafePath = errors.New("fetch: unsafe archive entry path")

	// ErrEntryTooLarge is returned for archive entries exceeding the
	// extraction size limit.
	ErrEntryTooLarge = errors.New("fetch: archive entry too large")
)

// StatusError reports a download answered with a status other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
