package runeberg

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTitle is returned when the Metadata file has no TITLE entry.
	ErrNoTitle = errors.New("runeberg: metadata has no TITLE")

	// ErrUnknownKind is wrapped by a SyntaxError for an Articles.lst entry
	// whose kind field is not "", "index" or "-".
	ErrUnknownKind = errors.New("runeberg: unknown chapter kind")

	// ErrBadRange is wrapped by a SyntaxError for a malformed page range.
	ErrBadRange = errors.New("runeberg: malformed page range")
)

// SyntaxError reports a malformed Articles.lst line.
type SyntaxError struct {
	Line int    // 1-based line number
	Text string // the offending line, comments stripped
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("runeberg: Articles.lst:%d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
