package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrInvalidEPub indicates the file is not a valid ePub
	// (e.g., missing container.xml and no .opf file found).
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrInvalidChapter indicates a Chapter handle is invalid
	// (for example, a zero-value Chapter without an associated Book).
	ErrInvalidChapter = errors.New("epub: invalid chapter handle")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrMissingTitle is returned by NewWriter when Options.Title is blank.
	ErrMissingTitle = errors.New("epub: book title is required")

	// ErrNoChapters is returned by Writer.WriteTo when no chapter was added.
	ErrNoChapters = errors.New("epub: book has no chapters")
)
