package epub

import "fmt"

// Metadata holds the Dublin Core metadata extracted from the OPF file.
type Metadata struct {
	// Version is the ePub specification version (e.g., "2.0", "3.0").
	Version string

	// Titles contains all dc:title values. The first entry is the primary title.
	Titles []string

	// Authors contains all dc:creator entries with their roles and file-as values.
	Authors []Author

	// Language contains all dc:language values (BCP 47 tags, e.g., "en", "sv").
	Language []string

	// Identifiers contains all dc:identifier entries (ISBN, UUID, URI, etc.).
	Identifiers []Identifier
}

// Author represents a dc:creator entry with optional file-as and role attributes.
type Author struct {
	Name   string
	FileAs string
	Role   string
}

// Identifier represents a dc:identifier entry.
type Identifier struct {
	Value  string
	Scheme string
	ID     string
}

// TOCItem represents a single navPoint of the NCX table of contents.
type TOCItem struct {
	// Title is the navLabel text.
	Title string

	// Href is the ZIP-internal content path, possibly with a fragment.
	Href string

	// PlayOrder is the parsed playOrder attribute, or 0 when absent or malformed.
	PlayOrder int

	// Children contains nested navPoints.
	Children []TOCItem

	// SpineIndex is the index into the spine that this entry points to,
	// or -1 when no spine item matches Href.
	SpineIndex int
}

// Chapter represents a spine item with methods for content access.
// Content is loaded lazily from the underlying ePub archive.
type Chapter struct {
	// Title is the chapter title derived from the TOC (empty if not in TOC).
	Title string

	// Href is the content file path within the ePub archive.
	Href string

	// ID is the manifest item ID for this chapter.
	ID string

	book bookReader
}

// bookReader is implemented by Book and used by Chapter for lazy loading.
type bookReader interface {
	readFile(path string) ([]byte, error)
}

// spineItem is an OPF <itemref> resolved against the manifest.
type spineItem struct {
	IDRef     string
	ID        string
	Href      string
	MediaType string
}

// manifestItem represents an entry in the OPF <manifest> element.
type manifestItem struct {
	ID        string
	Href      string
	MediaType string
}

// ChapterRef identifies a chapter added to a Writer.
type ChapterRef struct {
	// Index is the zero-based position of the chapter in reading order.
	Index int

	// Title is the chapter title as it appears in the NCX.
	Title string
}

// ID returns the manifest and navPoint id of the chapter.
func (c ChapterRef) ID() string {
	return fmt.Sprintf("chapter%04d", c.Index)
}

// FileName returns the chapter document name, relative to the OPF directory.
func (c ChapterRef) FileName() string {
	return c.ID() + ".xhtml"
}

// PlayOrder returns the 1-based NCX play order of the chapter.
func (c ChapterRef) PlayOrder() int {
	return c.Index + 1
}
