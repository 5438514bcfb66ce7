package log

// Canonical field name constants for structured logging.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldComponent  = "component"
	FieldBookID     = "book_id"
	FieldStage      = "stage"
	FieldPath       = "path"
	FieldURL        = "url"
	FieldBytes      = "bytes"
	FieldSize       = "size"
	FieldChapters   = "chapters"
	FieldChapter    = "chapter"
	FieldTitle      = "title"
	FieldPages      = "pages"
	FieldFiles      = "files"
	FieldCharacters = "characters"
	FieldDuration   = "duration"
)
