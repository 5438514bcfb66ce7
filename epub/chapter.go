package epub

// RawContent reads the raw XHTML bytes of this chapter from the ePub archive.
// A leading UTF-8 BOM is stripped.
func (c Chapter) RawContent() ([]byte, error) {
	if c.book == nil {
		return nil, ErrInvalidChapter
	}
	data, err := c.book.readFile(c.Href)
	if err != nil {
		return nil, err
	}
	return stripBOM(data), nil
}

// TextContent extracts the plain text content from this chapter's XHTML.
// Block-level elements produce line breaks; script and style content is skipped.
func (c Chapter) TextContent() (string, error) {
	data, err := c.RawContent()
	if err != nil {
		return "", err
	}
	return extractText(data)
}
