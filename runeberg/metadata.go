package runeberg

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// MetadataFile is the name of the metadata file at the archive root.
const MetadataFile = "Metadata"

// Metadata holds the "KEY: value" pairs of a Metadata file.
type Metadata map[string]string

// Title returns the TITLE entry.
func (m Metadata) Title() (string, error) {
	if t := m["TITLE"]; t != "" {
		return t, nil
	}
	return "", ErrNoTitle
}

// ParseMetadata reads an ISO-8859-1 encoded Metadata file. Every line
// containing a colon is split at the first one into a trimmed key and
// value; a repeated key keeps its last value.
func ParseMetadata(r io.Reader) (Metadata, error) {
	md := make(Metadata)
	sc := newLineScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		md[strings.TrimSpace(key)] = normalize(strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("runeberg: read %s: %w", MetadataFile, err)
	}
	return md, nil
}

// maxLineSize bounds a single line in any archive text file.
const maxLineSize = 1 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}
