package runeberg

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// PagesDir is the directory holding one text file per page.
const PagesDir = "Pages"

// PagePath returns the path of page n below the unpacked archive dir.
func PagePath(dir string, n int) string {
	return filepath.Join(dir, PagesDir, fmt.Sprintf("%04d.txt", n))
}

// ReadPages returns the lines of every page in ranges, in order, each
// trimmed of surrounding whitespace. A missing page is an error.
func ReadPages(dir string, ranges []PageRange) ([]string, error) {
	var lines []string
	for _, r := range ranges {
		for n := r.First; n <= r.Last; n++ {
			page, err := readPage(PagePath(dir, n))
			if err != nil {
				return nil, err
			}
			lines = append(lines, page...)
		}
	}
	return lines, nil
}

func readPage(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runeberg: read page: %w", err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(decodeText(sc.Bytes())))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("runeberg: read page %s: %w", path, err)
	}
	return lines, nil
}

// decodeText returns b as NFC-normalised UTF-8. Input that is not valid
// UTF-8 is taken to be ISO-8859-1, the encoding of older Runeberg files.
func decodeText(b []byte) string {
	if !utf8.Valid(b) {
		if dec, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
			b = dec
		}
	}
	return normalize(string(b))
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
