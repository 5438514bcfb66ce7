package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Report summarises a book checked by Verify.
type Report struct {
	Title    string
	Authors  []string
	Chapters int

	// Characters is the length in bytes of the extracted chapter text.
	Characters int
}

// Verify opens the ePub at path and checks the properties a Writer
// guarantees: mimetype first and stored, a title, one NCX entry per spine
// item in play order, and well-formed chapter documents. Every failure wraps
// ErrInvalidEPub.
func Verify(path string) (Report, error) {
	b, err := Open(path)
	if err != nil {
		return Report{}, err
	}
	defer b.Close()
	return verifyBook(b)
}

// VerifyReader is like Verify for a book held in r, such as a Writer's
// output buffered in memory before it is committed to disk.
func VerifyReader(r io.ReaderAt, size int64) (Report, error) {
	b, err := NewReader(r, size)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", err, ErrInvalidEPub)
	}
	return verifyBook(b)
}

func verifyBook(b *Book) (Report, error) {
	if w := b.Warnings(); len(w) > 0 {
		return Report{}, fmt.Errorf("epub: %s: %w", strings.Join(w, "; "), ErrInvalidEPub)
	}

	md := b.Metadata()
	if len(md.Titles) == 0 {
		return Report{}, fmt.Errorf("epub: missing dc:title: %w", ErrInvalidEPub)
	}
	rep := Report{Title: md.Titles[0]}
	for _, a := range md.Authors {
		rep.Authors = append(rep.Authors, a.Name)
	}

	chapters := b.Chapters()
	toc := b.TOC()
	if len(toc) != len(chapters) {
		return Report{}, fmt.Errorf("epub: NCX has %d entries for %d spine items: %w", len(toc), len(chapters), ErrInvalidEPub)
	}
	for i, item := range toc {
		if item.SpineIndex != i {
			return Report{}, fmt.Errorf("epub: NCX entry %q points at spine index %d, want %d: %w", item.Title, item.SpineIndex, i, ErrInvalidEPub)
		}
		if item.PlayOrder != i+1 {
			return Report{}, fmt.Errorf("epub: NCX entry %q has playOrder %d, want %d: %w", item.Title, item.PlayOrder, i+1, ErrInvalidEPub)
		}
	}
	for _, ch := range chapters {
		raw, err := ch.RawContent()
		if err == nil {
			err = checkWellFormed(raw)
		}
		if err != nil {
			return Report{}, fmt.Errorf("epub: chapter %s: %v: %w", ch.Href, err, ErrInvalidEPub)
		}
		text, err := extractText(raw)
		if err != nil {
			return Report{}, fmt.Errorf("epub: chapter %s: %v: %w", ch.Href, err, ErrInvalidEPub)
		}
		rep.Characters += len(text)
	}

	rep.Chapters = len(chapters)
	return rep, nil
}

// checkWellFormed runs data through a strict XML decoder. The decoder
// accepts repeated attributes, so those are checked here.
func checkWellFormed(data []byte) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if el, ok := tok.(xml.StartElement); ok {
			if err := checkUniqueAttrs(el); err != nil {
				return err
			}
		}
	}
}

func checkUniqueAttrs(el xml.StartElement) error {
	seen := make(map[xml.Name]bool, len(el.Attr))
	for _, a := range el.Attr {
		if seen[a.Name] {
			return fmt.Errorf("element <%s> repeats attribute %s", el.Name.Local, a.Name.Local)
		}
		seen[a.Name] = true
	}
	return nil
}
