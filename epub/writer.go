package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const (
	// defaultLanguage is written as dc:language when Options.Language is empty.
	defaultLanguage = "en-US"

	oebpsDir = "OEBPS"
	opfPath  = oebpsDir + "/book.opf"
	ncxPath  = oebpsDir + "/" + ncxFileName
)

// Options configures the book-level metadata written by a Writer.
type Options struct {
	// Title is the dc:title and NCX docTitle. Required.
	Title string

	// Author is written as dc:creator with role "aut".
	Author string

	// Language is the dc:language tag. Defaults to "en-US".
	Language string

	// Identifier is the dc:identifier and NCX dtb:uid. Defaults to a
	// name-based UUID URN derived from Title and Author.
	Identifier string
}

// Writer assembles an ePub 2 book in memory.
//
// A Writer is not safe for concurrent use by multiple goroutines.
type Writer struct {
	opts     Options
	chapters []ChapterRef
	docs     [][]byte
}

// NewWriter returns a Writer for a book described by opts.
func NewWriter(opts Options) (*Writer, error) {
	opts.Title = strings.TrimSpace(opts.Title)
	opts.Author = strings.TrimSpace(opts.Author)
	opts.Language = strings.TrimSpace(opts.Language)
	opts.Identifier = strings.TrimSpace(opts.Identifier)

	if opts.Title == "" {
		return nil, ErrMissingTitle
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Identifier == "" {
		opts.Identifier = uuid.NewSHA1(uuid.NameSpaceURL, []byte(opts.Title+"\x00"+opts.Author)).URN()
	}
	return &Writer{opts: opts}, nil
}

// Options returns the effective options, defaults applied.
func (w *Writer) Options() Options {
	return w.opts
}

// AddChapter renders lines as the next chapter in reading order.
// Lines may carry HTML markup; blank lines separate paragraphs.
func (w *Writer) AddChapter(title string, lines []string) (ChapterRef, error) {
	ref := ChapterRef{Index: len(w.chapters), Title: strings.TrimSpace(title)}
	doc, err := renderChapter(ref.Title, w.opts.Language, lines)
	if err != nil {
		return ChapterRef{}, fmt.Errorf("epub: chapter %q: %w", ref.Title, err)
	}
	w.chapters = append(w.chapters, ref)
	w.docs = append(w.docs, doc)
	return ref, nil
}

// Chapters returns the chapters added so far.
func (w *Writer) Chapters() []ChapterRef {
	return append([]ChapterRef(nil), w.chapters...)
}

// WriteTo writes the ePub ZIP archive to out. The "mimetype" entry comes
// first and is stored uncompressed; everything else is deflated.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if len(w.chapters) == 0 {
		return 0, ErrNoChapters
	}

	container, err := marshalXML(newContainer(opfPath))
	if err != nil {
		return 0, err
	}
	opf, err := marshalXML(newPackageDoc(w.opts, w.chapters))
	if err != nil {
		return 0, err
	}
	ncx, err := marshalXML(newNCXDocument(w.opts, w.chapters))
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: out}
	zw := zip.NewWriter(cw)
	if err := writeStoredEntry(zw, "mimetype", []byte(expectedMimetype)); err != nil {
		return cw.n, err
	}
	entries := []struct {
		name string
		data []byte
	}{
		{containerPath, container},
		{opfPath, opf},
		{ncxPath, ncx},
	}
	for _, e := range entries {
		if err := writeZipEntry(zw, e.name, e.data); err != nil {
			return cw.n, err
		}
	}
	for i, ch := range w.chapters {
		if err := writeZipEntry(zw, oebpsDir+"/"+ch.FileName(), w.docs[i]); err != nil {
			return cw.n, err
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("epub: finish archive: %w", err)
	}
	return cw.n, nil
}

// marshalXML encodes v as an indented UTF-8 XML document.
func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("epub: encode %T: %w", v, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
