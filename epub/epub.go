package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// Book is a read-only view of an ePub file.
// Use Open or NewReader to create a Book instance.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	zip          *zip.Reader
	zipExact     map[string]*zip.File
	zipLower     map[string]*zip.File
	closer       io.Closer // non-nil only when created via Open()
	opfDir       string
	opf          *opfPackage
	manifestByID map[string]*manifestItem
	spine        []spineItem
	metadata     Metadata
	toc          []TOCItem
	chapters     []Chapter
	warnings     []string
}

// Open opens an ePub file at the given path.
// The caller must call Close when done reading from the book.
func Open(path string) (*Book, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", path, err)
	}

	b, err := initBook(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return b, nil
}

// NewReader creates a Book from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", err)
	}
	return initBook(zr, nil)
}

func initBook(zr *zip.Reader, closer io.Closer) (*Book, error) {
	b := &Book{
		zip:    zr,
		closer: closer,
	}
	b.buildZipIndex()
	b.validateMimetype()

	rootPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	b.opfDir = path.Dir(rootPath)

	opfFile := b.findFile(rootPath)
	if opfFile == nil {
		return nil, fmt.Errorf("epub: OPF file not found in archive: %s: %w", rootPath, ErrInvalidEPub)
	}
	opfData, err := readZipFile(opfFile)
	if err != nil {
		return nil, fmt.Errorf("epub: read OPF file: %w", err)
	}

	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}
	b.opf = pkg
	b.manifestByID = buildManifestMap(pkg.Manifest)
	b.spine = buildSpine(pkg.Spine, b.manifestByID)
	b.metadata = extractMetadata(pkg)
	b.parseTOC()

	return b, nil
}

// validateMimetype checks that the first ZIP entry is an uncompressed
// "mimetype" containing "application/epub+zip". Deviations are recorded as
// warnings.
func (b *Book) validateMimetype() {
	if len(b.zip.File) == 0 {
		b.warnings = append(b.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := b.zip.File[0]
	if first.Name != "mimetype" {
		b.warnings = append(b.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}
	if first.Method != zip.Store {
		b.warnings = append(b.warnings, "mimetype entry is compressed")
	}

	data, err := readZipFile(first)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if string(data) != expectedMimetype {
		b.warnings = append(b.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Book. Close is idempotent.
func (b *Book) Close() error {
	if b.closer != nil {
		err := b.closer.Close()
		b.closer = nil
		return err
	}
	return nil
}

// ReadFile reads a file from the ePub archive by its ZIP-internal path.
// The lookup falls back to a case-insensitive match.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f := b.findFile(name)
	if f == nil {
		return nil, ErrFileNotFound
	}
	return readZipFile(f)
}

func (b *Book) readFile(name string) ([]byte, error) {
	return b.ReadFile(name)
}

// buildZipIndex builds exact-match and lowercase ZIP file indexes; the
// first entry wins on duplicates.
func (b *Book) buildZipIndex() {
	b.zipExact = make(map[string]*zip.File, len(b.zip.File))
	b.zipLower = make(map[string]*zip.File, len(b.zip.File))
	for _, f := range b.zip.File {
		if _, exists := b.zipExact[f.Name]; !exists {
			b.zipExact[f.Name] = f
		}
		lower := strings.ToLower(f.Name)
		if _, exists := b.zipLower[lower]; !exists {
			b.zipLower[lower] = f
		}
	}
}

func (b *Book) findFile(name string) *zip.File {
	if f, ok := b.zipExact[name]; ok {
		return f
	}
	return b.zipLower[strings.ToLower(name)]
}

// resolveOPFPath resolves an href relative to the OPF directory.
func (b *Book) resolveOPFPath(href string) string {
	if href == "" || b.opfDir == "." {
		return href
	}
	return path.Join(b.opfDir, href)
}

// HasTOC reports whether the ePub contains a non-empty NCX.
func (b *Book) HasTOC() bool {
	return len(b.toc) > 0
}

// Metadata returns the extracted metadata from the ePub.
func (b *Book) Metadata() Metadata {
	return copyMetadata(b.metadata)
}

// Warnings returns the list of non-fatal warnings accumulated during parsing.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// TOC returns the NCX table of contents as a tree of TOCItem.
func (b *Book) TOC() []TOCItem {
	return copyTOCItems(b.toc)
}

// Chapters returns the chapters in spine order. Content is loaded lazily
// by RawContent and TextContent. Titles come from the first TOC entry
// pointing at the chapter document.
func (b *Book) Chapters() []Chapter {
	if b.chapters == nil {
		titles := buildTOCTitleMap(b.toc)
		b.chapters = make([]Chapter, 0, len(b.spine))
		for _, si := range b.spine {
			href := b.resolveOPFPath(si.Href)
			b.chapters = append(b.chapters, Chapter{
				ID:    si.ID,
				Href:  href,
				Title: titles[href],
				book:  b,
			})
		}
	}
	return append([]Chapter(nil), b.chapters...)
}

// buildTOCTitleMap maps a content path (without fragment) to the title of
// the first TOC entry referencing it.
func buildTOCTitleMap(items []TOCItem) map[string]string {
	m := make(map[string]string)
	var flat []*TOCItem
	flattenTOCItems(&flat, items)
	for _, item := range flat {
		if item.Href == "" {
			continue
		}
		filePath := hrefWithoutFragment(item.Href)
		if _, exists := m[filePath]; !exists {
			m[filePath] = item.Title
		}
	}
	return m
}
