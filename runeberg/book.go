package runeberg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Book is the parsed index of an unpacked archive.
type Book struct {
	Dir      string
	Metadata Metadata
	Articles []Article
}

// Title returns the book title from its metadata.
func (b *Book) Title() (string, error) {
	return b.Metadata.Title()
}

// Chapter returns the cleaned lines of article a.
func (b *Book) Chapter(a Article) ([]string, error) {
	lines, err := ReadPages(b.Dir, a.Ranges)
	if err != nil {
		return nil, fmt.Errorf("runeberg: chapter %d %q: %w", a.Index, a.Title, err)
	}
	return ChapterBody(a.Kind, lines), nil
}

// LoadBook parses the Metadata and Articles.lst files of the archive
// unpacked in dir.
func LoadBook(dir string) (*Book, error) {
	md, err := parseFile(filepath.Join(dir, MetadataFile), ParseMetadata)
	if err != nil {
		return nil, err
	}
	articles, err := parseFile(filepath.Join(dir, ArticlesFile), ParseArticles)
	if err != nil {
		return nil, err
	}
	return &Book{Dir: dir, Metadata: md, Articles: articles}, nil
}

func parseFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("runeberg: %w", err)
	}
	defer f.Close()
	return parse(f)
}
