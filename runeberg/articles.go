package runeberg

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ArticlesFile is the name of the chapter index at the archive root.
const ArticlesFile = "Articles.lst"

// Kind classifies an Articles.lst entry.
type Kind int

const (
	// KindRegular chapters may delimit their text with <chapter> markers.
	KindRegular Kind = iota + 1

	// KindIndex chapters (tables of contents, registers) keep every line
	// of their pages.
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindIndex:
		return "index"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// PageRange is an inclusive interval of page numbers.
type PageRange struct {
	First int
	Last  int
}

// Len returns the number of pages in r.
func (r PageRange) Len() int {
	return r.Last - r.First + 1
}

func (r PageRange) String() string {
	if r.First == r.Last {
		return strconv.Itoa(r.First)
	}
	return strconv.Itoa(r.First) + "-" + strconv.Itoa(r.Last)
}

// Article is one chapter listed in Articles.lst.
type Article struct {
	Kind   Kind
	Index  int // zero-based position among accepted articles
	Title  string
	Ranges []PageRange
}

// Pages returns the total number of pages covered by the article.
func (a Article) Pages() int {
	n := 0
	for _, r := range a.Ranges {
		n += r.Len()
	}
	return n
}

// ParseArticles reads an Articles.lst index.
//
// Text after "#" is a comment. Blank lines and lines without "|" are
// ignored. Other lines have the form "kind|title|ranges": an empty kind is
// a regular chapter, "index" an index chapter, and "-" a sub-chapter that
// is already covered by its parent and therefore skipped. Ranges are
// whitespace-separated "first-last" or single page tokens.
func ParseArticles(r io.Reader) ([]Article, error) {
	var articles []Article
	sc := newLineScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := decodeText(sc.Bytes())
		line, _, _ = strings.Cut(line, "#")
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "|") {
			continue
		}

		fields := strings.SplitN(line, "|", 3)
		if len(fields) != 3 {
			return nil, &SyntaxError{Line: lineNo, Text: line, Err: fmt.Errorf("want 3 fields, got %d", len(fields))}
		}

		var kind Kind
		switch strings.TrimSpace(fields[0]) {
		case "":
			kind = KindRegular
		case "index":
			kind = KindIndex
		case "-":
			continue
		default:
			return nil, &SyntaxError{Line: lineNo, Text: line, Err: ErrUnknownKind}
		}

		var ranges []PageRange
		for _, tok := range strings.Fields(fields[2]) {
			pr, err := ParseRange(tok)
			if err != nil {
				return nil, &SyntaxError{Line: lineNo, Text: line, Err: err}
			}
			ranges = append(ranges, pr)
		}

		articles = append(articles, Article{
			Kind:   kind,
			Index:  len(articles),
			Title:  strings.TrimSpace(fields[1]),
			Ranges: ranges,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("runeberg: read %s: %w", ArticlesFile, err)
	}
	return articles, nil
}

// ParseRange parses "first-last" or a single page number "n", which stands
// for "n-n".
func ParseRange(tok string) (PageRange, error) {
	firstStr, lastStr, isRange := strings.Cut(tok, "-")
	if !isRange {
		lastStr = firstStr
	}
	first, err := strconv.Atoi(firstStr)
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", ErrBadRange, tok)
	}
	last, err := strconv.Atoi(lastStr)
	if err != nil {
		return PageRange{}, fmt.Errorf("%w: %q", ErrBadRange, tok)
	}
	if first < 0 || last < first {
		return PageRange{}, fmt.Errorf("%w: %q", ErrBadRange, tok)
	}
	return PageRange{First: first, Last: last}, nil
}
