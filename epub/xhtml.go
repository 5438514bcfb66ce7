package epub

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const xhtmlHeader = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
`

// renderChapter returns a complete XHTML 1.1 document for one chapter.
func renderChapter(title, lang string, lines []string) ([]byte, error) {
	body, err := renderBody(lines)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xhtmlHeader)
	fmt.Fprintf(&buf, "<html xmlns=\"http://www.w3.org/1999/xhtml\" xml:lang=\"%s\">\n", html.EscapeString(lang))
	buf.WriteString("<head>\n")
	buf.WriteString("<meta http-equiv=\"Content-Type\" content=\"application/xhtml+xml; charset=utf-8\" />\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(stripInvalidXMLChars(title)))
	buf.WriteString("</head>\n\n<body>\n")
	if body != "" {
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// renderBody turns page lines into well-formed XHTML body content. Runs of
// non-blank lines become paragraphs; the markup inside them is parsed as an
// HTML fragment, sanitised and serialised again, which closes open tags,
// escapes stray ampersands and self-closes void elements.
func renderBody(lines []string) (string, error) {
	// Paragraphs are concatenated without separators: text between them
	// would make the parser reopen unclosed formatting elements at top level.
	var src strings.Builder
	for _, para := range paragraphs(lines) {
		src.WriteString("<p>")
		src.WriteString(stripInvalidXMLChars(strings.Join(para, "\n")))
		src.WriteString("</p>")
	}
	if src.Len() == 0 {
		return "", nil
	}

	parent := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src.String()), parent)
	if err != nil {
		return "", fmt.Errorf("epub: parse chapter markup: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	sanitizeNode(root)
	wrapInline(root)

	var out []string
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("epub: render chapter markup: %w", err)
		}
		out = append(out, buf.String())
	}
	return strings.Join(out, "\n"), nil
}

// flowBlocks may appear directly inside <body>.
var flowBlocks = map[atom.Atom]bool{
	atom.P:          true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Div:        true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Dl:         true,
	atom.Table:      true,
	atom.Hr:         true,
}

// wrapInline moves runs of text and inline elements directly below n into
// new paragraphs. The parser leaves such runs behind when a block element
// such as a heading closes the paragraph they started in.
func wrapInline(n *html.Node) {
	var (
		para *html.Node
		next *html.Node
	)
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && flowBlocks[c.DataAtom] {
			para = nil
			continue
		}
		if para == nil {
			if c.Type == html.TextNode {
				c.Data = strings.TrimLeft(c.Data, " \t\r\n")
				if c.Data == "" {
					n.RemoveChild(c)
					continue
				}
			}
			para = &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
			n.InsertBefore(para, c)
		}
		n.RemoveChild(c)
		para.AppendChild(c)
	}
}

// stripInvalidXMLChars drops runes outside the XML 1.0 Char production,
// such as the control characters OCR output occasionally carries.
func stripInvalidXMLChars(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// paragraphs groups consecutive non-blank lines; blank lines separate groups.
func paragraphs(lines []string) [][]string {
	var (
		out [][]string
		cur []string
	)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
