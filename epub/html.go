package epub

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags insert a line break during text extraction.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags hide their content from text extraction.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Title:  true,
}

var selfClosingSkipTagPattern = regexp.MustCompile(`(?is)<(script|style|title)\b([^>]*)/>`)

// normalizeSelfClosingSkipTags expands <script/> style tags, which the HTML
// tokenizer would otherwise treat as unterminated raw text elements.
func normalizeSelfClosingSkipTags(htmlData []byte) []byte {
	if !selfClosingSkipTagPattern.Match(htmlData) {
		return htmlData
	}
	return selfClosingSkipTagPattern.ReplaceAll(htmlData, []byte(`<$1$2></$1>`))
}

// extractText extracts the plain text content from HTML data.
func extractText(htmlData []byte) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(normalizeSelfClosingSkipTags(htmlData)))

	var buf strings.Builder
	skipDepth := 0
	lastWasNewline := true

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.TrimSpace(buf.String()), nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if tt == html.StartTagToken && skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth == 0 && blockTags[a] && buf.Len() > 0 && !lastWasNewline {
				buf.WriteByte('\n')
				lastWasNewline = true
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if skipTags[atom.Lookup(tn)] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := collapseWhitespace(string(tokenizer.Text())); text != "" {
				buf.WriteString(text)
				lastWasNewline = strings.HasSuffix(text, "\n")
			}
		}
	}
}

// collapseWhitespace replaces whitespace runs with a single space and returns
// "" for all-whitespace input. Leading and trailing runs are kept as one
// space so inline elements stay separated.
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isWhitespace(rune(s[0])) {
		out = " " + out
	}
	if isWhitespace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// rawTextTags are serialised by html.Render without escaping their text.
var rawTextTags = map[atom.Atom]bool{
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Noscript:  true,
	atom.Plaintext: true,
	atom.Xmp:       true,
}

// sanitizeNode cleans the subtree rooted at n for inclusion in a chapter.
// <script> and <style> elements are removed. Elements unknown to HTML5
// (such as Runeberg's <chapter> markers), SVG and MathML elements, and
// raw text elements are replaced by their children, so their text is
// escaped on output. Attributes are reduced to unique, unprefixed names
// with safe values, and paragraphs left without content are dropped.
func sanitizeNode(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
			continue
		case c.Type != html.ElementNode:
			continue
		case c.DataAtom == atom.Script || c.DataAtom == atom.Style:
			n.RemoveChild(c)
			continue
		case c.DataAtom == 0 || c.Namespace != "" || rawTextTags[c.DataAtom]:
			first := c.FirstChild
			unwrapNode(c)
			if first != nil {
				next = first
			}
			continue
		}

		stripEventAttributes(c)
		sanitizeNode(c)
		if c.DataAtom == atom.P && isBlank(c) {
			n.RemoveChild(c)
		}
	}
}

// unwrapNode replaces n by its children.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// isBlank reports whether n holds only whitespace text.
func isBlank(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

// attrNamePattern matches attribute names that are valid XML names
// without a namespace prefix.
var attrNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)

// stripEventAttributes removes event handler attributes (on*), href/src
// values with unsafe URI schemes, namespaced or non-XML attribute names,
// and repeated attributes. The first occurrence of a name wins.
func stripEventAttributes(n *html.Node) {
	seen := make(map[string]bool, len(n.Attr))
	cleaned := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace != "" || !attrNamePattern.MatchString(attr.Key) || seen[attr.Key] {
			continue
		}
		seen[attr.Key] = true
		if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
			continue
		}
		if (attr.Key == "href" || attr.Key == "src") && !isSafeURI(attr.Val) {
			continue
		}
		cleaned = append(cleaned, attr)
	}
	n.Attr = cleaned
}

// isSafeURI accepts relative references, fragments, http(s), mailto and
// data:image URIs.
func isSafeURI(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" || strings.HasPrefix(v, "#") {
		return true
	}

	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	case "data":
		return strings.HasPrefix(strings.ToLower(v), "data:image/")
	default:
		return false
	}
}
