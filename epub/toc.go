package epub

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const (
	ncxNamespace = "http://www.daisy.org/z3986/2005/ncx/"
	ncxFileName  = "book.ncx"
)

// ncxDocument represents the root <ncx> element. Head and DocTitle are only
// populated when writing.
type ncxDocument struct {
	XMLName  xml.Name    `xml:"ncx"`
	Xmlns    string      `xml:"xmlns,attr,omitempty"`
	Version  string      `xml:"version,attr,omitempty"`
	Lang     string      `xml:"xml:lang,attr,omitempty"`
	Head     []ncxMeta   `xml:"head>meta,omitempty"`
	DocTitle *ncxNavText `xml:"docTitle,omitempty"`
	NavMap   ncxNavMap   `xml:"navMap"`
}

// ncxMeta is a <meta name content/> entry of the NCX head.
type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// ncxNavMap represents the <navMap> element containing top-level navPoints.
type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// ncxNavPoint represents a <navPoint> element which may contain nested navPoints.
type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     ncxNavText    `xml:"navLabel"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

// ncxNavText wraps the <text> child shared by navLabel and docTitle.
type ncxNavText struct {
	Text string `xml:"text"`
}

// ncxContent represents the <content> element with its src attribute.
type ncxContent struct {
	Src string `xml:"src,attr"`
}

// newNCXDocument builds a flat, depth-1 NCX for the given chapters.
func newNCXDocument(opts Options, chapters []ChapterRef) ncxDocument {
	doc := ncxDocument{
		Xmlns:   ncxNamespace,
		Version: "2005-1",
		Lang:    opts.Language,
		Head: []ncxMeta{
			{Name: "dtb:uid", Content: opts.Identifier},
			{Name: "dtb:depth", Content: "1"},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		},
		DocTitle: &ncxNavText{Text: opts.Title},
	}
	for _, ch := range chapters {
		doc.NavMap.NavPoints = append(doc.NavMap.NavPoints, ncxNavPoint{
			ID:        ch.ID(),
			PlayOrder: strconv.Itoa(ch.PlayOrder()),
			Label:     ncxNavText{Text: ch.Title},
			Content:   ncxContent{Src: ch.FileName()},
		})
	}
	return doc
}

// parseTOC reads the NCX named by the spine's toc attribute and stores the
// resulting tree in b.toc. A missing or unreadable NCX leaves an empty TOC
// and records a warning.
func (b *Book) parseTOC() {
	b.toc = []TOCItem{}

	ncxItem, ok := b.manifestByID[b.opf.Spine.Toc]
	if !ok {
		return
	}
	ncxPath := b.resolveOPFPath(ncxItem.Href)
	f := b.findFile(ncxPath)
	if f == nil {
		b.warnings = append(b.warnings, fmt.Sprintf("NCX file not found: %s", ncxPath))
		return
	}

	data, err := readZipFile(f)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("failed to read NCX file: %v", err))
		return
	}
	toc, err := parseNCX(data, ncxPath)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("failed to parse NCX file: %v", err))
		return
	}

	spineMap := make(map[string]int, len(b.spine))
	for i, si := range b.spine {
		spineMap[b.resolveOPFPath(si.Href)] = i
	}
	assignSpineIndices(toc, spineMap)
	b.toc = toc
}

// parseNCX parses NCX data and returns a tree of TOCItem. ncxPath is the
// ZIP-internal location of the NCX, used to resolve content sources.
func parseNCX(data []byte, ncxPath string) ([]TOCItem, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		return nil, fmt.Errorf("epub: parse NCX: %w", err)
	}
	return convertNavPoints(doc.NavMap.NavPoints, ncxPath), nil
}

func convertNavPoints(points []ncxNavPoint, ncxPath string) []TOCItem {
	if len(points) == 0 {
		return nil
	}

	items := make([]TOCItem, 0, len(points))
	for _, np := range points {
		item := TOCItem{
			Title:      strings.TrimSpace(np.Label.Text),
			Href:       resolveRelativePath(ncxPath, np.Content.Src),
			SpineIndex: -1,
			Children:   convertNavPoints(np.Children, ncxPath),
		}
		if n, err := strconv.Atoi(strings.TrimSpace(np.PlayOrder)); err == nil {
			item.PlayOrder = n
		}
		items = append(items, item)
	}
	return items
}

// assignSpineIndices sets SpineIndex on each item whose Href (without
// fragment) names a spine document.
func assignSpineIndices(items []TOCItem, spineMap map[string]int) {
	for i := range items {
		if idx, ok := spineMap[hrefWithoutFragment(items[i].Href)]; ok && items[i].Href != "" {
			items[i].SpineIndex = idx
		}
		assignSpineIndices(items[i].Children, spineMap)
	}
}

// hrefWithoutFragment returns the href with the fragment (#...) removed.
func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

// flattenTOCItems collects pointers to all TOCItem nodes in document order.
func flattenTOCItems(flat *[]*TOCItem, items []TOCItem) {
	for i := range items {
		*flat = append(*flat, &items[i])
		flattenTOCItems(flat, items[i].Children)
	}
}

func copyTOCItems(in []TOCItem) []TOCItem {
	if in == nil {
		return nil
	}
	out := make([]TOCItem, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Children = copyTOCItems(in[i].Children)
	}
	return out
}
