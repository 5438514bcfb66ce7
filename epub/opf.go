package epub

import (
	"encoding/xml"
	"fmt"
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"

	xhtmlMediaType = "application/xhtml+xml"
	ncxMediaType   = "application/x-dtbncx+xml"

	// ncxID is the manifest id of the NCX document, referenced by the spine.
	ncxID = "ncx"

	// bookIDRef is the xml id of the dc:identifier named by unique-identifier.
	bookIDRef = "bookid"
)

// opfPackage represents the root <package> element of an OPF file as read.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

// opfMetadata holds the Dublin Core elements used by this package.
type opfMetadata struct {
	Titles      []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators    []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
}

// opfDCElement holds a Dublin Core element with its ePub 2 OPF attributes.
type opfDCElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	FileAs string `xml:"file-as,attr"`
	Role   string `xml:"role,attr"`
	Scheme string `xml:"scheme,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// parseOPF parses the OPF file content and returns the parsed package structure.
func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

// buildManifestMap indexes the manifest by item id.
func buildManifestMap(manifest opfManifest) map[string]*manifestItem {
	byID := make(map[string]*manifestItem, len(manifest.Items))
	for _, item := range manifest.Items {
		byID[item.ID] = &manifestItem{
			ID:        item.ID,
			Href:      item.Href,
			MediaType: item.MediaType,
		}
	}
	return byID
}

// buildSpine resolves each <itemref> against the manifest. Unresolved
// references keep an empty Href.
func buildSpine(spine opfSpine, manifestByID map[string]*manifestItem) []spineItem {
	items := make([]spineItem, 0, len(spine.ItemRefs))
	for _, ref := range spine.ItemRefs {
		si := spineItem{IDRef: ref.IDRef}
		if mi, ok := manifestByID[ref.IDRef]; ok {
			si.ID = mi.ID
			si.Href = mi.Href
			si.MediaType = mi.MediaType
		}
		items = append(items, si)
	}
	return items
}

// --- package document as written ---

// packageDoc is the <package> element emitted by Writer. Dublin Core and
// OPF prefixes are spelled out literally since encoding/xml cannot bind
// prefixes on its own.
type packageDoc struct {
	XMLName          xml.Name        `xml:"package"`
	Xmlns            string          `xml:"xmlns,attr"`
	Version          string          `xml:"version,attr"`
	UniqueIdentifier string          `xml:"unique-identifier,attr"`
	Metadata         packageMetadata `xml:"metadata"`
	Items            []packageItem   `xml:"manifest>item"`
	Spine            packageSpine    `xml:"spine"`
}

type packageMetadata struct {
	XmlnsDC    string            `xml:"xmlns:dc,attr"`
	XmlnsOPF   string            `xml:"xmlns:opf,attr"`
	Title      string            `xml:"dc:title"`
	Creator    packageCreator    `xml:"dc:creator"`
	Language   string            `xml:"dc:language"`
	Identifier packageIdentifier `xml:"dc:identifier"`
}

type packageCreator struct {
	Role string `xml:"opf:role,attr"`
	Name string `xml:",chardata"`
}

type packageIdentifier struct {
	ID     string `xml:"id,attr"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type packageItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type packageSpine struct {
	Toc      string           `xml:"toc,attr"`
	ItemRefs []packageItemRef `xml:"itemref"`
}

type packageItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// newPackageDoc builds the OPF document listing chapters in reading order
// followed by the NCX.
func newPackageDoc(opts Options, chapters []ChapterRef) packageDoc {
	doc := packageDoc{
		Xmlns:            opfNamespace,
		Version:          "2.0",
		UniqueIdentifier: bookIDRef,
		Metadata: packageMetadata{
			XmlnsDC:  dcNamespace,
			XmlnsOPF: opfNamespace,
			Title:    opts.Title,
			Creator:  packageCreator{Role: "aut", Name: opts.Author},
			Language: opts.Language,
			Identifier: packageIdentifier{
				ID:     bookIDRef,
				Scheme: identifierScheme(opts.Identifier),
				Value:  opts.Identifier,
			},
		},
		Spine: packageSpine{Toc: ncxID},
	}

	for _, ch := range chapters {
		doc.Items = append(doc.Items, packageItem{ID: ch.ID(), Href: ch.FileName(), MediaType: xhtmlMediaType})
		doc.Spine.ItemRefs = append(doc.Spine.ItemRefs, packageItemRef{IDRef: ch.ID()})
	}
	doc.Items = append(doc.Items, packageItem{ID: ncxID, Href: ncxFileName, MediaType: ncxMediaType})
	return doc
}
