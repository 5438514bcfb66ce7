package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	// containerPath is the well-known location of container.xml in an ePub archive.
	containerPath = "META-INF/container.xml"

	containerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"
	opfMediaType       = "application/oebps-package+xml"
)

// containerXML models META-INF/container.xml. The same shape is decoded
// when reading and encoded when writing.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Version   string     `xml:"version,attr,omitempty"`
	Xmlns     string     `xml:"xmlns,attr,omitempty"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// newContainer returns the container document pointing at opfPath.
func newContainer(opfPath string) containerXML {
	return containerXML{
		Version:   "1.0",
		Xmlns:     containerNamespace,
		RootFiles: []rootFile{{FullPath: opfPath, MediaType: opfMediaType}},
	}
}

// parseContainer locates the OPF path in the ePub ZIP archive.
//
// META-INF/container.xml is looked up case-insensitively. Without it, the
// first entry with a ".opf" extension is used. A wrapped ErrInvalidEPub is
// returned when neither yields a path.
func parseContainer(zr *zip.Reader) (string, error) {
	if f := findFileInsensitive(zr, containerPath); f != nil {
		return parseContainerXML(f)
	}
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epub: no OPF file found in archive: %w", ErrInvalidEPub)
}

// parseContainerXML returns the full-path of the first OPF rootfile, or of
// the first non-empty rootfile when none declares the OPF media type.
func parseContainerXML(f *zip.File) (string, error) {
	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}

	var fallback string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), opfMediaType) {
			return fullPath, nil
		}
		if fallback == "" {
			fallback = fullPath
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("epub: container.xml has no usable rootfile: %w", ErrInvalidEPub)
	}
	return fallback, nil
}
