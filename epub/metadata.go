package epub

import "strings"

// extractMetadata converts the raw OPF metadata into the public Metadata struct.
// Blank values are dropped.
func extractMetadata(opf *opfPackage) Metadata {
	md := Metadata{Version: opf.Version}
	om := &opf.Metadata

	for _, t := range om.Titles {
		if v := strings.TrimSpace(t.Value); v != "" {
			md.Titles = append(md.Titles, v)
		}
	}

	for _, c := range om.Creators {
		name := strings.TrimSpace(c.Value)
		if name == "" {
			continue
		}
		md.Authors = append(md.Authors, Author{Name: name, FileAs: c.FileAs, Role: c.Role})
	}

	for _, l := range om.Languages {
		if v := strings.TrimSpace(l.Value); v != "" {
			md.Language = append(md.Language, v)
		}
	}

	for _, id := range om.Identifiers {
		v := strings.TrimSpace(id.Value)
		if v == "" {
			continue
		}
		md.Identifiers = append(md.Identifiers, Identifier{Value: v, Scheme: id.Scheme, ID: id.ID})
	}

	return md
}

// identifierScheme returns the opf:scheme written for an identifier value.
func identifierScheme(id string) string {
	if strings.HasPrefix(strings.ToLower(id), "urn:uuid:") {
		return "UUID"
	}
	return ""
}

func copyMetadata(in Metadata) Metadata {
	out := in
	out.Titles = append([]string(nil), in.Titles...)
	out.Authors = append([]Author(nil), in.Authors...)
	out.Language = append([]string(nil), in.Language...)
	out.Identifiers = append([]Identifier(nil), in.Identifiers...)
	return out
}
