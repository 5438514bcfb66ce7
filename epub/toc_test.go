package epub

import "testing"

func TestParseNCX_Nested(t *testing.T) {
	ncxData := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text> Part I </text></navLabel>
      <content src="text/part1.xhtml"/>
      <navPoint id="np2" playOrder="2">
        <navLabel><text>Chapter 1</text></navLabel>
        <content src="text/part1.xhtml#ch1"/>
      </navPoint>
    </navPoint>
    <navPoint id="np3" playOrder="x">
      <navLabel><text>Escape</text></navLabel>
      <content src="../../outside.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`)

	items, err := parseNCX(ncxData, "OEBPS/toc.ncx")
	if err != nil {
		t.Fatalf("parseNCX: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	part := items[0]
	if part.Title != "Part I" || part.Href != "OEBPS/text/part1.xhtml" || part.PlayOrder != 1 {
		t.Errorf("items[0] = %+v", part)
	}
	if len(part.Children) != 1 || part.Children[0].Href != "OEBPS/text/part1.xhtml#ch1" {
		t.Fatalf("children = %+v", part.Children)
	}
	if items[1].PlayOrder != 0 {
		t.Errorf("malformed playOrder parsed as %d, want 0", items[1].PlayOrder)
	}
	if items[1].Href != "" {
		t.Errorf("escaping href resolved to %q, want empty", items[1].Href)
	}

	assignSpineIndices(items, map[string]int{"OEBPS/text/part1.xhtml": 3})
	if items[0].SpineIndex != 3 || items[0].Children[0].SpineIndex != 3 {
		t.Errorf("SpineIndex = %d/%d, want 3/3", items[0].SpineIndex, items[0].Children[0].SpineIndex)
	}
	if items[1].SpineIndex != -1 {
		t.Errorf("items[1].SpineIndex = %d, want -1", items[1].SpineIndex)
	}
}

func TestParseNCX_Invalid(t *testing.T) {
	if _, err := parseNCX([]byte("<ncx><navMap>"), "toc.ncx"); err == nil {
		t.Fatal("parseNCX accepted truncated XML")
	}
}

func TestBuildTOCTitleMap_FirstWins(t *testing.T) {
	items := []TOCItem{
		{Title: "A", Href: "x.xhtml", Children: []TOCItem{{Title: "A1", Href: "x.xhtml#s1"}}},
		{Title: "B", Href: "y.xhtml"},
		{Title: "Empty"},
	}
	m := buildTOCTitleMap(items)
	if m["x.xhtml"] != "A" || m["y.xhtml"] != "B" || len(m) != 2 {
		t.Errorf("buildTOCTitleMap() = %v", m)
	}
}

func TestCopyTOCItems_Deep(t *testing.T) {
	in := []TOCItem{{Title: "A", Children: []TOCItem{{Title: "A1"}}}}
	out := copyTOCItems(in)
	out[0].Children[0].Title = "changed"
	if in[0].Children[0].Title != "A1" {
		t.Error("copyTOCItems shares children with its input")
	}
}
