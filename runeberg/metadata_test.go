package runeberg

import (
	"errors"
	"strings"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	// "Röda rummet" and "Strindberg, Sjöberg" in ISO-8859-1.
	src := "TITLE: R\xf6da rummet\n" +
		"AUTHOR:  Strindberg, Sj\xf6berg  \n" +
		"no colon here\n" +
		"MARC: 245:a\n" +
		"TITLE: Röda rummet (andra upplagan)\n"

	md, err := ParseMetadata(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}

	tests := []struct{ key, want string }{
		{"AUTHOR", "Strindberg, Sjöberg"},
		{"MARC", "245:a"},
	}
	for _, tt := range tests {
		if got := md[tt.key]; got != tt.want {
			t.Errorf("md[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}
	if len(md) != 3 {
		t.Errorf("len(md) = %d, want 3: %v", len(md), md)
	}
}

func TestParseMetadata_LastKeyWins(t *testing.T) {
	md, err := ParseMetadata(strings.NewReader("TITLE: first\nTITLE: second\n"))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	title, err := md.Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "second" {
		t.Errorf("Title = %q, want second", title)
	}
}

func TestMetadataTitle_Missing(t *testing.T) {
	for _, md := range []Metadata{nil, {"AUTHOR": "x"}, {"TITLE": ""}} {
		if _, err := md.Title(); !errors.Is(err, ErrNoTitle) {
			t.Errorf("Title() on %v error = %v, want ErrNoTitle", md, err)
		}
	}
}
