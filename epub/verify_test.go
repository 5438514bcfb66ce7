package epub

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestBookFile(t *testing.T, data []byte) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(fp, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", fp, err)
	}
	return fp
}

func TestVerify_WriterOutput(t *testing.T) {
	data := writeTestBook(t, Options{Title: "Verified", Author: "A"},
		map[string][]string{"One": {"abc"}, "Two": {"de", "", "f"}}, "One", "Two")

	rep, err := Verify(writeTestBookFile(t, data))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rep.Title != "Verified" || rep.Chapters != 2 {
		t.Errorf("Report = %+v", rep)
	}
	if len(rep.Authors) != 1 || rep.Authors[0] != "A" {
		t.Errorf("Authors = %v", rep.Authors)
	}
	// "abc" + "de\nf"
	if rep.Characters != 7 {
		t.Errorf("Characters = %d, want 7", rep.Characters)
	}
}

func TestVerifyReader(t *testing.T) {
	data := writeTestBook(t, Options{Title: "In memory"}, map[string][]string{"One": {"x"}}, "One")

	rep, err := VerifyReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("VerifyReader: %v", err)
	}
	if rep.Title != "In memory" || rep.Chapters != 1 {
		t.Errorf("Report = %+v", rep)
	}

	if _, err := VerifyReader(bytes.NewReader([]byte("not a zip")), 9); !errors.Is(err, ErrInvalidEPub) {
		t.Errorf("VerifyReader(garbage) error = %v, want ErrInvalidEPub", err)
	}
}

func TestVerify_CompressedMimetype(t *testing.T) {
	files := unzipAll(t, writeTestBook(t, Options{Title: "T"}, map[string][]string{"One": {"x"}}, "One"))

	_, err := Verify(buildTestEPubFile(t, files))
	if !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("Verify error = %v, want ErrInvalidEPub", err)
	}
	if !strings.Contains(err.Error(), "compressed") {
		t.Errorf("error %q does not mention compression", err)
	}
}

func TestVerify_Failures(t *testing.T) {
	base := unzipAll(t, writeTestBook(t, Options{Title: "T"},
		map[string][]string{"One": {"x"}, "Two": {"y"}}, "One", "Two"))

	tests := []struct {
		name   string
		mutate func(files map[string]string)
	}{
		{"malformed chapter", func(files map[string]string) {
			files["OEBPS/chapter0001.xhtml"] = "<html><body><p>open</body></html>"
		}},
		{"missing chapter", func(files map[string]string) {
			delete(files, "OEBPS/chapter0000.xhtml")
		}},
		{"missing title", func(files map[string]string) {
			files[opfPath] = strings.Replace(files[opfPath], "<dc:title>T</dc:title>", "", 1)
		}},
		{"missing ncx", func(files map[string]string) {
			delete(files, ncxPath)
		}},
		{"ncx entry dropped", func(files map[string]string) {
			ncx := files[ncxPath]
			start := strings.Index(ncx, `<navPoint id="chapter0001"`)
			end := strings.LastIndex(ncx, "</navPoint>") + len("</navPoint>")
			files[ncxPath] = ncx[:start] + ncx[end:]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := make(map[string]string, len(base))
			for k, v := range base {
				files[k] = v
			}
			tt.mutate(files)

			// buildTestEPubFile deflates mimetype, which Verify would report
			// first; check the book directly instead.
			data := zipBytes(t, files)
			b, err := NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			b.warnings = nil
			if _, err := verifyBook(b); !errors.Is(err, ErrInvalidEPub) {
				t.Errorf("verifyBook error = %v, want ErrInvalidEPub", err)
			}
		})
	}
}

func TestCheckWellFormed(t *testing.T) {
	if err := checkWellFormed([]byte(`<a><b/>x &amp; y</a>`)); err != nil {
		t.Errorf("well-formed input rejected: %v", err)
	}
	for _, in := range []string{
		`<a><b></a>`,
		`<a>x & y</a>`,
		`<a>&nbsp;</a>`,
		"<a>form\ffeed</a>",
		`<a><i class="x" class="y">z</i></a>`,
	} {
		if err := checkWellFormed([]byte(in)); err == nil {
			t.Errorf("checkWellFormed(%q) = nil, want error", in)
		}
	}
}
