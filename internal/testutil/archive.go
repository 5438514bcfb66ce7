// Package testutil builds Runeberg archives and servers for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
)

// SampleBookID is the work id served by NewArchiveServer.
const SampleBookID = "fstal"

// SampleBook returns the files of a small unpacked archive: latin-1
// Metadata, an Articles.lst with an index, two poems and a skipped
// sub-chapter, and the referenced pages.
func SampleBook() map[string]string {
	return map[string]string{
		"Metadata": "TITLE: F\xe4nrik St\xe5ls s\xe4gner\n" +
			"AUTHOR: Johan Ludvig Runeberg\n" +
			"YEAR: 1848\n",
		"Articles.lst": "# Fänrik Ståls sägner\n" +
			"index|Innehåll|0001\n" +
			"|Vårt land|0002-0003\n" +
			"-|Sista strofen|0003\n" +
			"|Fänrik Stål|0003-0004 # continues\n",
		"Pages/0001.txt": "Innehåll\n\nVårt land ... 2\nFänrik Stål ... 3\n",
		"Pages/0002.txt": "<chapter name=\"1\">\n<h2>Vårt land</h2>\n\nVårt land, vårt land, vårt fosterland,\nljud högt, o dyra ord!\n",
		"Pages/0003.txt": "Ej lyfts en höjd mot himlens rand,\n</chapter>\n<chapter name=\"2\">\n<h2>F\xe4nrik St\xe5l</h2>\n",
		"Pages/0004.txt": "Han var en gammal krigare & <i>veteran</i>\n</chapter>\n",
	}
}

// WriteTree writes files below dir, creating parent directories.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// ZipBytes returns files as a deflated ZIP archive with entries in name order.
func ZipBytes(t testing.TB, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip: create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip: close: %v", err)
	}
	return buf.Bytes()
}

// ArchiveServer serves a text archive at /download.pl the way runeberg.org
// does and counts the requests it answers.
type ArchiveServer struct {
	*httptest.Server
	requests atomic.Int64
}

// NewArchiveServer starts a server answering
// /download.pl?mode=txtzip&work=<id> with archives[id], and 404 for
// unknown ids. The server is closed when the test ends.
func NewArchiveServer(t testing.TB, archives map[string][]byte) *ArchiveServer {
	t.Helper()
	s := &ArchiveServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if r.URL.Path != "/download.pl" || r.URL.Query().Get("mode") != "txtzip" {
			http.NotFound(w, r)
			return
		}
		data, ok := archives[r.URL.Query().Get("work")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the number of requests served so far.
func (s *ArchiveServer) Requests() int {
	return int(s.requests.Load())
}
