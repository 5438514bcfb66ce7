package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() { xlog.Configure(xlog.Config{}) })
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"no flags", nil, "book id is required"},
		{"missing author", []string{"-i", "fstal"}, "author is required"},
		{"missing id", []string{"--author", "Runeberg"}, "book id is required"},
		{"path in id", []string{"-i", "../x", "-a", "Runeberg"}, "single path element"},
		{"unknown flag", []string{"--bogus"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, Version+"\n", stdout)
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "runepub -i <id> -a <author>")
}

func TestRun_Converts(t *testing.T) {
	srv := testutil.NewArchiveServer(t, map[string][]byte{
		testutil.SampleBookID: testutil.ZipBytes(t, testutil.SampleBook()),
	})
	out := t.TempDir()

	code, stdout, stderr := runCLI(t,
		"-i", testutil.SampleBookID,
		"-a", "Johan Ludvig Runeberg",
		"--host", srv.URL,
		"--home", t.TempDir(),
		"-o", out,
		"--log-level", "error",
	)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, filepath.Join(out, testutil.SampleBookID+".epub"))
	assert.Contains(t, stdout, "3 chapters")
	assert.FileExists(t, filepath.Join(out, testutil.SampleBookID+".epub"))
}

func TestRun_Failure(t *testing.T) {
	srv := testutil.NewArchiveServer(t, nil)
	out := t.TempDir()

	code, stdout, stderr := runCLI(t,
		"-i", "missing",
		"-a", "Nobody",
		"--host", srv.URL,
		"--home", t.TempDir(),
		"-o", out,
	)
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `"message":"conversion failed"`)
	assert.Contains(t, stderr, `"book_id":"missing"`)
	assert.NoFileExists(t, filepath.Join(out, "missing.epub"))
}
