package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("runepub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// clearEnv unsets every variable Parse reads so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RUNEPUB_HOST", "RUNEPUB_HOME", "RUNEPUB_OUT_DIR", "RUNEPUB_LANGUAGE",
		"RUNEPUB_HTTP_TIMEOUT", "RUNEPUB_CLEAN", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/home/reader")

	cfg, err := Parse(newFlagSet(), []string{"-i", "fstal", "-a", "Johan Ludvig Runeberg"})
	require.NoError(t, err)

	want := Config{
		BookID:      "fstal",
		Author:      "Johan Ludvig Runeberg",
		Host:        "http://runeberg.org",
		Home:        filepath.Join("/home/reader", ".runepub"),
		OutDir:      ".",
		Language:    "en-US",
		HTTPTimeout: 5 * time.Minute,
		LogLevel:    "info",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(".", "fstal.epub"), cfg.OutputPath())
}

func TestParse_EnvThenFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("RUNEPUB_HOST", "http://mirror.example/")
	t.Setenv("RUNEPUB_HOME", "/var/cache/runepub")
	t.Setenv("RUNEPUB_OUT_DIR", "/books")
	t.Setenv("RUNEPUB_LANGUAGE", "sv")
	t.Setenv("RUNEPUB_HTTP_TIMEOUT", "30s")
	t.Setenv("RUNEPUB_CLEAN", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse(newFlagSet(), []string{"--id", " fstal ", "--author", "Runeberg", "--lang", "fi", "-o", "/out"})
	require.NoError(t, err)

	assert.Equal(t, "fstal", cfg.BookID)
	assert.Equal(t, "http://mirror.example", cfg.Host)
	assert.Equal(t, "/var/cache/runepub", cfg.Home)
	assert.Equal(t, "/out", cfg.OutDir)
	assert.Equal(t, "fi", cfg.Language)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Clean)
	assert.Equal(t, filepath.Join("/out", "fstal.epub"), cfg.OutputPath())
}

func TestParse_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RUNEPUB_HTTP_TIMEOUT", "soon")

	_, err := Parse(newFlagSet(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestParse_UnknownFlag(t *testing.T) {
	clearEnv(t)
	_, err := Parse(newFlagSet(), []string{"--bogus"})
	require.Error(t, err)
}

func TestParse_Help(t *testing.T) {
	clearEnv(t)
	_, err := Parse(newFlagSet(), []string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestValidate(t *testing.T) {
	valid := Config{BookID: "fstal", Author: "Runeberg", Host: "http://runeberg.org"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   []error
	}{
		{"missing id", func(c *Config) { c.BookID = "" }, []error{ErrMissingID}},
		{"missing author", func(c *Config) { c.Author = "" }, []error{ErrMissingAuthor}},
		{"missing both", func(c *Config) { c.BookID, c.Author = "", "" }, []error{ErrMissingID, ErrMissingAuthor}},
		{"path id", func(c *Config) { c.BookID = "../etc" }, []error{ErrInvalidID}},
		{"dot id", func(c *Config) { c.BookID = ".." }, []error{ErrInvalidID}},
		{"missing host", func(c *Config) { c.Host = "" }, []error{ErrMissingHost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}
