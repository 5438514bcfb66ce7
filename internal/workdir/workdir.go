// Package workdir manages the per-book directories below the runepub home.
//
//	<home>/<id>/temp        partial downloads
//	<home>/<id>/downloaded  completed archives, reused across runs
//	<home>/<id>/unpacked    extracted archive contents, rebuilt every run
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tempDirName       = "temp"
	downloadedDirName = "downloaded"
	unpackDirName     = "unpacked"
)

// ErrInvalidBookID is returned by New for ids that are not a single path element.
var ErrInvalidBookID = errors.New("workdir: invalid book id")

// Layout resolves the directories used for one book.
type Layout struct {
	root string
}

// New returns the layout of book id below home. No directory is created.
func New(home, id string) (*Layout, error) {
	if !ValidBookID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBookID, id)
	}
	abs, err := filepath.Abs(home)
	if err != nil {
		return nil, fmt.Errorf("workdir: resolve home %s: %w", home, err)
	}
	return &Layout{root: filepath.Join(abs, id)}, nil
}

// ValidBookID reports whether id can name a directory and an output file.
func ValidBookID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// Root returns <home>/<id>.
func (l *Layout) Root() string { return l.root }

// TempDir returns the directory holding partial downloads.
func (l *Layout) TempDir() string { return filepath.Join(l.root, tempDirName) }

// DownloadedDir returns the directory holding completed downloads.
func (l *Layout) DownloadedDir() string { return filepath.Join(l.root, downloadedDirName) }

// UnpackDir returns the directory archives are extracted into.
func (l *Layout) UnpackDir() string { return filepath.Join(l.root, unpackDirName) }

// DownloadedPath returns the location of a completed download.
func (l *Layout) DownloadedPath(name string) string {
	return filepath.Join(l.DownloadedDir(), name)
}

// EnsureDownloadDirs creates the temp and downloaded directories.
func (l *Layout) EnsureDownloadDirs() error {
	for _, dir := range []string{l.TempDir(), l.DownloadedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("workdir: create %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveTempDir removes the temp directory if it is empty. A non-empty or
// missing directory is left alone.
func (l *Layout) RemoveTempDir() {
	_ = os.Remove(l.TempDir())
}

// ResetUnpackDir removes any previous extraction and recreates the
// directory empty.
func (l *Layout) ResetUnpackDir() error {
	if err := l.RemoveUnpackDir(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.UnpackDir(), 0o755); err != nil {
		return fmt.Errorf("workdir: create %s: %w", l.UnpackDir(), err)
	}
	return nil
}

// RemoveUnpackDir deletes the unpack directory and its contents.
func (l *Layout) RemoveUnpackDir() error {
	if err := os.RemoveAll(l.UnpackDir()); err != nil {
		return fmt.Errorf("workdir: remove %s: %w", l.UnpackDir(), err)
	}
	return nil
}
