package runepub

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"

	"github.com/simp-lee/runepub/epub"
	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/runeberg"
)

// verifyArchive checks an assembled archive before it replaces the output.
var verifyArchive = epub.VerifyReader

// BuildResult describes an ePub written by Build.
type BuildResult struct {
	Path     string
	Title    string
	Chapters int
	Bytes    int64
}

// Build converts the archive unpacked in dir into an ePub at outPath.
// The book title comes from the archive metadata and overrides opts.Title.
// The archive is verified in memory and only then replaces outPath
// atomically, so a failed build leaves any previous file untouched.
func Build(ctx context.Context, dir, outPath string, opts epub.Options) (BuildResult, error) {
	logger := xlog.WithComponentFromContext(ctx, "build")

	book, err := runeberg.LoadBook(dir)
	if err != nil {
		return BuildResult{}, err
	}
	title, err := book.Title()
	if err != nil {
		return BuildResult{}, fmt.Errorf("runepub: %s: %w", filepath.Join(dir, runeberg.MetadataFile), err)
	}
	opts.Title = title

	w, err := epub.NewWriter(opts)
	if err != nil {
		return BuildResult{}, err
	}
	for _, a := range book.Articles {
		if err := ctx.Err(); err != nil {
			return BuildResult{}, err
		}
		lines, err := book.Chapter(a)
		if err != nil {
			return BuildResult{}, err
		}
		ref, err := w.AddChapter(a.Title, lines)
		if err != nil {
			return BuildResult{}, err
		}
		logger.Debug().
			Str(xlog.FieldChapter, ref.FileName()).
			Str(xlog.FieldTitle, ref.Title).
			Int(xlog.FieldPages, a.Pages()).
			Msg("chapter added")
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return BuildResult{}, err
	}
	if _, err := verifyArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		return BuildResult{}, fmt.Errorf("runepub: %s not replaced: %w", outPath, err)
	}
	if err := writeAtomic(outPath, buf.Bytes()); err != nil {
		return BuildResult{}, err
	}

	n := int64(buf.Len())
	res := BuildResult{Path: outPath, Title: title, Chapters: len(w.Chapters()), Bytes: n}
	logger.Info().
		Str(xlog.FieldPath, outPath).
		Int(xlog.FieldChapters, res.Chapters).
		Str(xlog.FieldSize, humanize.Bytes(uint64(n))).
		Msg("epub written")
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("runepub: create output directory: %w", err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("runepub: create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("runepub: write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("runepub: commit %s: %w", path, err)
	}
	return nil
}
