package fetch

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/internal/workdir"
)

// maxEntrySize caps the decompressed size of a single archive entry (64 MB).
const maxEntrySize int64 = 64 * 1024 * 1024

// Unpack extracts every downloaded item into a freshly emptied unpack
// directory and returns the number of files written.
func Unpack(layout *workdir.Layout, items []Item, logger zerolog.Logger) (int, error) {
	if err := layout.ResetUnpackDir(); err != nil {
		return 0, err
	}

	total := 0
	for _, item := range items {
		src := layout.DownloadedPath(item.FileName)
		n, err := unpackArchive(src, layout.UnpackDir())
		if err != nil {
			return total, err
		}
		logger.Info().Str(xlog.FieldPath, src).Int(xlog.FieldFiles, n).Msg("archive unpacked")
		total += n
	}
	return total, nil
}

func unpackArchive(src, dst string) (int, error) {
	// Insecure names are reported entry by entry below.
	zr, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return 0, fmt.Errorf("fetch: open archive %s: %w", src, err)
	}
	defer zr.Close()

	n := 0
	for _, f := range zr.File {
		target, err := confine(dst, f.Name)
		if err != nil {
			return n, err
		}
		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, fmt.Errorf("fetch: create %s: %w", target, err)
			}
			continue
		case !mode.IsRegular():
			return n, fmt.Errorf("%w: %s is not a regular file", ErrUnsafePath, f.Name)
		}
		if err := extractFile(f, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// confine returns the location of entry name below root. Absolute names,
// backslashes and names climbing out of root are rejected.
func confine(root, name string) (string, error) {
	if strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %s contains a backslash", ErrUnsafePath, name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s is absolute", ErrUnsafePath, name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes the destination", ErrUnsafePath, name)
	}
	return filepath.Join(root, cleaned), nil
}

func extractFile(f *zip.File, target string) error {
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return fmt.Errorf("%w: %s declares %d bytes", ErrEntryTooLarge, f.Name, f.UncompressedSize64)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("fetch: create %s: %w", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("fetch: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("fetch: create %s: %w", target, err)
	}
	written, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	switch {
	case err != nil:
		err = fmt.Errorf("fetch: extract %s: %w", f.Name, err)
	case written > maxEntrySize:
		err = fmt.Errorf("%w: %s exceeds %d bytes", ErrEntryTooLarge, f.Name, maxEntrySize)
	}
	if err != nil {
		_ = os.Remove(target)
	}
	return err
}
