// Package fetch downloads Runeberg archives and unpacks them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/internal/workdir"
)

// TextArchive is the local file name of the OCR text archive.
const TextArchive = "txt.zip"

// Item is one archive to download.
type Item struct {
	URL      string
	FileName string
}

// Items returns the archives fetched for book id from host. Only the text
// archive is fetched; the page image archive at <host>/<id>.zip is not used.
func Items(host, id string) []Item {
	return []Item{{
		URL:      fmt.Sprintf("%s/download.pl?mode=txtzip&work=%s", host, url.QueryEscape(id)),
		FileName: TextArchive,
	}}
}

// Downloader fetches archives into a workdir.Layout.
type Downloader struct {
	client *http.Client
	logger zerolog.Logger
}

// NewDownloader returns a Downloader using client. A nil client gets
// NewClient(0).
func NewDownloader(client *http.Client, logger zerolog.Logger) *Downloader {
	if client == nil {
		client = NewClient(0)
	}
	return &Downloader{client: client, logger: logger}
}

// Download fetches every item not yet present in the downloaded directory.
// Bodies are streamed into the temp directory and renamed into place only
// once complete, so an interrupted run never leaves a truncated archive
// behind. The temp directory is removed afterwards when empty.
func (d *Downloader) Download(ctx context.Context, layout *workdir.Layout, items []Item) error {
	defer layout.RemoveTempDir()

	for _, item := range items {
		dst := layout.DownloadedPath(item.FileName)
		if _, err := os.Stat(dst); err == nil {
			d.logger.Info().Str(xlog.FieldPath, dst).Msg("archive already downloaded")
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("fetch: stat %s: %w", dst, err)
		}

		if err := layout.EnsureDownloadDirs(); err != nil {
			return err
		}

		start := time.Now()
		n, err := d.fetch(ctx, item.URL, dst, layout.TempDir())
		if err != nil {
			return err
		}
		d.logger.Info().
			Str(xlog.FieldURL, item.URL).
			Str(xlog.FieldPath, dst).
			Int64(xlog.FieldBytes, n).
			Str(xlog.FieldSize, humanize.Bytes(uint64(n))).
			Dur(xlog.FieldDuration, time.Since(start)).
			Msg("archive downloaded")
	}
	return nil
}

func (d *Downloader) fetch(ctx context.Context, rawURL, dst, tempDir string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch: build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	pending, err := renameio.NewPendingFile(dst, renameio.WithTempDir(tempDir), renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("fetch: create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			d.logger.Debug().Err(err).Msg("cleanup pending download")
		}
	}()

	n, err := io.Copy(pending, resp.Body)
	if err != nil {
		return n, fmt.Errorf("fetch: GET %s: read body: %w", rawURL, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("fetch: commit %s: %w", dst, err)
	}
	return n, nil
}
