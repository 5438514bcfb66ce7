package fetch

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/simp-lee/runepub/internal/testutil"
	"github.com/simp-lee/runepub/internal/workdir"
)

func newLayout(t *testing.T, id string) *workdir.Layout {
	t.Helper()
	layout, err := workdir.New(t.TempDir(), id)
	require.NoError(t, err)
	return layout
}

func TestItems(t *testing.T) {
	items := Items("http://runeberg.org", "fstal")
	require.Len(t, items, 1)
	assert.Equal(t, "http://runeberg.org/download.pl?mode=txtzip&work=fstal", items[0].URL)
	assert.Equal(t, TextArchive, items[0].FileName)

	items = Items("http://example.test", "a b&c")
	assert.Equal(t, "http://example.test/download.pl?mode=txtzip&work=a+b%26c", items[0].URL)
}

func TestDownload_FetchesOnce(t *testing.T) {
	archive := testutil.ZipBytes(t, testutil.SampleBook())
	srv := testutil.NewArchiveServer(t, map[string][]byte{testutil.SampleBookID: archive})
	layout := newLayout(t, testutil.SampleBookID)
	items := Items(srv.URL, testutil.SampleBookID)
	d := NewDownloader(srv.Client(), zerolog.Nop())

	require.NoError(t, d.Download(context.Background(), layout, items))
	got, err := os.ReadFile(layout.DownloadedPath(TextArchive))
	require.NoError(t, err)
	assert.Equal(t, archive, got)
	assert.Equal(t, 1, srv.Requests())

	_, err = os.Stat(layout.TempDir())
	assert.ErrorIs(t, err, fs.ErrNotExist, "temp dir should be removed after download")

	require.NoError(t, d.Download(context.Background(), layout, items))
	assert.Equal(t, 1, srv.Requests(), "existing archive must not be downloaded again")
}

func TestDownload_UnexpectedStatus(t *testing.T) {
	srv := testutil.NewArchiveServer(t, nil)
	layout := newLayout(t, "missing")
	d := NewDownloader(srv.Client(), zerolog.Nop())

	err := d.Download(context.Background(), layout, Items(srv.URL, "missing"))
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "status 404")

	_, err = os.Stat(layout.DownloadedPath(TextArchive))
	assert.ErrorIs(t, err, fs.ErrNotExist, "no archive may be left behind")
}

func TestDownload_Canceled(t *testing.T) {
	srv := testutil.NewArchiveServer(t, map[string][]byte{"x": []byte("zip")})
	layout := newLayout(t, "x")
	d := NewDownloader(srv.Client(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Download(ctx, layout, Items(srv.URL, "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	_, err = os.Stat(layout.DownloadedPath(TextArchive))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDownload_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := testutil.NewArchiveServer(t, map[string][]byte{"x": []byte("zip")})
	defer srv.Close()

	client := NewClient(5 * time.Second)
	defer client.CloseIdleConnections()

	d := NewDownloader(client, zerolog.Nop())
	require.NoError(t, d.Download(context.Background(), newLayout(t, "x"), Items(srv.URL, "x")))
}

func TestNewClient_Timeouts(t *testing.T) {
	c := NewClient(0)
	assert.Equal(t, defaultClientTimeout, c.Timeout)

	c = NewClient(2 * time.Second)
	assert.Equal(t, 2*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, tr.ResponseHeaderTimeout)
	assert.Equal(t, 2*time.Second, tr.TLSHandshakeTimeout)
}
