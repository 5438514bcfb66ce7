// Package runepub runs the download, unpack and build pipeline for one
// Runeberg book.
package runepub

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/runepub/epub"
	"github.com/simp-lee/runepub/internal/config"
	"github.com/simp-lee/runepub/internal/fetch"
	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/internal/workdir"
)

// Result summarises a completed run.
type Result struct {
	BuildResult
	Report epub.Report
}

// BookIdentifier returns the dc:identifier of the ePub built for id. The
// same host and id always give the same identifier.
func BookIdentifier(host, id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(host+"/"+id)).URN()
}

// Run downloads, unpacks, builds and verifies the book described by cfg.
// Build checks the archive before committing it; the verify stage checks
// the committed file. cfg must have passed Validate.
func Run(ctx context.Context, cfg config.Config) (Result, error) {
	ctx = xlog.ContextWithBookID(ctx, cfg.BookID)

	layout, err := workdir.New(cfg.Home, cfg.BookID)
	if err != nil {
		return Result{}, err
	}
	items := fetch.Items(cfg.Host, cfg.BookID)

	err = stage(ctx, "download", func() error {
		dl := fetch.NewDownloader(fetch.NewClient(cfg.HTTPTimeout), xlog.WithComponentFromContext(ctx, "fetch"))
		return dl.Download(ctx, layout, items)
	})
	if err != nil {
		return Result{}, err
	}

	err = stage(ctx, "unpack", func() error {
		_, err := fetch.Unpack(layout, items, xlog.WithComponentFromContext(ctx, "fetch"))
		return err
	})
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = stage(ctx, "build", func() error {
		res.BuildResult, err = Build(ctx, layout.UnpackDir(), cfg.OutputPath(), epub.Options{
			Author:     cfg.Author,
			Language:   cfg.Language,
			Identifier: BookIdentifier(cfg.Host, cfg.BookID),
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}

	err = stage(ctx, "verify", func() error {
		res.Report, err = epub.Verify(res.Path)
		if err != nil {
			return err
		}
		logger := xlog.FromContext(ctx)
		logger.Info().
			Str(xlog.FieldPath, res.Path).
			Int(xlog.FieldChapters, res.Report.Chapters).
			Int(xlog.FieldCharacters, res.Report.Characters).
			Msg("epub verified")
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if cfg.Clean {
		if err := layout.RemoveUnpackDir(); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// stage runs fn and logs its start, end and duration. Failures are left to
// the caller to report.
func stage(ctx context.Context, name string, fn func() error) error {
	logger := xlog.FromContext(ctx).With().Str(xlog.FieldStage, name).Logger()
	logger.Debug().Msg("stage started")
	start := time.Now()
	if err := fn(); err != nil {
		logger.Debug().Err(err).Dur(xlog.FieldDuration, time.Since(start)).Msg("stage failed")
		return err
	}
	logger.Info().Dur(xlog.FieldDuration, time.Since(start)).Msg("stage finished")
	return nil
}
