// runepub converts a Project Runeberg book into an ePub.
//
// Usage:
//
//	runepub -i <id> -a <author>
//	runepub --id <id> --author <author> [-o dir] [--clean]
//
// Exit codes:
//   - 0: ePub written and verified
//   - 1: download, unpack or build failed
//   - 2: usage error (missing or invalid flag)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/simp-lee/runepub/internal/config"
	xlog "github.com/simp-lee/runepub/internal/log"
	"github.com/simp-lee/runepub/internal/runepub"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runepub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  runepub -i <id> -a <author>")
		fmt.Fprintln(stderr, "  runepub --id <id> --author <author>")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}

	cfg, err := config.Parse(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if cfg.ShowVersion {
		fmt.Fprintln(stdout, Version)
		return exitOK
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return exitUsage
	}

	xlog.Configure(xlog.Config{Level: cfg.LogLevel, Output: stderr, Version: Version})
	logger := xlog.WithComponent("cli")

	res, err := runepub.Run(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str(xlog.FieldBookID, cfg.BookID).Msg("conversion failed")
		return exitFailure
	}
	fmt.Fprintf(stdout, "%s: %q, %d chapters\n", res.Path, res.Title, res.Chapters)
	return exitOK
}
