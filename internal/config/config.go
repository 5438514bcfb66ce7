// Package config loads runepub settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/simp-lee/runepub/internal/workdir"
)

// Validation errors returned by Config.Validate.
var (
	ErrMissingID     = errors.New("config: book id is required (-id)")
	ErrMissingAuthor = errors.New("config: author is required (-author)")
	ErrInvalidID     = errors.New("config: book id must be a single path element")
	ErrMissingHost   = errors.New("config: host must not be empty")
)

// homeDirName is created below the user's home directory when no home is
// configured.
const homeDirName = ".runepub"

// Config holds all settings for one run.
type Config struct {
	BookID string
	Author string

	Host        string        `env:"RUNEPUB_HOST" envDefault:"http://runeberg.org"`
	Home        string        `env:"RUNEPUB_HOME"`
	OutDir      string        `env:"RUNEPUB_OUT_DIR" envDefault:"."`
	Language    string        `env:"RUNEPUB_LANGUAGE" envDefault:"en-US"`
	HTTPTimeout time.Duration `env:"RUNEPUB_HTTP_TIMEOUT" envDefault:"5m"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Clean       bool          `env:"RUNEPUB_CLEAN"`

	ShowVersion bool
}

// Parse loads environment defaults into a Config and then applies the
// flags in args. The result is not validated; call Validate.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.BookID, "id", cfg.BookID, "Runeberg book id")
	fs.StringVar(&cfg.BookID, "i", cfg.BookID, "Runeberg book id (shorthand)")
	fs.StringVar(&cfg.Author, "author", cfg.Author, "book author")
	fs.StringVar(&cfg.Author, "a", cfg.Author, "book author (shorthand)")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory receiving <id>.epub")
	fs.StringVar(&cfg.OutDir, "o", cfg.OutDir, "directory receiving <id>.epub (shorthand)")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "dc:language of the book")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "archive host base URL")
	fs.StringVar(&cfg.Home, "home", cfg.Home, "working directory for downloads (default $HOME/"+homeDirName+")")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "download timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Clean, "clean", cfg.Clean, "remove the unpacked archive after a successful build")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.BookID = strings.TrimSpace(cfg.BookID)
	cfg.Author = strings.TrimSpace(cfg.Author)
	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home directory: %w", err)
		}
		cfg.Home = filepath.Join(home, homeDirName)
	}
	return cfg, nil
}

// Validate reports every missing or malformed required setting.
func (c Config) Validate() error {
	var errs []error
	switch {
	case c.BookID == "":
		errs = append(errs, ErrMissingID)
	case !workdir.ValidBookID(c.BookID):
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidID, c.BookID))
	}
	if c.Author == "" {
		errs = append(errs, ErrMissingAuthor)
	}
	if c.Host == "" {
		errs = append(errs, ErrMissingHost)
	}
	return errors.Join(errs...)
}

// OutputPath returns the path of the ePub produced for c.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutDir, c.BookID+".epub")
}
