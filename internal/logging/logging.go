// Package logging builds the program's slog logger and provides logging
// decorators for the repository and catalog interfaces.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/repository"
)

// Log formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at the given level. format is
// FormatText or FormatJSON.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}

// Level maps the verbose and quiet CLI flags to a level. quiet wins.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// Ensure LoggingFetcher implements repository.Fetcher.
var _ repository.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   repository.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next repository.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Ensure LoggingLoader implements catalog.Loader.
var _ catalog.Loader = (*LoggingLoader)(nil)

// LoggingLoader wraps a catalog Loader, logging failed repositories at
// warn level and successful ones at debug level.
type LoggingLoader struct {
	next   catalog.Loader
	logger *slog.Logger
}

// NewLoggingLoader creates a new LoggingLoader.
func NewLoggingLoader(next catalog.Loader, logger *slog.Logger) *LoggingLoader {
	return &LoggingLoader{next: next, logger: logger}
}

// Fetch delegates to the wrapped loader and logs the operation.
func (l *LoggingLoader) Fetch(ctx context.Context, ref string) (data any, err error) {
	defer func(begin time.Time) {
		if err != nil {
			l.logger.Warn("load repository",
				"repository", ref,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		l.logger.Debug("load repository",
			"repository", ref,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return l.next.Fetch(ctx, ref)
}
