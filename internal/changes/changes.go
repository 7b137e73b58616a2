// Package changes detects modifications to the repository config file and
// to the content of local repositories.
package changes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/repository"
)

// ContentHash returns a stable digest of a parsed JSON payload. Map keys
// are serialized in sorted order, so two payloads that differ only in key
// order hash the same.
func ContentHash(data any) (string, error) {
	canonical, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("canonicalizing payload: %w", err)
	}
	return fmt.Sprintf("%x", xxhash.Sum64(canonical)), nil
}

// Change describes what a watch tick observed.
type Change struct {
	Config       bool
	Repositories bool
}

// Any reports whether anything changed.
func (c Change) Any() bool {
	return c.Config || c.Repositories
}

// Detector remembers the config modification time and the last digest
// of every local repository it has inspected.
type Detector struct {
	path   string
	loader catalog.Loader
	logger *slog.Logger

	mu     sync.Mutex
	mtime  time.Time
	hashes map[string]string
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a detector for the config file at configPath. The
// current modification time is recorded so the first ConfigChanged call
// only reports edits made after construction.
func NewDetector(configPath string, loader catalog.Loader, opts ...Option) *Detector {
	d := &Detector{
		path:   configPath,
		loader: loader,
		logger: slog.New(slog.DiscardHandler),
		hashes: make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	if info, err := os.Stat(configPath); err == nil {
		d.mtime = info.ModTime()
	}
	return d
}

// ConfigChanged reports whether the config file's modification time
// differs from the last one observed, and records the new time.
func (d *Detector) ConfigChanged() (bool, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return false, fmt.Errorf("stat config: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if info.ModTime().Equal(d.mtime) {
		return false, nil
	}
	d.mtime = info.ModTime()
	return true, nil
}

// AnyRepositoryChanged hashes every local repository in refs and reports
// whether any digest differs from the one previously recorded. The first
// observation of a repository seeds its digest without signaling. All
// repositories are inspected on every call, so one change never hides
// another. Repositories that fail to load are skipped. Remote
// repositories are never polled.
func (d *Detector) AnyRepositoryChanged(ctx context.Context, refs []string) bool {
	changed := false
	for _, ref := range refs {
		if repository.Classify(ref).IsRemote() {
			continue
		}

		data, err := d.loader.Fetch(ctx, ref)
		if err != nil {
			d.logger.Debug("skipping repository", "repository", ref, "err", err)
			continue
		}
		digest, err := ContentHash(data)
		if err != nil {
			continue
		}

		if d.record(ref, digest) {
			changed = true
		}
	}
	return changed
}

// record stores digest for ref and reports whether it replaced a
// different, previously seen digest.
func (d *Detector) record(ref, digest string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, seen := d.hashes[ref]
	d.hashes[ref] = digest
	return seen && prev != digest
}

// Check runs one detection pass: the config first, then the repositories
// returned by refs. refs is called after the config check, so it may
// re-read the config file to pick up an edit.
func (d *Detector) Check(ctx context.Context, refs func() []string) Change {
	var c Change

	configChanged, err := d.ConfigChanged()
	if err != nil {
		d.logger.Warn("config check failed", "path", d.path, "err", err)
	}
	c.Config = configChanged
	c.Repositories = d.AnyRepositoryChanged(ctx, refs())

	return c
}

// Watch calls Check every interval until ctx is cancelled, invoking
// onChange whenever something changed.
func (d *Detector) Watch(ctx context.Context, interval time.Duration, refs func() []string, onChange func(Change)) error {
	// Seed digests so the first tick does not report every repository.
	d.AnyRepositoryChanged(ctx, refs())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c := d.Check(ctx, refs)
			if c.Any() {
				d.logger.Info("change detected", "config", c.Config, "repositories", c.Repositories)
				onChange(c)
			}
		}
	}
}
