// Package repository validates and reads catalog repositories, either
// local JSON files or JSON documents served over HTTP(S).
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/types"
)

// StatusOK is the detail reported for a valid repository.
const StatusOK = "OK"

// Classify reports whether ref names a remote or a local repository.
// Only the http:// and https:// prefixes mark a reference as remote.
func Classify(ref string) types.RepositoryKind {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return types.RepositoryKindRemote
	}
	return types.RepositoryKindLocal
}

// Ensure Validator implements catalog.Loader at compile time.
var _ catalog.Loader = (*Validator)(nil)

// Validator checks that repositories are reachable and parseable, and
// returns their parsed payloads.
type Validator struct {
	fetcher  Fetcher
	cacheDir string
	logger   *slog.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithCacheDir stores a copy of every successfully fetched remote payload
// under dir, named after the last element of the URL path.
func WithCacheDir(dir string) ValidatorOption {
	return func(v *Validator) {
		v.cacheDir = dir
	}
}

// WithLogger sets the logger used for non-fatal problems such as cache
// write failures.
func WithLogger(l *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = l
	}
}

// NewValidator returns a Validator using fetcher for remote repositories.
func NewValidator(fetcher Fetcher, opts ...ValidatorOption) *Validator {
	v := &Validator{
		fetcher: fetcher,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether ref can be read and parsed as JSON. On failure
// detail is "File not found" or "Invalid format: <cause>"; on success it
// is StatusOK.
func (v *Validator) Validate(ctx context.Context, ref string) (bool, string) {
	if _, err := v.Fetch(ctx, ref); err != nil {
		return false, catalog.ErrorMessage(err)
	}
	return true, StatusOK
}

// Fetch reads ref and returns its parsed JSON payload. Errors carry the
// ENOTFOUND code for a missing local file and EINVALIDFORMAT for every
// read, network, status or parse failure.
func (v *Validator) Fetch(ctx context.Context, ref string) (any, error) {
	var (
		raw []byte
		err error
	)
	if Classify(ref).IsRemote() {
		raw, err = v.fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "Invalid format: %v", err)
		}
	} else {
		raw, err = os.ReadFile(ref)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, catalog.Errorf(catalog.ENOTFOUND, "File not found")
		} else if err != nil {
			return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "Invalid format: %v", err)
		}
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "Invalid format: %v", err)
	}

	if Classify(ref).IsRemote() && v.cacheDir != "" {
		if err := v.writeCache(ref, data); err != nil {
			v.logger.Warn("cache remote repository", "url", ref, "err", err)
		}
	}

	return data, nil
}

// decodeJSON parses a single JSON document. Numbers are kept as
// json.Number so large integers survive exactly.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return data, nil
}

// CachePath returns the file a remote repository is cached to, or "" if
// caching is disabled or ref is local.
func (v *Validator) CachePath(ref string) string {
	if v.cacheDir == "" || Classify(ref).IsLocal() {
		return ""
	}
	name := "repository.json"
	if u, err := url.Parse(ref); err == nil {
		if base := path.Base(u.Path); base != "/" && base != "." && base != "" {
			name = base
		}
	}
	return filepath.Join(v.cacheDir, name)
}

func (v *Validator) writeCache(ref string, data any) error {
	if err := os.MkdirAll(v.cacheDir, 0755); err != nil {
		return err
	}
	content, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(v.CachePath(ref), content, 0644)
}
