// Package config handles repository configuration parsing, persistence
// and location resolution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/repository"
)

// Environment variables consulted by FindConfig, in order.
const (
	EnvConfig       = "NEOSEARCH_CONFIG"
	EnvConfigLegacy = "CONFIG_FILE_PATH"
)

// DefaultFileName is the config file created and searched for in the
// working directory.
const DefaultFileName = "config.yaml"

// Config lists the repositories to aggregate. Local files are always
// listed before URLs when the two are presented as one sequence.
type Config struct {
	LocalFiles []string `yaml:"local_files" toml:"local_files" json:"local_files"`
	URLs       []string `yaml:"urls" toml:"urls" json:"urls"`
}

// Repositories returns local files followed by URLs. The 1-based position
// in this list is the repository number shown to users.
func (c *Config) Repositories() []string {
	out := make([]string, 0, len(c.LocalFiles)+len(c.URLs))
	out = append(out, c.LocalFiles...)
	return append(out, c.URLs...)
}

// Contains reports whether ref is configured in either list.
func (c *Config) Contains(ref string) bool {
	return slices.Contains(c.LocalFiles, ref) || slices.Contains(c.URLs, ref)
}

// Add appends ref to urls if it is an HTTP(S) URL and to local_files
// otherwise. Adding a repository twice is an ECONFLICT error.
func (c *Config) Add(ref string) error {
	if ref == "" {
		return catalog.Errorf(catalog.EINVALIDINPUT, "repository path required")
	}
	if c.Contains(ref) {
		return catalog.Errorf(catalog.ECONFLICT, "Repository already exists.")
	}
	if repository.Classify(ref).IsRemote() {
		c.URLs = append(c.URLs, ref)
	} else {
		c.LocalFiles = append(c.LocalFiles, ref)
	}
	return nil
}

// Remove deletes ref from whichever list holds it.
func (c *Config) Remove(ref string) error {
	if i := slices.Index(c.LocalFiles, ref); i >= 0 {
		c.LocalFiles = slices.Delete(c.LocalFiles, i, i+1)
		return nil
	}
	if i := slices.Index(c.URLs, ref); i >= 0 {
		c.URLs = slices.Delete(c.URLs, i, i+1)
		return nil
	}
	return catalog.Errorf(catalog.ENOTFOUND, "Repository not found.")
}

// RemoveAt deletes the repository at the given 1-based position of
// Repositories and returns it.
func (c *Config) RemoveAt(n int) (string, error) {
	repos := c.Repositories()
	if n < 1 || n > len(repos) {
		return "", catalog.Errorf(catalog.EINVALIDINPUT, "Invalid repository number.")
	}
	ref := repos[n-1]
	return ref, c.Remove(ref)
}

// FindConfig resolves the config file path. An explicit path wins, then
// the NEOSEARCH_CONFIG and CONFIG_FILE_PATH environment variables, then
// the standard locations. A missing file is an ENOTFOUND error.
func FindConfig(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", catalog.Errorf(catalog.ENOTFOUND, "Configuration file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	for _, env := range []string{EnvConfig, EnvConfigLegacy} {
		if envPath := os.Getenv(env); envPath != "" {
			if _, err := os.Stat(envPath); err == nil {
				return envPath, nil
			}
		}
	}

	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", catalog.Errorf(catalog.ENOTFOUND, "Configuration file not found.")
}

// SearchPaths returns the candidate config files in order of precedence:
// the working directory, $XDG_CONFIG_HOME/neosearch, then ~/.neosearch.
func SearchPaths() []string {
	fileNames := []string{
		"config.yaml",
		"config.yml",
		"config.toml",
		"config.json",
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		dirs = append(dirs, filepath.Join(xdgConfig, "neosearch"), filepath.Join(home, ".neosearch"))
	}

	var paths []string
	for _, dir := range dirs {
		for _, name := range fileNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// Load reads and parses the config file at path, expanding ${VAR} and
// ${VAR:-default} references.
func Load(path string) (*Config, error) {
	return load(path, parse)
}

func load(path string, parseFn func([]byte, Format) (*Config, error)) (*Config, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, catalog.Errorf(catalog.ENOTFOUND, "Configuration file not found: %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "unable to detect file format for %s", path)
	}

	cfg, err := parseFn(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path in the format implied by its extension (YAML
// for unknown extensions). References are written exactly as held in cfg,
// so a config obtained from Load loses its ${VAR} forms; use Update to
// modify a config file in place. The new content is written to a temporary file
// in the same directory and renamed over path, so an interrupted save
// leaves the previous file intact.
func Save(path string, cfg *Config) error {
	content, err := marshal(cfg, formatForPath(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// Update loads the config at path, applies fn and saves the result. fn
// sees expanded references; references it leaves in place are saved in
// their original ${VAR} form. The file is left untouched if fn returns an
// error.
func Update(path string, fn func(*Config) error) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	raw, err := load(path, decode)
	if err != nil {
		return nil, err
	}

	unexpanded := rawForms(cfg.LocalFiles, raw.LocalFiles)
	maps.Copy(unexpanded, rawForms(cfg.URLs, raw.URLs))

	if err := fn(cfg); err != nil {
		return nil, err
	}

	out := &Config{
		LocalFiles: restoreRefs(cfg.LocalFiles, unexpanded),
		URLs:       restoreRefs(cfg.URLs, unexpanded),
	}
	if err := Save(path, out); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rawForms maps each expanded reference to the form written in the file.
func rawForms(expanded, raw []string) map[string]string {
	m := make(map[string]string, len(expanded))
	for i, ref := range expanded {
		if i < len(raw) && raw[i] != ref {
			if _, ok := m[ref]; !ok {
				m[ref] = raw[i]
			}
		}
	}
	return m
}

func restoreRefs(refs []string, unexpanded map[string]string) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		if r, ok := unexpanded[ref]; ok {
			out[i] = r
		} else {
			out[i] = ref
		}
	}
	return out
}
