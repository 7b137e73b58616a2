package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/output"
)

func TestRunRepoAdd(t *testing.T) {
	dir, cfgPath := setupCommand(t)

	tests := []struct {
		name      string
		ref       string
		wantCode  string
		wantLocal int
		wantURLs  int
	}{
		{name: "local file", ref: filepath.Join(dir, "extra.json"), wantLocal: 3},
		{name: "url", ref: "https://example.com/catalog.json", wantLocal: 3, wantURLs: 1},
		{name: "duplicate", ref: "https://example.com/catalog.json", wantCode: catalog.ECONFLICT, wantLocal: 3, wantURLs: 1},
		{name: "empty", ref: "", wantCode: catalog.EINVALIDINPUT, wantLocal: 3, wantURLs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := runRepoAdd(&stdout, tt.ref)

			if tt.wantCode != "" {
				if code := catalog.ErrorCode(err); code != tt.wantCode {
					t.Errorf("error code = %q, want %q (err: %v)", code, tt.wantCode, err)
				}
			} else {
				if err != nil {
					t.Fatalf("runRepoAdd failed: %v", err)
				}
				if !strings.Contains(stdout.String(), "Repository added successfully.") {
					t.Errorf("stdout = %q, missing success message", stdout.String())
				}
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if len(cfg.LocalFiles) != tt.wantLocal || len(cfg.URLs) != tt.wantURLs {
				t.Errorf("config = %d local, %d urls; want %d, %d", len(cfg.LocalFiles), len(cfg.URLs), tt.wantLocal, tt.wantURLs)
			}
		})
	}
}

func TestRunRepoRemove(t *testing.T) {
	t.Run("by reference", func(t *testing.T) {
		dir, cfgPath := setupCommand(t)
		math := filepath.Join(dir, "math.json")

		var stdout bytes.Buffer
		if err := runRepoRemove(&stdout, math); err != nil {
			t.Fatalf("runRepoRemove failed: %v", err)
		}

		cfg, _ := config.Load(cfgPath)
		if cfg.Contains(math) {
			t.Errorf("repository still configured after removal")
		}
		if !strings.Contains(stdout.String(), "Repository deleted successfully") {
			t.Errorf("stdout = %q, missing success message", stdout.String())
		}
	})

	t.Run("by number", func(t *testing.T) {
		dir, cfgPath := setupCommand(t)

		var stdout bytes.Buffer
		if err := runRepoRemove(&stdout, "2"); err != nil {
			t.Fatalf("runRepoRemove failed: %v", err)
		}

		cfg, _ := config.Load(cfgPath)
		want := []string{filepath.Join(dir, "math.json")}
		if got := cfg.Repositories(); len(got) != 1 || got[0] != want[0] {
			t.Errorf("Repositories() = %v, want %v", got, want)
		}
		if !strings.Contains(stdout.String(), "science.json") {
			t.Errorf("stdout should name the removed repository, got %q", stdout.String())
		}
	})

	t.Run("number out of range", func(t *testing.T) {
		setupCommand(t)

		var stdout bytes.Buffer
		err := runRepoRemove(&stdout, "5")
		if code := catalog.ErrorCode(err); code != catalog.EINVALIDINPUT {
			t.Errorf("error code = %q, want %q", code, catalog.EINVALIDINPUT)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		setupCommand(t)

		var stdout bytes.Buffer
		err := runRepoRemove(&stdout, "missing.json")
		if code := catalog.ErrorCode(err); code != catalog.ENOTFOUND {
			t.Errorf("error code = %q, want %q", code, catalog.ENOTFOUND)
		}
	})
}

func TestRunRepoList(t *testing.T) {
	dir, _ := setupCommand(t)

	t.Run("text", func(t *testing.T) {
		w, buf := newTestWriter(output.FormatText)
		if err := runRepoList(w); err != nil {
			t.Fatalf("runRepoList failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"Repositories:",
			"0. All repositories (global search)",
			"1. " + filepath.Join(dir, "math.json"),
			"2. " + filepath.Join(dir, "science.json"),
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "OK") {
			t.Errorf("list should not validate repositories:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		w, buf := newTestWriter(output.FormatJSON)
		if err := runRepoList(w); err != nil {
			t.Fatalf("runRepoList failed: %v", err)
		}

		var got struct {
			Repositories []struct {
				Repository string `json:"repository"`
			} `json:"repositories"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(got.Repositories) != 2 {
			t.Errorf("got %d repositories, want 2", len(got.Repositories))
		}
	})
}

func TestRunRepoStatus(t *testing.T) {
	dir, cfgPath := setupCommand(t)
	missing := filepath.Join(dir, "missing.json")
	if _, err := config.Update(cfgPath, func(c *config.Config) error { return c.Add(missing) }); err != nil {
		t.Fatalf("failed to add repository: %v", err)
	}

	w, buf := newTestWriter(output.FormatText)
	if err := runRepoStatus(context.Background(), w); err != nil {
		t.Fatalf("runRepoStatus failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "math.json - OK") {
		t.Errorf("output missing OK status:\n%s", out)
	}
	if !strings.Contains(out, "missing.json - INVALID: File not found") {
		t.Errorf("output missing INVALID status:\n%s", out)
	}
}
