package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/output"
)

const (
	mathCatalog = `[
  {"url": "https://math.example/algebra", "description": "Linear algebra notes", "category": "math", "tags": ["algebra", "matrices"]},
  {"url": "https://math.example/calculus", "description": "Calculus primer", "category": "math", "tags": ["calculus"]}
]`
	scienceCatalog = `[
  {"url": "https://science.example/quantum", "description": "Quantum mechanics lectures", "category": "physics", "tags": ["physics", "quantum"]},
  {"description": "missing url", "category": "physics"}
]`
)

// setupCommand writes a config listing math.json and science.json into a
// temp dir and points the command globals at it.
func setupCommand(t *testing.T) (dir, cfgPath string) {
	t.Helper()

	dir = t.TempDir()
	math := filepath.Join(dir, "math.json")
	science := filepath.Join(dir, "science.json")
	writeTestFile(t, math, mathCatalog)
	writeTestFile(t, science, scienceCatalog)

	cfgPath = filepath.Join(dir, "config.yaml")
	if err := config.Save(cfgPath, &config.Config{LocalFiles: []string{math, science}}); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	s, err := config.LoadSettings(nil)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	s.CacheDir = ""

	prevConfig, prevSettings, prevLogger, prevFormat := configPath, settings, logger, outputFormat
	t.Cleanup(func() {
		configPath, settings, logger, outputFormat = prevConfig, prevSettings, prevLogger, prevFormat
	})

	configPath = cfgPath
	settings = s
	logger = slog.New(slog.DiscardHandler)
	outputFormat = "text"

	return dir, cfgPath
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newTestWriter(format output.Format) (*output.Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	return output.NewWriter(&buf, format), &buf
}
