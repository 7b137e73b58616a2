package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/interactive"
	"github.com/adamancini/neosearch/internal/output"
	"github.com/adamancini/neosearch/internal/repository"
)

const (
	mathRepo = `[
  {"url": "a", "description": "Algebra basics", "category": "math", "tags": ["math", "intro"]},
  {"url": "c", "description": "Geometry", "category": "math"}
]`
	scienceRepo = `[
  {"url": "b", "description": "Chemistry 101", "category": "science", "tags": ["lab"]}
]`
)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("network unavailable")
}

type fixture struct {
	dir        string
	configPath string
	mathPath   string
	science    string
	out        *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		mathPath:   filepath.Join(dir, "math.json"),
		science:    filepath.Join(dir, "science.json"),
		out:        &bytes.Buffer{},
	}
	require.NoError(t, os.WriteFile(f.mathPath, []byte(mathRepo), 0644))
	require.NoError(t, os.WriteFile(f.science, []byte(scienceRepo), 0644))
	require.NoError(t, config.Save(f.configPath, &config.Config{LocalFiles: []string{f.mathPath, f.science}}))
	return f
}

func (f *fixture) session(t *testing.T, input string, opts ...Option) *Session {
	t.Helper()
	cfg, err := config.Load(f.configPath)
	require.NoError(t, err)
	return New(
		f.configPath,
		cfg,
		repository.NewValidator(offlineFetcher{}),
		interactive.NewPrompterWithIO(strings.NewReader(input), f.out),
		output.NewPresenter(f.out),
		opts...,
	)
}

func (f *fixture) run(t *testing.T, input string, opts ...Option) *Session {
	t.Helper()
	s := f.session(t, input, opts...)
	require.NoError(t, s.Run(context.Background()))
	return s
}

func urls(s *Session) []string {
	var out []string
	for _, e := range s.Results() {
		out = append(out, e.URL)
	}
	return out
}

func TestRun_Quit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.run(t, "q\n")

	assert.Equal(t, StateQuit, s.State())
	assert.Equal(t, []string{"a", "c", "b"}, urls(s))
	assert.Contains(t, f.out.String(), "Search Results (Page 1 of 1)")
	assert.Contains(t, f.out.String(), "'q' to quit")
}

func TestRun_EndOfInputQuits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.run(t, "")

	assert.Equal(t, StateQuit, s.State())
}

func TestRun_InvalidRepositoryWarning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	missing := filepath.Join(f.dir, "missing.json")
	_, err := config.Update(f.configPath, func(c *config.Config) error { return c.Add(missing) })
	require.NoError(t, err)

	s := f.run(t, "q\n")

	assert.Contains(t, f.out.String(), "WARNING: Some repositories are invalid:")
	assert.Contains(t, f.out.String(), missing+": File not found")
	assert.Len(t, s.Results(), 3, "a missing repository contributes nothing")
}

func TestRun_InvalidCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.run(t, "zz\nq\n")

	assert.Contains(t, f.out.String(), "Invalid input. Please try again.")
	assert.Equal(t, StateQuit, s.State())
}

func TestRun_Filter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantFilter FilterState
		wantURLs   []string
	}{
		{
			name:       "global keyword",
			input:      "f\nchem\nq\n",
			wantFilter: FilterState{Value: "chem"},
			wantURLs:   []string{"b"},
		},
		{
			name:       "field filter",
			input:      "f\ntags=\"intro\"\nq\n",
			wantFilter: FilterState{Field: "tags", Value: "intro"},
			wantURLs:   []string{"a"},
		},
		{
			name:       "field filter ignores residual",
			input:      "f\nchemistry category=\"math\"\nq\n",
			wantFilter: FilterState{Field: "category", Value: "math"},
			wantURLs:   []string{"a", "c"},
		},
		{
			name:       "first field wins",
			input:      "f\ncategory=\"science\" description=\"algebra\"\nq\n",
			wantFilter: FilterState{Field: "category", Value: "science"},
			wantURLs:   []string{"b"},
		},
		{
			name:       "new query replaces previous",
			input:      "f\nchem\nf\ngeometry\nq\n",
			wantFilter: FilterState{Value: "geometry"},
			wantURLs:   []string{"c"},
		},
		{
			name:       "empty query keeps filter",
			input:      "f\nchem\nf\n\nq\n",
			wantFilter: FilterState{Value: "chem"},
			wantURLs:   []string{"b"},
		},
		{
			name:       "clear",
			input:      "f\nchem\nc\nq\n",
			wantFilter: FilterState{},
			wantURLs:   []string{"a", "c", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			s := f.run(t, tt.input)

			assert.Equal(t, tt.wantFilter, s.Filter())
			assert.Equal(t, tt.wantURLs, urls(s))
		})
	}
}

func TestRun_NoResults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.run(t, "f\nnothing matches this\nq\n")

	assert.Empty(t, s.Results())
	assert.Contains(t, f.out.String(), "No results found!")
}

func TestRun_Paging(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	s := f.run(t, "n\nn\nn\nq\n", WithPerPage(1))
	assert.Equal(t, 3, s.Cursor().Page(), "next stops at the last page")
	assert.Contains(t, f.out.String(), "Search Results (Page 3 of 3)")

	f.out.Reset()
	s = f.run(t, "n\np\np\nq\n", WithPerPage(1))
	assert.Equal(t, 1, s.Cursor().Page(), "previous stops at page 1")
}

func TestRun_FilterResetsPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.run(t, "n\nf\nmath\nq\n", WithPerPage(1))

	assert.Equal(t, 1, s.Cursor().Page())
	assert.Equal(t, 2, s.Cursor().TotalPages())
}

func TestRun_SelectRecord(t *testing.T) {
	t.Parallel()

	t.Run("selects from the current page", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "n\ns\n1\nq\n", WithPerPage(2))

		out := f.out.String()
		assert.Contains(t, out, "Full Record Details")
		assert.Contains(t, out, "Chemistry 101")
		assert.Contains(t, out, "lab")
	})

	t.Run("tagless record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "s\n2\nq\n")

		assert.Contains(t, f.out.String(), "No tags available.")
	})

	t.Run("not a number", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "s\nabc\nq\n")

		assert.Contains(t, f.out.String(), "Invalid input. Please enter a valid number.")
		assert.Equal(t, StateQuit, s.State())
	})

	t.Run("out of range for the page", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "s\n3\nq\n", WithPerPage(2))

		assert.Contains(t, f.out.String(), "Invalid selection. Please choose a valid number.")
		assert.NotContains(t, f.out.String(), "Full Record Details")
	})

	t.Run("input ends mid prompt", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "s\n")

		assert.Equal(t, StateQuit, s.State())
	})
}

func TestRun_ScopeRepository(t *testing.T) {
	t.Parallel()

	t.Run("scope to one repository", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n2\nq\n")

		assert.Equal(t, f.science, s.Scope())
		assert.Equal(t, []string{"b"}, urls(s))
		assert.Contains(t, f.out.String(), "0. All repositories (global search)")
	})

	t.Run("keyword filter is kept", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "f\nmath\nfr\n1\nq\n")

		assert.Equal(t, FilterState{Value: "math"}, s.Filter())
		assert.Equal(t, []string{"a", "c"}, urls(s))
	})

	t.Run("scope survives a new filter", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n1\nf\nchem\nq\n")

		assert.Equal(t, f.mathPath, s.Scope())
		assert.Empty(t, s.Results())
	})

	t.Run("zero lifts the scope", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n2\nfr\n0\nq\n")

		assert.Empty(t, s.Scope())
		assert.Len(t, s.Results(), 3)
	})

	t.Run("clear lifts the scope", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n2\nc\nq\n")

		assert.Empty(t, s.Scope())
	})

	t.Run("invalid number", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n9\nq\n")

		assert.Contains(t, f.out.String(), "Invalid repository number.")
		assert.Empty(t, s.Scope())
	})
}

func TestRun_ManageRepositories(t *testing.T) {
	t.Parallel()

	t.Run("status listing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "r\nq\nq\n")

		out := f.out.String()
		assert.Contains(t, out, fmt.Sprintf("1. %s - OK", f.mathPath))
		assert.Contains(t, out, fmt.Sprintf("2. %s - OK", f.science))
	})

	t.Run("add local file", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		extra := filepath.Join(f.dir, "extra.json")
		require.NoError(t, os.WriteFile(extra, []byte(`[{"url":"x","description":"Extra","category":"misc"}]`), 0644))

		s := f.run(t, "r\na\n"+extra+"\nq\n")

		assert.Contains(t, f.out.String(), fmt.Sprintf("Repository '%s' added.", extra))
		assert.Contains(t, urls(s), "x", "entries are reloaded after adding")

		cfg, err := config.Load(f.configPath)
		require.NoError(t, err)
		assert.Contains(t, cfg.LocalFiles, extra)
	})

	t.Run("add url without json suffix", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "r\na\nhttps://example.invalid/catalog\nq\n")

		cfg, err := config.Load(f.configPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.invalid/catalog"}, cfg.URLs)
	})

	t.Run("duplicate add", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "r\na\n"+f.mathPath+"\nq\n")

		assert.Contains(t, f.out.String(), "Repository already exists.")
	})

	t.Run("delete by number", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "r\nd\n1\nq\n")

		assert.Contains(t, f.out.String(), fmt.Sprintf("Repository '%s' removed.", f.mathPath))
		assert.Equal(t, []string{"b"}, urls(s))

		cfg, err := config.Load(f.configPath)
		require.NoError(t, err)
		assert.Equal(t, []string{f.science}, cfg.LocalFiles)
	})

	t.Run("deleting the scoped repository lifts the scope", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "fr\n2\nr\nd\n2\nq\n")

		assert.Empty(t, s.Scope())
		assert.Equal(t, []string{"a", "c"}, urls(s))
	})

	t.Run("delete invalid number", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.run(t, "r\nd\n7\nr\nd\nxyz\nq\n")

		assert.Equal(t, 2, strings.Count(f.out.String(), "Invalid repository number."))
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := f.run(t, "r\nx\nq\n")

		assert.Contains(t, f.out.String(), "Invalid input. Please try again.")
		assert.Equal(t, StateQuit, s.State())
	})
}

func TestCheckChanges(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	detector := changes.NewDetector(f.configPath, repository.NewValidator(offlineFetcher{}))
	s := f.session(t, "", WithDetector(detector))
	ctx := context.Background()
	s.Reload(ctx)

	// First pass seeds the digests.
	s.checkChanges(ctx)
	assert.NotContains(t, f.out.String(), msgReloaded)

	require.NoError(t, os.WriteFile(f.science, []byte(`[{"url":"z","description":"Zoology","category":"science"}]`), 0644))
	s.checkChanges(ctx)

	assert.Contains(t, f.out.String(), msgReloaded)
	assert.Contains(t, urls(s), "z")
}

func TestCheckChanges_ConfigEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	detector := changes.NewDetector(f.configPath, repository.NewValidator(offlineFetcher{}))
	s := f.session(t, "", WithDetector(detector))
	ctx := context.Background()
	s.Reload(ctx)
	s.checkChanges(ctx)

	require.NoError(t, config.Save(f.configPath, &config.Config{LocalFiles: []string{f.science}}))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(f.configPath, later, later))
	s.checkChanges(ctx)

	assert.Equal(t, []string{"b"}, urls(s))
}

func TestOwnConfigWriteIsNotReported(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	detector := changes.NewDetector(f.configPath, repository.NewValidator(offlineFetcher{}))
	f.run(t, "r\nd\n1\nq\n", WithDetector(detector))

	assert.NotContains(t, f.out.String(), msgReloaded)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "browsing", StateBrowsing.String())
	assert.Equal(t, "quit", StateQuit.String())
	assert.Equal(t, "unknown", State(99).String())
}
