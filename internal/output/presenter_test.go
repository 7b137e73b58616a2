package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamancini/neosearch/internal/catalog"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"short", "short"},
		{"exactly twenty chars", "exactly twenty chars"},
		{"this description is too long", "this description is ..."},
		{"ééééééééééééééééééééé", "éééééééééééééééééééé..."},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, DescriptionWidth); got != tt.want {
			t.Errorf("Truncate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPresenterPage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.Page([]catalog.Entry{
		{URL: "https://a.example", Description: "A rather long description", Category: "math"},
		{URL: "https://b.example", Description: "Short", Category: "science"},
	}, 2, 3)

	out := buf.String()
	for _, want := range []string{
		"Search Results (Page 2 of 3)",
		"No.", "URL", "Description", "Category",
		"https://a.example", "A rather long descri...", "math",
		"https://b.example", "Short", "science",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "A rather long description") {
		t.Error("description should be truncated")
	}
}

func TestPresenterRecord(t *testing.T) {
	t.Run("with tags", func(t *testing.T) {
		var buf bytes.Buffer
		NewPresenter(&buf).Record(catalog.Entry{
			URL: "a", Description: "A rather long description", Category: "math",
			Tags: []string{"math", "intro"}, Repository: "a.json",
		})

		out := buf.String()
		for _, want := range []string{"Full Record Details", "A rather long description", "math, intro", "a.json"} {
			if !strings.Contains(out, want) {
				t.Errorf("record output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("without tags", func(t *testing.T) {
		var buf bytes.Buffer
		NewPresenter(&buf).Record(catalog.Entry{URL: "b", Description: "Chemistry 101", Category: "science"})

		if !strings.Contains(buf.String(), "No tags available.") {
			t.Errorf("expected tag placeholder:\n%s", buf.String())
		}
	})
}

func TestPresenterSetWidth(t *testing.T) {
	long := catalog.Entry{
		URL:         "https://example.com/" + strings.Repeat("very-long-path-segment/", 5),
		Description: "Calculus",
		Category:    "math",
	}
	widest := func(out string) int {
		n := 0
		for _, line := range strings.Split(out, "\n") {
			n = max(n, lipgloss.Width(line))
		}
		return n
	}

	var natural bytes.Buffer
	NewPresenter(&natural).Page([]catalog.Entry{long}, 1, 1)
	if got := widest(natural.String()); got <= 60 {
		t.Fatalf("natural table width = %d, want > 60", got)
	}

	t.Run("page", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPresenter(&buf)
		p.SetWidth(60)
		p.Page([]catalog.Entry{long}, 1, 1)

		if got := widest(buf.String()); got > 60 {
			t.Errorf("table width = %d, want <= 60:\n%s", got, buf.String())
		}
	})

	t.Run("record", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPresenter(&buf)
		p.SetWidth(60)
		p.Record(long)

		if got := widest(buf.String()); got > 60 {
			t.Errorf("record width = %d, want <= 60:\n%s", got, buf.String())
		}
	})

	t.Run("zero restores natural width", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPresenter(&buf)
		p.SetWidth(60)
		p.SetWidth(0)
		p.Page([]catalog.Entry{long}, 1, 1)

		if buf.String() != natural.String() {
			t.Errorf("output differs from natural rendering:\n%s", buf.String())
		}
	})
}

func TestPresenterMenu(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf).Menu()

	out := buf.String()
	for _, want := range []string{"'n' for next", "'p' for previous", "'fr' to filter by repository", "'q' to quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("menu missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Errorf("menu has %d lines, want 2", lines)
	}
}

func TestPresenterRepositories(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		var buf bytes.Buffer
		NewPresenter(&buf).Repositories([]RepositoryStatus{
			{Ref: "a.json", OK: true, Detail: "OK", Checked: true},
			{Ref: "missing.json", Detail: "File not found", Checked: true},
		})

		out := buf.String()
		for _, want := range []string{
			"0. All repositories (global search)",
			"1. a.json - OK",
			"2. missing.json - INVALID: File not found",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("without status", func(t *testing.T) {
		var buf bytes.Buffer
		NewPresenter(&buf).Repositories([]RepositoryStatus{{Ref: "a.json"}})

		if !strings.Contains(buf.String(), "1. a.json\n") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		NewPresenter(&buf).Repositories(nil)

		if !strings.Contains(buf.String(), "No repositories available.") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestPresenterLoadWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.LoadWarnings([]RepositoryStatus{{Ref: "a.json", OK: true, Checked: true}})
	if buf.Len() != 0 {
		t.Errorf("expected no output for valid repositories, got %q", buf.String())
	}

	p.LoadWarnings([]RepositoryStatus{{Ref: "bad.json", Detail: "Invalid format: unexpected end of JSON input", Checked: true}})
	out := buf.String()
	if !strings.Contains(out, "WARNING: Some repositories are invalid:") ||
		!strings.Contains(out, "- bad.json: Invalid format: unexpected end of JSON input") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
