package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/types"
)

// DescriptionWidth is the number of description characters shown in the
// results table before truncation.
const DescriptionWidth = 20

// RepositoryStatus is one row of a repository listing. Checked is false
// when the repository was not validated, in which case no status is shown.
type RepositoryStatus struct {
	Ref     string `json:"repository" yaml:"repository"`
	OK      bool   `json:"ok" yaml:"ok"`
	Detail  string `json:"detail" yaml:"detail"`
	Checked bool   `json:"-" yaml:"-"`
}

// String renders the status column: "OK" or "INVALID: <detail>".
func (s RepositoryStatus) String() string {
	if s.OK {
		return "OK"
	}
	return "INVALID: " + s.Detail
}

// Presenter renders the interactive session's tables and messages.
type Presenter struct {
	w io.Writer
	r *lipgloss.Renderer

	title   lipgloss.Style
	header  lipgloss.Style
	key     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
	columns []lipgloss.Style

	// width caps table width in columns; zero leaves tables at their
	// natural width.
	width int
}

// NewPresenter creates a presenter writing to w. Colors are enabled only
// when w is a color-capable terminal.
func NewPresenter(w io.Writer) *Presenter {
	r := lipgloss.NewRenderer(w)
	return &Presenter{
		w:       w,
		r:       r,
		title:   r.NewStyle().Bold(true),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		key:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		ok:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		columns: []lipgloss.Style{
			r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("6")).Align(lipgloss.Center),
			r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("5")),
			r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("2")),
			r.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("3")),
		},
	}
}

// Truncate shortens s to length characters followed by "..." when it is
// longer than length.
func Truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length]) + "..."
}

// SetWidth fits tables to width columns, typically the terminal width.
// Non-positive widths restore natural sizing.
func (p *Presenter) SetWidth(width int) {
	p.width = max(width, 0)
}

func (p *Presenter) newTable(headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.r.NewStyle()).
		Headers(headers...)
	if p.width > 0 {
		t = t.Width(p.width)
	}
	return t
}

// Page renders one page of results. Rows are numbered from 1 within the
// page.
func (p *Presenter) Page(entries []catalog.Entry, page, totalPages int) {
	t := p.newTable("No.", "URL", "Description", "Category").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.columns[col]
		})

	for i, e := range entries {
		t.Row(strconv.Itoa(i+1), e.URL, Truncate(e.Description, DescriptionWidth), e.Category)
	}

	_, _ = fmt.Fprintln(p.w, p.title.Render(fmt.Sprintf("Search Results (Page %d of %d)", page, totalPages)))
	_, _ = fmt.Fprintln(p.w, t.Render())
}

// Record renders every field of a single entry.
func (p *Presenter) Record(e catalog.Entry) {
	tags := "No tags available."
	if e.HasTags() {
		tags = strings.Join(e.Tags, ", ")
	}

	t := p.newTable("Field", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col == 0 {
				return p.columns[0].Align(lipgloss.Left)
			}
			return p.columns[2]
		}).
		Row("URL", e.URL).
		Row("Description", e.Description).
		Row("Category", e.Category).
		Row("Tags", tags)
	if e.Repository != "" {
		t.Row("Repository", e.Repository)
	}

	_, _ = fmt.Fprintln(p.w, p.title.Render("Full Record Details"))
	_, _ = fmt.Fprintln(p.w, t.Render())
}

// Menu renders the session command help.
func (p *Presenter) Menu() {
	commands := types.AllCommands()
	half := (len(commands) + 1) / 2
	for _, line := range [][]types.Command{commands[:half], commands[half:]} {
		parts := make([]string, 0, len(line))
		for _, c := range line {
			parts = append(parts, p.key.Render("'"+c.String()+"'")+" "+c.Description())
		}
		_, _ = fmt.Fprintln(p.w, "Press "+strings.Join(parts, ", "))
	}
}

// Repositories renders a numbered repository list. Entry 0 stands for all
// repositories.
func (p *Presenter) Repositories(statuses []RepositoryStatus) {
	_, _ = fmt.Fprintln(p.w, p.title.Render("Repositories:"))
	if len(statuses) == 0 {
		p.Error("No repositories available.")
		return
	}

	_, _ = fmt.Fprintln(p.w, p.key.Render("0. All repositories (global search)"))
	for i, s := range statuses {
		line := fmt.Sprintf("%d. %s", i+1, s.Ref)
		if s.Checked {
			style := p.failure
			if s.OK {
				style = p.ok
			}
			line += " - " + style.Render(s.String())
		}
		_, _ = fmt.Fprintln(p.w, line)
	}
}

// LoadWarnings lists repositories that failed validation. Nothing is
// printed when every repository is valid.
func (p *Presenter) LoadWarnings(statuses []RepositoryStatus) {
	var invalid []RepositoryStatus
	for _, s := range statuses {
		if s.Checked && !s.OK {
			invalid = append(invalid, s)
		}
	}
	if len(invalid) == 0 {
		return
	}

	_, _ = fmt.Fprintln(p.w)
	_, _ = fmt.Fprintln(p.w, p.warn.Render("WARNING: Some repositories are invalid:"))
	for _, s := range invalid {
		_, _ = fmt.Fprintf(p.w, "- %s: %s\n", p.failure.Render(s.Ref), s.Detail)
	}
	_, _ = fmt.Fprintln(p.w)
}

// Error prints msg as a failure message.
func (p *Presenter) Error(msg string) {
	_, _ = fmt.Fprintln(p.w, p.failure.Render(msg))
}

// Success prints msg as a success message.
func (p *Presenter) Success(msg string) {
	_, _ = fmt.Fprintln(p.w, p.ok.Render(msg))
}

// Info prints msg without styling.
func (p *Presenter) Info(msg string) {
	_, _ = fmt.Fprintln(p.w, msg)
}
