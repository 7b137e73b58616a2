package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/output"
	"github.com/adamancini/neosearch/internal/pager"
	"github.com/adamancini/neosearch/internal/query"
	"github.com/adamancini/neosearch/internal/search"
	"github.com/adamancini/neosearch/internal/types"
)

var (
	searchField      string
	searchRepository string
	searchPage       int
)

// SearchResult is the output of a one-shot search.
type SearchResult struct {
	Results    []catalog.Entry `json:"results" yaml:"results"`
	Total      int             `json:"total" yaml:"total"`
	Page       int             `json:"page" yaml:"page"`
	TotalPages int             `json:"total_pages" yaml:"total_pages"`
}

// RenderText renders the page as the interactive results table.
func (r SearchResult) RenderText(w io.Writer) error {
	if r.Total == 0 {
		_, err := fmt.Fprintln(w, "No results found!")
		return err
	}
	output.NewPresenter(w).Page(r.Results, r.Page, r.TotalPages)
	return nil
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries once and print a page of results",
		Long: `Search every configured repository and print one page of matches.

The query is free text or field="value"; only the first field filter is
applied. Without a query every entry matches.

Examples:
  neosearch search algebra
  neosearch search 'tags="physics"'
  neosearch search quantum --field description
  neosearch search --repository ./math.json -o json
  neosearch search algebra --page 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) == 1 {
				q = args[0]
			}
			w, err := newWriter(cmd)
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), w, q)
		},
	}

	cmd.Flags().StringVar(&searchField, "field", "", "Restrict free text to one field: url, description, category, tags")
	cmd.Flags().StringVar(&searchRepository, "repository", "", "Only search entries from this repository")
	cmd.Flags().IntVar(&searchPage, "page", 1, "Page to print")

	_ = cmd.RegisterFlagCompletionFunc("field", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var fields []string
		for _, f := range types.AllFields() {
			fields = append(fields, f.String())
		}
		return fields, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// searchCriteria turns a query string and the --field flag into criteria.
// A field="value" filter in the query wins over --field.
func searchCriteria(q, field, repository string) (search.Criteria, error) {
	c := search.Criteria{Repository: repository}

	parsed := query.Parse(q)
	if f, v, ok := parsed.Primary(); ok {
		c.Field, c.Keyword = f, v
	} else {
		c.Keyword = parsed.Residual
		c.Field = field
	}

	if c.Field != "" {
		f, err := types.ParseField(c.Field)
		if err != nil {
			return search.Criteria{}, catalog.Errorf(catalog.EINVALIDINPUT, "%v", err)
		}
		c.Field = f.String()
	}
	return c, nil
}

func runSearch(ctx context.Context, w *output.Writer, q string) error {
	if searchPage < 1 {
		return catalog.Errorf(catalog.EINVALIDINPUT, "page must be positive, got %d", searchPage)
	}

	criteria, err := searchCriteria(q, searchField, searchRepository)
	if err != nil {
		return err
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := catalog.Build(ctx, cfg.Repositories(), newLoader(newValidator()))
	for _, f := range store.Failures() {
		logger.Warn("repository skipped", "repository", f.Repository, "err", f.Err)
	}

	matches := search.Apply(store.Entries(), criteria)
	perPage := settings.PerPage
	result := SearchResult{
		Results:    pager.Slice(matches, searchPage, perPage),
		Total:      len(matches),
		Page:       searchPage,
		TotalPages: pager.TotalPages(len(matches), perPage),
	}
	if result.Results == nil {
		result.Results = []catalog.Entry{}
	}

	logger.Debug("search", "query", q, "matches", result.Total)
	return w.Write(result)
}
