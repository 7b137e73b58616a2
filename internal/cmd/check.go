package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/output"
)

// RepositoryCheck is the health of one repository.
type RepositoryCheck struct {
	Repository string `json:"repository" yaml:"repository"`
	OK         bool   `json:"ok" yaml:"ok"`
	Detail     string `json:"detail" yaml:"detail"`
	Entries    int    `json:"entries" yaml:"entries"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	Digest     string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// CheckReport is the output of check.
type CheckReport struct {
	Config       string            `json:"config" yaml:"config"`
	Repositories []RepositoryCheck `json:"repositories" yaml:"repositories"`
}

// Invalid returns the number of repositories that failed to load.
func (r CheckReport) Invalid() int {
	n := 0
	for _, c := range r.Repositories {
		if !c.OK {
			n++
		}
	}
	return n
}

// RenderText renders one line per repository.
func (r CheckReport) RenderText(w io.Writer) error {
	p := output.NewPresenter(w)
	p.Info(fmt.Sprintf("Config: %s", r.Config))
	if len(r.Repositories) == 0 {
		p.Error("No repositories available.")
		return nil
	}
	for _, c := range r.Repositories {
		if !c.OK {
			p.Error(fmt.Sprintf("✗ %s: %s", c.Repository, c.Detail))
			continue
		}
		line := fmt.Sprintf("✓ %s: %d entries", c.Repository, c.Entries)
		if c.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", c.Skipped)
		}
		p.Success(fmt.Sprintf("%s (digest %s)", line, c.Digest))
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every configured repository",
		Long: `Load every configured repository and report whether it is readable
JSON, how many entries it contributes and a digest of its content.

Exits non-zero if any repository is invalid.

Examples:
  neosearch check
  neosearch check -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWriter(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), w)
		},
	}
}

func runCheck(ctx context.Context, w *output.Writer) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loader := newLoader(newValidator())
	report := CheckReport{Config: path}
	for _, ref := range cfg.Repositories() {
		report.Repositories = append(report.Repositories, checkRepository(ctx, loader, ref))
	}

	if err := w.Write(report); err != nil {
		return err
	}
	if n := report.Invalid(); n > 0 {
		return fmt.Errorf("%d of %d repositories invalid", n, len(report.Repositories))
	}
	return nil
}

func checkRepository(ctx context.Context, loader catalog.Loader, ref string) RepositoryCheck {
	c := RepositoryCheck{Repository: ref}

	data, err := loader.Fetch(ctx, ref)
	if err != nil {
		c.Detail = catalog.ErrorMessage(err)
		return c
	}

	entries, skipped, err := catalog.DecodeEntries(data)
	if err != nil {
		c.Detail = catalog.ErrorMessage(err)
		return c
	}
	c.Entries, c.Skipped = len(entries), skipped

	digest, err := changes.ContentHash(data)
	if err != nil {
		c.Detail = err.Error()
		return c
	}

	c.OK = true
	c.Detail = "OK"
	c.Digest = digest
	return c
}
