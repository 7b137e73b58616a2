package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/interactive"
	"github.com/adamancini/neosearch/internal/output"
	"github.com/adamancini/neosearch/internal/session"
)

var watchChanges bool

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through and filter entries interactively",
		Long: `Start an interactive session over every configured repository.

Commands:
  n  next page          p  previous page
  f  filter             c  clear filter
  s  select a record    r  manage repositories
  fr scope to a repository
  q  quit

Filters accept free text or field="value", e.g. tags="physics".

Examples:
  neosearch browse
  neosearch browse --config ./repositories.yaml
  neosearch browse --watch=false   # do not reload on changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runBrowse(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&watchChanges, "watch", true, "Reload when the config or a local repository changes")

	return cmd
}

// runBrowse runs the interactive session until the user quits or input
// ends.
func runBrowse(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validator := newValidator()
	opts := []session.Option{
		session.WithPerPage(settings.PerPage),
		session.WithLogger(logger),
	}
	if watchChanges {
		detector := changes.NewDetector(path, newLoader(validator), changes.WithLogger(logger))
		opts = append(opts, session.WithDetector(detector))
	}

	presenter := output.NewPresenter(stdout)
	if interactive.IsTerminal(stdout) {
		presenter.SetWidth(interactive.TerminalWidth(stdout, 0))
	}

	s := session.New(path, cfg, validator,
		interactive.NewPrompterWithIO(stdin, stdout),
		presenter,
		opts...,
	)
	logger.Debug("starting session", "config", path, "repositories", len(cfg.Repositories()))
	return s.Run(ctx)
}
