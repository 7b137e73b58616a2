package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/logging"
	"github.com/adamancini/neosearch/internal/output"
	"github.com/adamancini/neosearch/internal/repository"
)

// changedFlags returns a flag set holding only the settings flags the
// user set explicitly, so unset flags do not mask environment values.
func changedFlags(cmd *cobra.Command) *pflag.FlagSet {
	changed := pflag.NewFlagSet("changed", pflag.ContinueOnError)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed.AddFlag(f)
	})
	return changed
}

// newValidator builds the repository validator from the resolved settings.
func newValidator() *repository.Validator {
	fetcher := repository.NewHTTPFetcher(
		repository.WithTimeout(settings.FetchTimeout),
		repository.WithRateLimit(rate.Limit(settings.FetchRate), 1),
	)
	return repository.NewValidator(
		logging.NewLoggingFetcher(fetcher, logger),
		repository.WithCacheDir(settings.CacheDir),
		repository.WithLogger(logger),
	)
}

// newLoader wraps v with load logging.
func newLoader(v *repository.Validator) catalog.Loader {
	return logging.NewLoggingLoader(v, logger)
}

// loadConfig finds and loads the repository config.
func loadConfig() (string, *config.Config, error) {
	path, err := config.FindConfig(configPath)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

// newWriter returns a writer for the --output flag.
func newWriter(cmd *cobra.Command) (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(cmd.OutOrStdout(), format), nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// repositoryStatuses validates every repository in cfg.
func repositoryStatuses(ctx context.Context, v *repository.Validator, cfg *config.Config) []output.RepositoryStatus {
	refs := cfg.Repositories()
	statuses := make([]output.RepositoryStatus, len(refs))
	for i, ref := range refs {
		ok, detail := v.Validate(ctx, ref)
		statuses[i] = output.RepositoryStatus{Ref: ref, OK: ok, Detail: detail, Checked: true}
	}
	return statuses
}
