package cmd

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/logging"
	"github.com/adamancini/neosearch/internal/output"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	verbose      bool
	quiet        bool

	// Resolved before every command runs.
	settings *config.Settings
	logger   *slog.Logger
)

// Execute runs the neosearch command line.
func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neosearch",
		Short: "Search catalogs aggregated from local and remote JSON repositories",
		Long: `neosearch aggregates catalog entries (url, description, category, tags)
from local JSON files and remote JSON endpoints listed in a repository config,
and lets you page through and filter them interactively, search them once, or
serve them over HTTP.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	flags.StringVar(&configPath, "config", "", "Path to the repository config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Settings flags, also read from NEOSEARCH_* environment variables
	flags.Int("per-page", 10, "Entries per page")
	flags.String("cache-dir", ".repositories", "Directory remote repositories are cached in (empty disables)")
	flags.Duration("fetch-timeout", 10*time.Second, "Timeout for remote repository requests")
	flags.Float64("fetch-rate", 4, "Remote requests per second (0 disables the limit)")
	flags.String("log-format", "text", "Log format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newRepoCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{logging.FormatText, logging.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// setup loads .env, resolves settings and builds the logger.
func setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	s, err := config.LoadSettings(changedFlags(cmd))
	if err != nil {
		return err
	}

	l, err := logging.New(cmd.ErrOrStderr(), logging.Level(verbose, quiet), s.LogFormat)
	if err != nil {
		return err
	}

	settings = s
	logger = l
	return nil
}
