package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/output"
)

// RepositoryList is the output of repo list and repo status.
type RepositoryList struct {
	Repositories []output.RepositoryStatus `json:"repositories" yaml:"repositories"`
}

// RenderText renders the numbered repository listing.
func (l RepositoryList) RenderText(w io.Writer) error {
	output.NewPresenter(w).Repositories(l.Repositories)
	return nil
}

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage configured repositories",
		Long: `Add, remove and list the repositories in the config file.

A repository is a local JSON file path or an http(s) URL returning JSON.
URLs are stored under urls, everything else under local_files.`,
	}

	cmd.AddCommand(newRepoAddCmd())
	cmd.AddCommand(newRepoRemoveCmd())
	cmd.AddCommand(newRepoListCmd())
	cmd.AddCommand(newRepoStatusCmd())

	return cmd
}

func newRepoAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path-or-url>",
		Short: "Add a repository",
		Example: `  neosearch repo add ./physics.json
  neosearch repo add https://example.com/catalog.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepoAdd(cmd.OutOrStdout(), args[0])
		},
	}
}

func runRepoAdd(stdout io.Writer, ref string) error {
	path, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}
	if _, err := config.Update(path, func(c *config.Config) error {
		return c.Add(ref)
	}); err != nil {
		return err
	}

	logger.Info("repository added", "repository", ref, "config", path)
	output.NewPresenter(stdout).Success("Repository added successfully.")
	return nil
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <path-url-or-number>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a repository by reference or list number",
		Example: `  neosearch repo remove ./physics.json
  neosearch repo remove 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepoRemove(cmd.OutOrStdout(), args[0])
		},
	}
}

// runRepoRemove removes target, which is either a configured reference or
// its number in repo list. A reference is matched first, so a local file
// literally named "2" can still be removed.
func runRepoRemove(stdout io.Writer, target string) error {
	path, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}

	removed := target
	_, err = config.Update(path, func(c *config.Config) error {
		if c.Contains(target) {
			return c.Remove(target)
		}
		n, convErr := strconv.Atoi(target)
		if convErr != nil {
			return c.Remove(target)
		}
		ref, err := c.RemoveAt(n)
		removed = ref
		return err
	})
	if err != nil {
		return err
	}

	logger.Info("repository removed", "repository", removed, "config", path)
	output.NewPresenter(stdout).Success(fmt.Sprintf("Repository deleted successfully: %s", removed))
	return nil
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List repositories without validating them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWriter(cmd)
			if err != nil {
				return err
			}
			return runRepoList(w)
		},
	}
}

func runRepoList(w *output.Writer) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	refs := cfg.Repositories()
	list := RepositoryList{Repositories: make([]output.RepositoryStatus, len(refs))}
	for i, ref := range refs {
		list.Repositories[i] = output.RepositoryStatus{Ref: ref}
	}
	return w.Write(list)
}

func newRepoStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List repositories with their validation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWriter(cmd)
			if err != nil {
				return err
			}
			return runRepoStatus(cmd.Context(), w)
		},
	}
}

func runRepoStatus(ctx context.Context, w *output.Writer) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return w.Write(RepositoryList{Repositories: repositoryStatuses(ctx, newValidator(), cfg)})
}
