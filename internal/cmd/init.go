package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/interactive"
	"github.com/adamancini/neosearch/internal/templates"
)

// defaultConfigPath is where init writes when --config is not given.
const defaultConfigPath = "config.yaml"

func newInitCmd() *cobra.Command {
	var templateName string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a repository config from a template",
		Long: `Create a repository config file from a built-in template.

Available templates:
  empty      - No repositories
  starter    - One local sample catalog
  remote     - Sample catalog plus a remote catalog URL

Templates that list the sample catalog also write catalog.json next to
the config unless it already exists.

Examples:
  neosearch init                              # Interactive mode
  neosearch init --template=starter
  neosearch init --config ~/.neosearch/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin := cmd.InOrStdin()
			return runInit(stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), templateName, configPath, force, interactive.IsTerminal(stdin))
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	// Register completion for template flag
	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for _, name := range templates.List() {
			completions = append(completions, fmt.Sprintf("%s\t%s", name, templates.GetDescription(name)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runInit executes the init workflow. Without a terminal on stdin nothing
// is prompted: an unset template falls back to the default and an existing
// config is only replaced with force.
func runInit(stdin io.Reader, stdout, stderr io.Writer, templateName, outputPath string, force, tty bool) error {
	prompter := interactive.NewPrompterWithIO(stdin, stdout)

	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	// Check if file exists
	if _, err := os.Stat(outputPath); err == nil && !force {
		if !tty {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", outputPath)
		}
		_, _ = fmt.Fprintf(stderr, "Config already exists at %s\n", outputPath)
		if prompter.Confirm("Overwrite?") != interactive.ResponseYes {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	if templateName == "" && !tty {
		_, _ = fmt.Fprintf(stderr, "Warning: Not running in a terminal. Using the %s template.\n", templates.DefaultTemplate)
		templateName = templates.DefaultTemplate
	}
	if templateName == "" {
		selected, err := selectTemplate(prompter, stdout)
		if err != nil {
			return err
		}
		templateName = selected
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	content := tmpl.Content
	catalogPath := filepath.Join(filepath.Dir(outputPath), templates.SampleCatalogName)
	if tmpl.NeedsCatalog() && filepath.Dir(outputPath) != "." {
		// Relative references resolve against the working directory, so
		// point the config at the catalog written beside it.
		abs, err := filepath.Abs(catalogPath)
		if err != nil {
			return err
		}
		content = []byte(strings.ReplaceAll(string(content), "- "+templates.SampleCatalogName, "- "+abs))
	}

	// Ensure parent directory exists
	parentDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", parentDir, err)
	}

	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Parse what was written so a broken template never goes unnoticed.
	if _, err := config.Load(outputPath); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("invalid template: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "\nCreated %s\n", outputPath)

	if tmpl.NeedsCatalog() {
		if _, err := os.Stat(catalogPath); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(catalogPath, templates.SampleCatalog(), 0644); err != nil {
				return fmt.Errorf("failed to write sample catalog: %w", err)
			}
			_, _ = fmt.Fprintf(stdout, "Created %s\n", catalogPath)
		}
	}

	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	_, _ = fmt.Fprintln(stdout, "  1. Run 'neosearch repo add <path-or-url>' to add catalogs")
	_, _ = fmt.Fprintln(stdout, "  2. Run 'neosearch check' to validate them")
	_, _ = fmt.Fprintln(stdout, "  3. Run 'neosearch browse' to search")

	return nil
}

// selectTemplate shows a numbered menu of the built-in templates.
func selectTemplate(prompter *interactive.Prompter, stdout io.Writer) (string, error) {
	templateList := templates.List()

	_, _ = fmt.Fprintln(stdout, "\nSelect a config template:")
	for i, name := range templateList {
		_, _ = fmt.Fprintf(stdout, "  %d. %-10s - %s\n", i+1, name, templates.GetDescription(name))
	}

	num, err := prompter.Int(fmt.Sprintf("\nSelect [1-%d]: ", len(templateList)))
	if err != nil {
		return "", fmt.Errorf("invalid selection: %w", err)
	}
	if num < 1 || num > len(templateList) {
		return "", fmt.Errorf("invalid selection: %d", num)
	}
	return templateList[num-1], nil
}
