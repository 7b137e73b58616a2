package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), version, commit, date)
		},
	}
}

func runVersion(stdout io.Writer, version, commit, date string) error {
	_, err := fmt.Fprintf(stdout, "neosearch version %s (commit %s, built %s)\n", version, commit, date)
	return err
}
