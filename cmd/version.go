package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"typeahead/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print typeahead version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (go %s)\n", config.AppName, version, runtime.Version())
			return nil
		},
	}
}
