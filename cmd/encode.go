package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"typeahead/internal/selection"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <text>...",
		Short: "Print the numeric id a selection encodes to",
		Long: `encode prints the id a committed suggestion would be redirected to.
Letters count in bijective base 26: a=1 ... z=26, aa=27.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, text := range args {
				id, err := selection.Encode(text)
				if err != nil {
					return fmt.Errorf("failed to encode %q: %w", text, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", text, id)
			}
			return nil
		},
	}
}
