package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTitleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "title REFERENCE",
		Short: "Print the title of a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl, err := ctx.downloader(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dl.Title(cmd.Context(), args[0]))
			return nil
		},
	}
}
