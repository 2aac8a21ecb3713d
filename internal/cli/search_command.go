package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var thumbnails bool

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search for media and list the matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit > 0 {
				cfg.Download.SearchLimit = limit
			}
			dl, err := ctx.downloader(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := dl.Search(cmd.Context(), query)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}
			fmt.Fprintln(out, renderSearchResults(results, thumbnails))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of results (default from download.search_limit)")
	cmd.Flags().BoolVar(&thumbnails, "thumbnails", false, "Show thumbnail URLs")
	return cmd
}
