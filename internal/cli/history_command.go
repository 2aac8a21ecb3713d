package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent fetch outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "History is disabled; set paths.history_path to enable it.")
				return nil
			}

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No fetches recorded yet.")
				return nil
			}

			color := shouldColorize(out)
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := colorize(color, text.FgGreen, "ok")
				detail := e.Path
				if !e.OK() {
					status = colorize(color, text.FgRed, string(e.Stage))
					detail = e.Reason
				}
				rows = append(rows, []string{
					humanize.Time(e.RecordedAt),
					string(e.Kind),
					e.Title,
					status,
					e.Elapsed.Round(time.Second).String(),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Kind", "Title", "Status", "Took", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintln(out, strconv.Itoa(len(entries))+" entries")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	return cmd
}
