package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-fetch/internal/download"
	"github.com/ytget/yt-fetch/internal/model"
)

type fetchFunc func(ctx context.Context, dl download.Downloader, ref, title, dir string) model.Outcome

func newAudioCommand(ctx *commandContext) *cobra.Command {
	return newSingleFetchCommand(ctx, "audio REFERENCE", "Download the audio track as mp3",
		func(c context.Context, dl download.Downloader, ref, title, dir string) model.Outcome {
			return dl.FetchAudio(c, ref, title, dir)
		})
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	return newSingleFetchCommand(ctx, "video REFERENCE", "Download video (up to 720p) and normalize it to H.264/AAC mp4",
		func(c context.Context, dl download.Downloader, ref, title, dir string) model.Outcome {
			return dl.FetchVideo(c, ref, title, dir)
		})
}

func newSingleFetchCommand(ctx *commandContext, use, short string, fetch fetchFunc) *cobra.Command {
	var dirFlag, title string
	var reveal bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.outputDir(dirFlag)
			if err != nil {
				return err
			}
			dl, err := ctx.downloader(cmd.Context())
			if err != nil {
				return err
			}

			outcome := fetch(cmd.Context(), dl, args[0], title, dir)
			out := cmd.OutOrStdout()
			writeOutcome(out, outcome, shouldColorize(out))
			if reveal && outcome.Path != "" {
				if err := ctx.reveal(outcome.Path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reveal %s: %v\n", outcome.Path, err)
				}
			}
			if !outcome.OK() {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Output directory (default from paths.download_dir)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "File title; resolved from the reference when empty")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show the downloaded file in the system file manager")
	return cmd
}

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string
	var audioOnly bool

	cmd := &cobra.Command{
		Use:   "playlist REFERENCE",
		Short: "Download every item of a playlist into a folder named after it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.outputDir(dirFlag)
			if err != nil {
				return err
			}
			dl, err := ctx.downloader(cmd.Context())
			if err != nil {
				return err
			}

			summary := dl.FetchPlaylist(cmd.Context(), args[0], dir, audioOnly)
			out := cmd.OutOrStdout()
			if summary.Directory == "" && summary.Total() == 1 {
				writeOutcome(out, summary.Outcomes[0], shouldColorize(out))
				return errIncomplete
			}
			fmt.Fprintln(out, renderCollection(summary, shouldColorize(out)))
			fmt.Fprintln(out, collectionFooter(summary))
			if !summary.AllOK() {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Parent output directory (default from paths.download_dir)")
	cmd.Flags().BoolVarP(&audioOnly, "audio", "a", false, "Download audio only")
	return cmd
}
