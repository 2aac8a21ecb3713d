package cli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-fetch/internal/platform"
)

const versionProbeTimeout = 10 * time.Second

type checkResult struct {
	name   string
	ok     bool
	detail string
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that yt-dlp and ffmpeg are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := runChecks(cmd.Context(), ctx.locator(), cfg.Tools.YtDlp)

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				status := colorize(color, text.FgGreen, "ok")
				if !r.ok {
					status = colorize(color, text.FgRed, "missing")
					failed++
				}
				rows = append(rows, []string{r.name, status, r.detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, locator *platform.Locator, ytdlpPath string) []checkResult {
	var results []checkResult

	bundle, err := locator.Locate()
	if err != nil {
		results = append(results, checkResult{name: "platform", detail: err.Error()})
	} else {
		detail := bundle
		if locator.ToolDir() == "" {
			detail += " (not present, PATH is used)"
		}
		results = append(results, checkResult{name: "platform", ok: true, detail: detail})
	}

	if ffmpeg, err := locator.FFmpegPath(); err != nil {
		results = append(results, checkResult{name: "ffmpeg", detail: err.Error()})
	} else {
		results = append(results, checkResult{name: "ffmpeg", ok: true, detail: describeBinary(ctx, ffmpeg, "-version")})
	}

	name := strings.TrimSpace(ytdlpPath)
	if name == "" {
		name = "yt-dlp"
	}
	if path, err := exec.LookPath(name); err != nil {
		results = append(results, checkResult{name: "yt-dlp", detail: err.Error()})
	} else {
		results = append(results, checkResult{name: "yt-dlp", ok: true, detail: describeBinary(ctx, path, "--version")})
	}
	return results
}

// describeBinary returns "path (first line of version output)".
func describeBinary(ctx context.Context, path, versionFlag string) string {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, versionFlag).Output()
	if err != nil {
		return path
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	if first == "" {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, strings.TrimSpace(first))
}
