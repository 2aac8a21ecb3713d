package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/platform"
)

func statusLabel(o model.Outcome, color bool) string {
	switch {
	case o.OK():
		return colorize(color, text.FgGreen, "ok")
	case o.Degraded():
		return colorize(color, text.FgYellow, "not normalized")
	default:
		return colorize(color, text.FgRed, "failed")
	}
}

func sizeLabel(path string) string {
	if path == "" || !platform.FileExists(path) {
		return "-"
	}
	return humanize.Bytes(uint64(platform.FileSize(path)))
}

func detailLabel(o model.Outcome) string {
	if o.Failure == nil {
		return o.Path
	}
	if o.Degraded() {
		return fmt.Sprintf("%s (kept %s)", o.Failure.Reason, o.Path)
	}
	return fmt.Sprintf("%s: %s", o.Failure.Stage, o.Failure.Reason)
}

func renderSearchResults(results []model.SearchResult, thumbnails bool) string {
	headers := []string{"#", "Title", "Channel", "Reference"}
	if thumbnails {
		headers = append(headers, "Thumbnail")
	}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{strconv.Itoa(i + 1), r.Title, r.Channel, r.Reference}
		if thumbnails {
			thumb := "-"
			if r.HasThumbnail() {
				thumb = r.ThumbnailURL
			}
			row = append(row, thumb)
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}

// writeOutcome prints a single fetch result.
func writeOutcome(w io.Writer, o model.Outcome, color bool) {
	fmt.Fprintf(w, "%s  %s\n", statusLabel(o, color), o.DisplayName())
	switch {
	case o.OK():
		fmt.Fprintf(w, "  saved %s (%s) in %s\n", o.Path, sizeLabel(o.Path), o.Elapsed.Round(time.Millisecond))
	case o.Degraded():
		fmt.Fprintf(w, "  %s; the downloaded file is still usable: %s\n", o.Failure.Reason, o.Path)
		fmt.Fprintln(w, "  file kept; retrying will not help until ffmpeg is fixed")
	default:
		fmt.Fprintf(w, "  %s\n", detailLabel(o))
		if o.Retryable() {
			fmt.Fprintln(w, "  this may be temporary; run the command again to retry")
		}
	}
}

func renderCollection(summary model.CollectionSummary, color bool) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for i, o := range summary.Outcomes {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.DisplayName(),
			statusLabel(o, color),
			sizeLabel(o.Path),
			detailLabel(o),
		})
	}
	return renderTable(
		[]string{"#", "Item", "Status", "Size", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}

func collectionFooter(summary model.CollectionSummary) string {
	return fmt.Sprintf("%s: %d succeeded, %d not normalized, %d failed (%s)",
		summary.Title, summary.Succeeded(), summary.Degraded(), summary.Failed(), summary.Directory)
}
