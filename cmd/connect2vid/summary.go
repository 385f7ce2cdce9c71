package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"connect2vid/internal/ffprobe"
	"connect2vid/internal/pipeline"
)

type prober interface {
	Available() bool
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// renderSummary lists every part and the final video with size and, when
// ffprobe is installed, duration.
func renderSummary(ctx context.Context, report pipeline.Report, probe prober, colorize bool) string {
	canProbe := probe != nil && probe.Available()
	rows := make([][]string, 0, len(report.Segments)+1)
	for _, seg := range report.Segments {
		rows = append(rows, fileRow(ctx, strconv.Itoa(seg.Index), seg.Path, seg.ExitCode, probe, canProbe))
	}
	rows = append(rows, fileRow(ctx, "final", report.Layout.FinalPath, report.Concat.ExitCode, probe, canProbe))

	var b strings.Builder
	for _, line := range renderSectionHeader("Run "+report.RunID, colorize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(renderTable(
		[]column{right("Part"), left("File"), right("Size"), right("Duration"), left("Streams"), right("Exit")},
		rows,
	))
	b.WriteByte('\n')

	kind, message := statusOK, "Conversion complete"
	if n := len(report.Failures); n > 0 {
		kind = statusWarn
		message = fmt.Sprintf("Completed with %d failed command(s)", n)
	}
	b.WriteString(renderStatusLine("Result", kind, message, colorize))
	b.WriteByte('\n')
	if dropped := report.Listing.Dropped(); dropped > 0 {
		b.WriteString(renderStatusLine("Tracks", statusWarn, fmt.Sprintf("%d unpaired track(s) ignored", dropped), colorize))
		b.WriteByte('\n')
	}
	b.WriteString(renderStatusLine("Output", statusInfo, report.Layout.FinalPath, colorize))
	b.WriteByte('\n')
	return b.String()
}

func fileRow(ctx context.Context, label, path string, exitCode int, probe prober, canProbe bool) []string {
	size, duration, streams := "-", "-", "-"
	info, err := os.Stat(path)
	if err == nil && info.Mode().IsRegular() {
		size = humanize.Bytes(uint64(info.Size()))
		if canProbe && info.Size() > 0 {
			if result, err := probe.Inspect(ctx, path); err == nil {
				if d := result.Duration(); d > 0 {
					duration = d.String()
				}
				streams = result.Layout()
			}
		}
	} else {
		size = "missing"
	}
	return []string{label, filepath.Base(path), size, duration, streams, strconv.Itoa(exitCode)}
}
