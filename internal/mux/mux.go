package mux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"connect2vid/internal/logging"
	"connect2vid/internal/runner"
	"connect2vid/internal/tracks"
	"connect2vid/internal/workspace"
)

// Segment is one converted part.
type Segment struct {
	Index    int
	Path     string
	ExitCode int
}

// Muxer issues ffmpeg commands through an executor.
type Muxer struct {
	exec   runner.Executor
	ffmpeg string
	logger *slog.Logger
}

// New constructs a Muxer that invokes the given ffmpeg binary.
func New(exec runner.Executor, ffmpeg string, logger *slog.Logger) (*Muxer, error) {
	if exec == nil {
		return nil, errors.New("muxer requires an executor")
	}
	if strings.TrimSpace(ffmpeg) == "" {
		return nil, errors.New("muxer requires an ffmpeg command")
	}
	return &Muxer{exec: exec, ffmpeg: ffmpeg, logger: logging.NewComponentLogger(logger, "mux")}, nil
}

// PairCommand builds the command that takes the first audio stream of voice
// and the first video stream of screen, stopping at the shorter input.
func (m *Muxer) PairCommand(voice, screen, output string) string {
	return runner.Command(m.ffmpeg,
		"-i", voice,
		"-i", screen,
		"-c", "copy",
		"-map", "0:a:0",
		"-map", "1:v:0",
		"-shortest",
		"-y", output,
	)
}

// ConcatCommand builds the command joining the parts listed in manifest.
func (m *Muxer) ConcatCommand(manifest, output string) string {
	return runner.Command(m.ffmpeg,
		"-safe", "0",
		"-y",
		"-f", "concat",
		"-i", manifest,
		"-c", "copy",
		output,
	)
}

// Convert muxes one pair into the layout's numbered part. The segment path is
// returned whatever the exit code; the caller applies its failure policy.
func (m *Muxer) Convert(ctx context.Context, layout workspace.Layout, pair tracks.Pair) (Segment, runner.Result, error) {
	segment := Segment{Index: pair.Index, Path: layout.SegmentPath(pair.Index)}
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("converting part",
		logging.Int("part", pair.Index),
		logging.String("voice", filepath.Base(pair.Voice)),
		logging.String("screen", filepath.Base(pair.Screen)),
		logging.String("output", segment.Path),
	)
	result, err := m.exec.Run(ctx, m.PairCommand(pair.Voice, pair.Screen, segment.Path))
	segment.ExitCode = result.ExitCode
	if err != nil {
		return segment, result, fmt.Errorf("convert part %d: %w", pair.Index, err)
	}
	return segment, result, nil
}

// Concat writes the manifest for segments and joins them into the layout's
// final path.
func (m *Muxer) Concat(ctx context.Context, layout workspace.Layout, segments []Segment) (runner.Result, error) {
	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		paths = append(paths, seg.Path)
	}
	if err := WriteManifest(layout.ManifestPath, paths); err != nil {
		return runner.Result{ExitCode: -1}, err
	}
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("concatenating parts",
		logging.Int("parts", len(paths)),
		logging.String("manifest", layout.ManifestPath),
		logging.String("output", layout.FinalPath),
	)
	result, err := m.exec.Run(ctx, m.ConcatCommand(layout.ManifestPath, layout.FinalPath))
	if err != nil {
		return result, fmt.Errorf("concatenate parts: %w", err)
	}
	return result, nil
}

// WriteManifest writes one concat demuxer entry per path, in order. An empty
// path list produces an empty file.
func WriteManifest(path string, paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(ManifestLine(p))
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ManifestLine formats one manifest entry. Single quotes inside the path are
// closed, escaped and reopened as the concat demuxer expects.
func ManifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
