package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"connect2vid/internal/logging"
	"connect2vid/internal/runner"
	"connect2vid/internal/workspace"
)

// Tools names the downloader and extractor executables.
type Tools struct {
	Wget  string
	Unzip string
}

// Outcome summarizes what the stage did.
type Outcome struct {
	URL              string
	Downloaded       bool
	DownloadSkipped  bool
	Download         *runner.Result
	Extract          *runner.Result
	ArchiveAvailable bool
}

// Results returns the tool invocations the stage made, in order.
func (o Outcome) Results() []runner.Result {
	var results []runner.Result
	if o.Download != nil {
		results = append(results, *o.Download)
	}
	if o.Extract != nil {
		results = append(results, *o.Extract)
	}
	return results
}

// Stage downloads a session archive and extracts it into the session folder.
type Stage struct {
	exec   runner.Executor
	tools  Tools
	logger *slog.Logger
}

// New constructs the fetch stage.
func New(exec runner.Executor, tools Tools, logger *slog.Logger) (*Stage, error) {
	if exec == nil {
		return nil, errors.New("fetch stage requires an executor")
	}
	if tools.Wget == "" || tools.Unzip == "" {
		return nil, errors.New("fetch stage requires wget and unzip commands")
	}
	return &Stage{exec: exec, tools: tools, logger: logging.NewComponentLogger(logger, "fetch")}, nil
}

// DownloadCommand builds the no-clobber download command line.
func (s *Stage) DownloadCommand(url, archivePath string) string {
	return runner.Command(s.tools.Wget, "-nc", "-O", archivePath, url)
}

// ExtractCommand builds the never-overwrite extraction command line.
func (s *Stage) ExtractCommand(archivePath, sessionDir string) string {
	return runner.Command(s.tools.Unzip, "-n", archivePath, "-d", sessionDir)
}

// Run performs Download followed by Extract. Non-zero tool exits are
// reported in the outcome, not as errors, and do not stop the extraction.
func (s *Stage) Run(ctx context.Context, layout workspace.Layout, url string) (Outcome, error) {
	outcome, err := s.Download(ctx, layout, url)
	if err != nil {
		return outcome, err
	}
	err = s.Extract(ctx, layout, &outcome)
	return outcome, err
}

// Download ensures the session and output folders exist and downloads the
// archive from url unless it is already present or the layout points at a
// local archive.
func (s *Stage) Download(ctx context.Context, layout workspace.Layout, url string) (Outcome, error) {
	logger := logging.WithContext(ctx, s.logger)
	outcome := Outcome{URL: url}

	if err := layout.EnsureDirectories(); err != nil {
		return outcome, err
	}

	switch {
	case !layout.RemoteArchive():
		logger.Info("using local archive; download skipped", logging.String("archive", layout.ArchivePath))
		outcome.DownloadSkipped = true
	case archivePresent(layout.ArchivePath):
		logger.Info("archive already present; download skipped", logging.String("archive", layout.ArchivePath))
		outcome.DownloadSkipped = true
	default:
		if err := removeEmptyArchive(layout.ArchivePath); err != nil {
			return outcome, err
		}
		result, err := s.exec.Run(ctx, s.DownloadCommand(url, layout.ArchivePath))
		outcome.Download = &result
		if err != nil {
			return outcome, fmt.Errorf("download archive: %w", err)
		}
		outcome.Downloaded = result.Succeeded()
	}

	outcome.ArchiveAvailable = archivePresent(layout.ArchivePath)
	if !outcome.ArchiveAvailable {
		logging.WarnWithContext(logger, "archive missing after download step", "archive_missing",
			logging.String("archive", layout.ArchivePath),
			logging.String("url", url),
			logging.String(logging.FieldErrorHint, "check the recording id and that the recording is public"),
		)
	}
	return outcome, nil
}

// Extract unpacks the archive into the session folder without overwriting
// files extracted by an earlier run and records the result in outcome.
func (s *Stage) Extract(ctx context.Context, layout workspace.Layout, outcome *Outcome) error {
	result, err := s.exec.Run(ctx, s.ExtractCommand(layout.ArchivePath, layout.SessionDir))
	outcome.Extract = &result
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	return nil
}

func archivePresent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// removeEmptyArchive deletes a zero-byte archive left behind by an earlier
// failed download so the no-clobber download can retry it.
func removeEmptyArchive(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat archive: %w", err)
	}
	if info.Mode().IsRegular() && info.Size() == 0 {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove empty archive: %w", err)
		}
	}
	return nil
}
