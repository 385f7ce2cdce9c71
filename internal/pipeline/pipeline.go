package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"connect2vid/internal/config"
	"connect2vid/internal/deps"
	"connect2vid/internal/fetch"
	"connect2vid/internal/history"
	"connect2vid/internal/logging"
	"connect2vid/internal/mux"
	"connect2vid/internal/preflight"
	"connect2vid/internal/reference"
	"connect2vid/internal/runner"
	"connect2vid/internal/textutil"
	"connect2vid/internal/tracks"
	"connect2vid/internal/workspace"
)

// ErrToolFailed is returned under the abort policy when an external tool exits
// with a non-zero status.
var ErrToolFailed = errors.New("external tool failed")

// DefaultOutputDir is the output folder used when the request leaves it empty.
const DefaultOutputDir = "output_videos"

// Request describes one conversion.
type Request struct {
	Reference  reference.Reference
	OutputDir  string
	OutputName string
}

// Failure records a tool invocation that exited non-zero.
type Failure struct {
	Stage  string
	Result runner.Result
}

// Report summarizes a finished run.
type Report struct {
	RunID    string
	Layout   workspace.Layout
	Fetch    fetch.Outcome
	Listing  tracks.Listing
	Segments []mux.Segment
	Concat   runner.Result
	Failures []Failure
	Started  time.Time
	Finished time.Time
}

// Status maps the report onto a history status.
func (r Report) Status() history.Status {
	if len(r.Failures) > 0 {
		return history.StatusCompletedWithErrors
	}
	return history.StatusCompleted
}

// Options wires the pipeline's collaborators.
type Options struct {
	Config   *config.Config
	Executor runner.Executor
	Logger   *slog.Logger
	// History is optional; nil disables run recording.
	History *history.Store
	// NewRunID overrides run id generation in tests.
	NewRunID func() string
}

// Pipeline executes conversions.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	history  *history.Store
	fetch    *fetch.Stage
	mux      *mux.Muxer
	newRunID func() string
}

// New validates options and builds the stage collaborators.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if opts.Executor == nil {
		return nil, errors.New("pipeline requires an executor")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg := opts.Config

	fetchStage, err := fetch.New(opts.Executor, fetch.Tools{Wget: cfg.Tools.Wget, Unzip: cfg.Tools.Unzip}, logger)
	if err != nil {
		return nil, err
	}
	muxer, err := mux.New(opts.Executor, cfg.Tools.FFmpeg, logger)
	if err != nil {
		return nil, err
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	return &Pipeline{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		history:  opts.History,
		fetch:    fetchStage,
		mux:      muxer,
		newRunID: newRunID,
	}, nil
}

// Run executes every stage for req. Tool failures under the continue policy
// are reported in the Report and do not produce an error.
func (p *Pipeline) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{RunID: p.newRunID(), Started: time.Now()}
	ctx = logging.WithRunID(ctx, report.RunID)
	ctx = logging.WithSessionID(ctx, req.Reference.ID)
	logger := logging.WithContext(ctx, p.logger)

	layout, err := p.layoutFor(req)
	if err != nil {
		return report, err
	}
	report.Layout = layout

	lock, err := layout.Acquire()
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release session lock failed", logging.Error(err))
		}
	}()

	logger.Info("conversion started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("reference", req.Reference.Raw),
		logging.String("reference_kind", string(req.Reference.Kind)),
		logging.String("output", layout.FinalPath),
		logging.String("failure_policy", p.cfg.Pipeline.FailurePolicy),
	)
	p.beginHistory(ctx, report.RunID, req, layout)

	runErr := p.runStages(ctx, layout, &report)
	report.Finished = time.Now()
	p.finishHistory(ctx, report, runErr)

	if runErr != nil {
		logger.Error("conversion failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.Error(runErr),
		)
		return report, runErr
	}
	logger.Info("conversion finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("status", string(report.Status())),
		logging.Int("parts", len(report.Segments)),
		logging.Int("failed_commands", len(report.Failures)),
		logging.String("output", layout.FinalPath),
		logging.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

func (p *Pipeline) layoutFor(req Request) (workspace.Layout, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	base := textutil.SanitizeTitle(req.OutputName)
	layout, err := workspace.New(req.Reference.ID, p.cfg.Paths.WorkDir, outputDir, base, p.cfg.Tracks.Extension)
	if err != nil {
		return workspace.Layout{}, err
	}
	if req.Reference.IsLocalArchive() {
		return layout.WithLocalArchive(req.Reference.ArchivePath)
	}
	return layout, nil
}

func (p *Pipeline) runStages(ctx context.Context, layout workspace.Layout, report *Report) error {
	p.preflight(ctx, layout)

	stageCtx := logging.WithStage(ctx, "fetch")
	p.stageStarted(stageCtx)
	outcome, err := p.fetch.Download(stageCtx, layout, p.cfg.DownloadURL(layout.SessionID))
	report.Fetch = outcome
	if err != nil {
		return err
	}
	if outcome.Download != nil {
		if err := p.check(stageCtx, report, "fetch", *outcome.Download); err != nil {
			return err
		}
	}
	err = p.fetch.Extract(stageCtx, layout, &outcome)
	report.Fetch = outcome
	if err != nil {
		return err
	}
	if err := p.check(stageCtx, report, "fetch", *outcome.Extract); err != nil {
		return err
	}

	stageCtx = logging.WithStage(ctx, "convert")
	p.stageStarted(stageCtx)
	listing, err := tracks.Scan(layout.SessionDir, tracks.Patterns{
		Voice:  p.cfg.Tracks.VoicePattern,
		Screen: p.cfg.Tracks.ScreenPattern,
	})
	if err != nil {
		return err
	}
	report.Listing = listing
	p.reportListing(stageCtx, listing)

	for _, pair := range listing.Pairs {
		segment, result, err := p.mux.Convert(stageCtx, layout, pair)
		report.Segments = append(report.Segments, segment)
		if err != nil {
			return err
		}
		if err := p.check(stageCtx, report, "convert", result); err != nil {
			return err
		}
	}

	stageCtx = logging.WithStage(ctx, "concat")
	p.stageStarted(stageCtx)
	result, err := p.mux.Concat(stageCtx, layout, report.Segments)
	report.Concat = result
	if err != nil {
		return err
	}
	return p.check(stageCtx, report, "concat", result)
}

// check applies the failure policy to one tool result.
func (p *Pipeline) check(ctx context.Context, report *Report, stage string, result runner.Result) error {
	if result.Succeeded() {
		return nil
	}
	report.Failures = append(report.Failures, Failure{Stage: stage, Result: result})
	logger := logging.WithContext(ctx, p.logger)
	if p.cfg.AbortOnFailure() {
		return fmt.Errorf("%w: %s exited with status %d", ErrToolFailed, commandName(result.Command), result.ExitCode)
	}
	logging.WarnWithContext(logger, "command failed; continuing", "tool_failed",
		logging.Int("exit_code", result.ExitCode),
		logging.String("command", result.Command),
		logging.String(logging.FieldImpact, "later stages run with whatever the command produced"),
		logging.String(logging.FieldErrorHint, "inspect the tool output above; set pipeline.failure_policy = \"abort\" to stop on failures"),
	)
	return nil
}

func (p *Pipeline) stageStarted(ctx context.Context) {
	logging.WithContext(ctx, p.logger).Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
}

func (p *Pipeline) reportListing(ctx context.Context, listing tracks.Listing) {
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("tracks paired",
		logging.Int("voice_tracks", len(listing.Voice)),
		logging.Int("screen_tracks", len(listing.Screen)),
		logging.Int("pairs", len(listing.Pairs)),
	)
	if listing.Dropped() == 0 {
		return
	}
	logging.WarnWithContext(logger, "unpaired tracks ignored", "tracks_unpaired",
		logging.Int("dropped_voice", len(listing.DroppedVoice)),
		logging.Int("dropped_screen", len(listing.DroppedScreen)),
		logging.String(logging.FieldImpact, "the final recording omits the unpaired tracks"),
		logging.String(logging.FieldErrorHint, "check the extracted session folder for missing camera or screenshare files"),
	)
}

func (p *Pipeline) preflight(ctx context.Context, layout workspace.Layout) {
	logger := logging.WithContext(ctx, p.logger)
	for _, status := range deps.MissingRequired(preflight.CheckSystemDeps(p.cfg)) {
		logging.WarnWithContext(logger, "required tool not found", "dependency_missing",
			logging.String("tool", status.Name),
			logging.String("command", status.Command),
			logging.String(logging.FieldErrorHint, status.Detail),
		)
	}
	if err := layout.EnsureDirectories(); err != nil {
		logger.Warn("create directories failed", logging.Error(err))
		return
	}
	for _, result := range preflight.Failed(preflight.RunAll(p.cfg, layout.OutputDir)) {
		logging.WarnWithContext(logger, "directory check failed", "directory_unusable",
			logging.String("check", result.Name),
			logging.String(logging.FieldErrorHint, result.Detail),
		)
	}
}

func (p *Pipeline) beginHistory(ctx context.Context, runID string, req Request, layout workspace.Layout) {
	if p.history == nil {
		return
	}
	err := p.history.Begin(ctx, history.Run{
		ID:         runID,
		SessionID:  layout.SessionID,
		Reference:  req.Reference.Raw,
		OutputPath: layout.FinalPath,
	})
	if err != nil {
		logging.WithContext(ctx, p.logger).Warn("record run start failed", logging.Error(err))
	}
}

func (p *Pipeline) finishHistory(ctx context.Context, report Report, runErr error) {
	if p.history == nil {
		return
	}
	status := report.Status()
	if runErr != nil {
		status = history.StatusFailed
	}
	// The run context may already be cancelled; the final status is still written.
	err := p.history.Finish(context.WithoutCancel(ctx), report.RunID, history.Outcome{
		Status:         status,
		OutputPath:     report.Layout.FinalPath,
		Segments:       len(report.Segments),
		FailedCommands: len(report.Failures),
		Err:            runErr,
	})
	if err != nil {
		logging.WithContext(ctx, p.logger).Warn("record run result failed", logging.Error(err))
	}
}

func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "command"
	}
	return filepath.Base(strings.Trim(fields[0], `'"`))
}
