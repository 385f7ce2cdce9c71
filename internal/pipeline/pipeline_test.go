package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"connect2vid/internal/config"
	"connect2vid/internal/history"
	"connect2vid/internal/logging"
	"connect2vid/internal/pipeline"
	"connect2vid/internal/reference"
	"connect2vid/internal/testsupport"
	"connect2vid/internal/workspace"
)

const sessionID = "p1a2b3c4d5e6"

// fakeTools simulates wget, unzip and ffmpeg on the filesystem. exitCodes maps
// a tool name to the status it returns.
func fakeTools(t *testing.T, voice, screen []string, exitCodes map[string]int) *testsupport.RecordingExecutor {
	t.Helper()
	return &testsupport.RecordingExecutor{OnRun: func(argv []string) (int, error) {
		tool := argv[0]
		if code := exitCodes[tool]; code != 0 {
			return code, nil
		}
		switch tool {
		case "wget":
			testsupport.WriteFile(t, argv[3], "PK")
		case "unzip":
			testsupport.Touch(t, argv[4], append(append([]string{}, voice...), screen...)...)
		case "ffmpeg":
			testsupport.WriteFile(t, argv[len(argv)-1], "FLV")
		}
		return 0, nil
	}}
}

func newPipeline(t *testing.T, cfg *config.Config, exec *testsupport.RecordingExecutor, store *history.Store) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Executor: exec,
		Logger:   logging.NewNop(),
		History:  store,
		NewRunID: func() string { return "run-test" },
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func urlRequest(t *testing.T, name string) pipeline.Request {
	t.Helper()
	ref, err := reference.NewResolver("").Resolve([]string{"https://my.adobeconnect.com/" + sessionID + "/"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return pipeline.Request{
		Reference:  ref,
		OutputDir:  filepath.Join(t.TempDir(), "output_videos"),
		OutputName: name,
	}
}

func TestRunProducesFinalRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	exec := fakeTools(t,
		[]string{"cameraVoip_2.flv", "cameraVoip_1.flv"},
		[]string{"screenshare_1.flv", "screenshare_2.flv"},
		nil,
	)
	req := urlRequest(t, "My Talk!")

	report, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cmds := exec.Commands()
	if len(cmds) != 5 {
		t.Fatalf("expected 5 commands, got %d:\n%s", len(cmds), strings.Join(cmds, "\n"))
	}
	for i, prefix := range []string{"wget", "unzip", "ffmpeg", "ffmpeg", "ffmpeg"} {
		if !strings.HasPrefix(cmds[i], prefix) {
			t.Fatalf("command %d = %q, want prefix %q", i, cmds[i], prefix)
		}
	}
	download := testsupport.Argv(cmds[0])
	if got := download[len(download)-1]; got != "https://my.adobeconnect.com/"+sessionID+"/output/"+sessionID+".zip?download=zip" {
		t.Fatalf("unexpected download url %q", got)
	}

	outDir, _ := filepath.Abs(req.OutputDir)
	wantFinal := filepath.Join(outDir, "MyTalk.flv")
	if report.Layout.FinalPath != wantFinal {
		t.Fatalf("final path = %q, want %q", report.Layout.FinalPath, wantFinal)
	}
	if len(report.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(report.Segments))
	}
	first := testsupport.Argv(cmds[2])
	if !strings.HasSuffix(first[2], "cameraVoip_1.flv") || !strings.HasSuffix(first[4], "screenshare_1.flv") {
		t.Fatalf("first pair not sorted: %q", first)
	}
	if first[len(first)-1] != filepath.Join(outDir, "MyTalk_0000.flv") {
		t.Fatalf("unexpected first segment %q", first[len(first)-1])
	}

	manifest, err := os.ReadFile(filepath.Join(outDir, workspace.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	wantManifest := "file '" + filepath.Join(outDir, "MyTalk_0000.flv") + "'\n" +
		"file '" + filepath.Join(outDir, "MyTalk_0001.flv") + "'\n"
	if string(manifest) != wantManifest {
		t.Fatalf("manifest = %q, want %q", manifest, wantManifest)
	}
	if _, err := os.Stat(wantFinal); err != nil {
		t.Fatalf("expected final file: %v", err)
	}
	if report.Status() != history.StatusCompleted || len(report.Failures) != 0 {
		t.Fatalf("unexpected status %s failures %v", report.Status(), report.Failures)
	}
}

func TestRunSecondInvocationSkipsDownload(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	exec := fakeTools(t, []string{"cameraVoip_1.flv"}, []string{"screenshare_1.flv"}, nil)
	req := urlRequest(t, "")
	p := newPipeline(t, cfg, exec, nil)

	for i := 0; i < 2; i++ {
		if _, err := p.Run(context.Background(), req); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}
	if got := exec.CommandsWithPrefix("wget"); len(got) != 1 {
		t.Fatalf("expected a single download across runs, got %v", got)
	}
	if got := exec.CommandsWithPrefix("unzip"); len(got) != 2 {
		t.Fatalf("expected extraction on both runs, got %v", got)
	}
}

func TestRunTruncatesUnequalTrackCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	exec := fakeTools(t,
		[]string{"cameraVoip_1.flv", "cameraVoip_2.flv", "cameraVoip_3.flv"},
		[]string{"screenshare_1.flv"},
		nil,
	)
	report, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), urlRequest(t, "talk"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Segments) != 1 || len(report.Listing.DroppedVoice) != 2 {
		t.Fatalf("unexpected pairing: segments=%d dropped=%d", len(report.Segments), len(report.Listing.DroppedVoice))
	}
}

func TestRunContinuesAfterToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	exec := fakeTools(t, nil, nil, map[string]int{"wget": 8, "unzip": 9})

	report, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), urlRequest(t, "talk"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cmds := exec.Commands()
	if len(cmds) != 3 || !strings.HasPrefix(cmds[2], "ffmpeg") {
		t.Fatalf("expected download, extract and concat, got %v", cmds)
	}
	if len(report.Failures) != 2 || report.Status() != history.StatusCompletedWithErrors {
		t.Fatalf("unexpected failures %v", report.Failures)
	}
	manifest, err := os.ReadFile(report.Layout.ManifestPath)
	if err != nil || len(manifest) != 0 {
		t.Fatalf("expected empty manifest, got %q (%v)", manifest, err)
	}
}

func TestRunAbortPolicyStopsAtFirstFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithFailurePolicy(config.FailurePolicyAbort))
	exec := fakeTools(t, nil, nil, map[string]int{"wget": 8})

	_, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), urlRequest(t, "talk"))
	if !errors.Is(err, pipeline.ErrToolFailed) {
		t.Fatalf("expected ErrToolFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "wget exited with status 8") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if got := exec.Commands(); len(got) != 1 {
		t.Fatalf("expected to stop after download, got %v", got)
	}
}

func TestRunAbortPolicyStopsAfterFailedExtract(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithFailurePolicy(config.FailurePolicyAbort))
	exec := fakeTools(t, []string{"cameraVoip_1.flv"}, []string{"screenshare_1.flv"}, map[string]int{"unzip": 9})

	report, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), urlRequest(t, "talk"))
	if !errors.Is(err, pipeline.ErrToolFailed) {
		t.Fatalf("expected ErrToolFailed, got %v", err)
	}
	if got := exec.CommandsWithPrefix("ffmpeg"); len(got) != 0 {
		t.Fatalf("expected no ffmpeg after failed extract, got %v", got)
	}
	if len(report.Failures) != 1 || report.Failures[0].Result.ExitCode != 9 {
		t.Fatalf("unexpected failures %+v", report.Failures)
	}
}

func TestRunRejectsIdentifierThatIsNotAFolderName(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	ref, err := reference.NewResolver("").Resolve([]string{"a/b/c/d/e/f/"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	exec := fakeTools(t, nil, nil, nil)

	_, err = newPipeline(t, cfg, exec, nil).Run(context.Background(), pipeline.Request{
		Reference: ref,
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	if err == nil || !strings.Contains(err.Error(), "not a valid folder name") {
		t.Fatalf("expected folder name error, got %v", err)
	}
	if got := exec.Commands(); len(got) != 0 {
		t.Fatalf("expected no commands, got %v", got)
	}
}

func TestRunFromLocalArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	archive := testsupport.WriteFile(t, filepath.Join(t.TempDir(), sessionID+".zip"), "PK")
	ref, err := reference.NewResolver("").Resolve([]string{archive})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	exec := fakeTools(t, []string{"cameraVoip_1.flv"}, []string{"screenshare_1.flv"}, nil)

	report, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), pipeline.Request{
		Reference: ref,
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := exec.CommandsWithPrefix("wget"); len(got) != 0 {
		t.Fatalf("expected no download for a local archive, got %v", got)
	}
	if filepath.Base(report.Layout.FinalPath) != "noname.flv" {
		t.Fatalf("unexpected final path %q", report.Layout.FinalPath)
	}
	if report.Layout.SessionDir != filepath.Join(cfg.Paths.WorkDir, sessionID) {
		t.Fatalf("unexpected session dir %q", report.Layout.SessionDir)
	}
}

func TestRunFailsWhenSessionLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	req := urlRequest(t, "talk")
	layout, err := workspace.New(sessionID, cfg.Paths.WorkDir, req.OutputDir, "talk", ".flv")
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	lock, err := layout.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	exec := fakeTools(t, nil, nil, nil)
	if _, err := newPipeline(t, cfg, exec, nil).Run(context.Background(), req); !errors.Is(err, workspace.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(exec.Commands()) != 0 {
		t.Fatalf("expected no commands while locked, got %v", exec.Commands())
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	exec := fakeTools(t, []string{"cameraVoip_1.flv"}, []string{"screenshare_1.flv"}, map[string]int{"unzip": 1})
	if _, err := newPipeline(t, cfg, exec, store).Run(context.Background(), urlRequest(t, "talk")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := store.Get(context.Background(), "run-test")
	if err != nil || run == nil {
		t.Fatalf("Get: %v %v", run, err)
	}
	if run.Status != history.StatusCompletedWithErrors || run.FailedCommands != 1 || run.SessionID != sessionID {
		t.Fatalf("unexpected history row %+v", run)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := pipeline.New(pipeline.Options{Executor: &testsupport.RecordingExecutor{}}); err == nil {
		t.Fatal("expected error without config")
	}
	cfg := testsupport.NewConfig(t)
	if _, err := pipeline.New(pipeline.Options{Config: cfg}); err == nil {
		t.Fatal("expected error without executor")
	}
}
