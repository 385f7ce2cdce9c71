package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"connect2vid/internal/logging"
)

// maxLineBytes bounds a single relayed line; ffmpeg banners can be long.
const maxLineBytes = 1 << 20

// Result reports how a command finished.
type Result struct {
	Command  string
	ExitCode int
	Duration time.Duration
}

// Succeeded reports whether the command exited with status zero.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Executor runs a shell-style command line and reports its exit code.
// A non-zero exit is not an error; errors are reserved for commands that
// could not be parsed or started.
type Executor interface {
	Run(ctx context.Context, command string) (Result, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets the writer receiving relayed standard output lines.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.stdout = w
		}
	}
}

// WithStderr sets the writer receiving relayed standard error lines.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.stderr = w
		}
	}
}

// WithLogger attaches a logger for command start/finish records.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes external programs, relaying their output line by line.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// New constructs a Runner writing to the process stdout/stderr by default.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command joins argv into a command line that Run tokenizes back into the same
// arguments, quoting anything containing spaces or shell metacharacters.
func Command(argv ...string) string {
	return shellquote.Join(argv...)
}

// Run tokenizes command, starts it, relays stdout and stderr as lines arrive
// and blocks until the child exits. There is no timeout; cancelling ctx kills
// the child.
func (r *Runner) Run(ctx context.Context, command string) (Result, error) {
	result := Result{Command: command, ExitCode: -1}
	argv, err := shellquote.Split(command)
	if err != nil {
		return result, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return result, errors.New("empty command")
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("running command", logging.String("command", command))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return result, fmt.Errorf("stderr pipe: %w", err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("start %s: %w", argv[0], err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var writeMu sync.Mutex

	relay := func(src io.Reader, dst io.Writer) {
		defer wg.Done()
		scanner := bufio.NewScanner(src)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		scanner.Split(scanLines)
		for scanner.Scan() {
			writeMu.Lock()
			fmt.Fprintln(dst, strings.TrimRight(scanner.Text(), "\r"))
			writeMu.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep the pipe drained so the child never blocks on a full buffer.
			_, _ = io.Copy(io.Discard, src)
		}
	}

	wg.Add(2)
	go relay(stdout, r.stdout)
	go relay(stderr, r.stderr)
	wg.Wait()

	waitErr := cmd.Wait()
	result.Duration = time.Since(started)
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s interrupted: %w", argv[0], ctxErr)
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("wait %s: %w", argv[0], waitErr)
	}
	if scanErr != nil {
		logger.Debug("output relay incomplete", logging.Error(scanErr))
	}

	logger.Info("command finished",
		logging.String("command", argv[0]),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("duration", result.Duration.Round(time.Millisecond)),
	)
	return result, nil
}

// scanLines splits on \n and on bare \r so progress lines that redraw in place
// (wget, ffmpeg) are relayed as they are written instead of at exit.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell \r from \r\n.
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
