package testsupport

import (
	"context"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"

	"connect2vid/internal/runner"
)

// RecordingExecutor records command lines instead of running them. OnRun, when
// set, is called with the tokenized command and may create files or choose the
// exit code.
type RecordingExecutor struct {
	mu       sync.Mutex
	commands []string
	OnRun    func(argv []string) (int, error)
}

// Run implements runner.Executor.
func (e *RecordingExecutor) Run(_ context.Context, command string) (runner.Result, error) {
	e.mu.Lock()
	e.commands = append(e.commands, command)
	e.mu.Unlock()

	result := runner.Result{Command: command}
	if e.OnRun == nil {
		return result, nil
	}
	argv, err := shellquote.Split(command)
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	code, err := e.OnRun(argv)
	result.ExitCode = code
	return result, err
}

// Commands returns the recorded command lines.
func (e *RecordingExecutor) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

// CommandsWithPrefix returns recorded command lines starting with prefix.
func (e *RecordingExecutor) CommandsWithPrefix(prefix string) []string {
	var out []string
	for _, cmd := range e.Commands() {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

// Argv tokenizes a recorded command line.
func Argv(command string) []string {
	argv, _ := shellquote.Split(command)
	return argv
}
