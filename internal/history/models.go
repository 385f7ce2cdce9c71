package history

import "time"

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning             Status = "running"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID             string
	SessionID      string
	Reference      string
	OutputPath     string
	Status         Status
	Segments       int
	FailedCommands int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the final state written by Finish.
type Outcome struct {
	Status         Status
	OutputPath     string
	Segments       int
	FailedCommands int
	Err            error
}
