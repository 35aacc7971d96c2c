package engine

import (
	"fmt"
	"time"
)

// SpawnError reports that the process could not be started at all: executable
// missing, permission denied, or pipe setup failure. No output exists.
type SpawnError struct {
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start process: %v", e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// ExitError reports a process that ran and terminated with a non-zero exit
// code. Stderr carries the full captured diagnostic text.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process exited with code %d: %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("process exited with code %d", e.Code)
}

// TimeoutError reports a process that was killed because it exceeded its
// allotted duration.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process killed after exceeding %s timeout", e.Limit)
}
