package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCycleDetected     = errors.New("dependency cycle detected")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidTask       = errors.New("invalid task")
)

// UnknownDependencyError reports a dependency on a task that is not in the set.
type UnknownDependencyError struct {
	Task       string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("%s: task %q depends on %q", ErrUnknownDependency, e.Task, e.Dependency)
}

func (e *UnknownDependencyError) Unwrap() error { return ErrUnknownDependency }

// CycleError reports one cycle in the dependency graph. Path starts and
// ends with the same task.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycleDetected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// InvalidDurationError reports a missing, non-numeric or non-positive duration.
type InvalidDurationError struct {
	Task  string
	Value string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("%s: task %q has duration %s (must be a number > 0)", ErrInvalidDuration, e.Task, e.Value)
}

func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// InvalidTaskError reports an empty or duplicated task name.
type InvalidTaskError struct {
	Task   string
	Reason string
}

func (e *InvalidTaskError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidTask, e.Reason)
	}
	return fmt.Sprintf("%s: %q: %s", ErrInvalidTask, e.Task, e.Reason)
}

func (e *InvalidTaskError) Unwrap() error { return ErrInvalidTask }

// Kind returns a short machine-readable name for a scheduling error, or
// "internal" when err is not one of the graph errors.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownDependency):
		return "unknown_dependency"
	case errors.Is(err, ErrCycleDetected):
		return "cycle_detected"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, ErrInvalidTask):
		return "invalid_task"
	default:
		return "internal"
	}
}
