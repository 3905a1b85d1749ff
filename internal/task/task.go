package task

// Task is a single unit of work to schedule.
type Task struct {
	Name         string   `json:"name" yaml:"name"`
	Duration     float64  `json:"duration" yaml:"duration"` // days, may be fractional
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Snapshot returns a deep copy of tasks so later edits by the caller
// cannot change a scheduling run in progress.
func Snapshot(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{
			Name:         t.Name,
			Duration:     t.Duration,
			Dependencies: append([]string(nil), t.Dependencies...),
		}
	}
	return out
}

// Names returns the task names in input order.
func Names(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
