package graph

import "github.com/joshharrison/ganttloom/internal/task"

// TaskGraph is a directed acyclic graph of tasks. An edge runs from each
// dependency to the task that depends on it.
//
// A TaskGraph is built once per scheduling run and is read-only afterwards.
type TaskGraph struct {
	Tasks  map[string]*task.Task
	Order  []string            // task names in input order
	Adj    map[string][]string // task -> tasks that depend on it (successors)
	RevAdj map[string][]string // task -> tasks it depends on
	Roots  []string            // tasks with no dependencies
	Leaves []string            // tasks nothing depends on
}
