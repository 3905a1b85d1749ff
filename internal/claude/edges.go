package claude

import (
	"errors"
	"slices"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

// SkippedEdge is an inferred edge that could not be accepted.
type SkippedEdge struct {
	Edge   DepEdge
	Reason string
}

// ValidateEdges filters inferred edges against tasks. Edges naming unknown
// tasks, self edges, edges already present and edges that would close a
// cycle are skipped. Edges are considered greedily in order, so an edge is
// checked against every edge accepted before it.
func ValidateEdges(tasks []task.Task, edges []DepEdge) (accepted []DepEdge, skipped []SkippedEdge) {
	working := task.Snapshot(tasks)
	index := make(map[string]int, len(working))
	for i, t := range working {
		index[t.Name] = i
	}

	for _, e := range edges {
		i, ok := index[e.Task]
		if !ok {
			skipped = append(skipped, SkippedEdge{e, "unknown task " + e.Task})
			continue
		}
		if _, ok := index[e.DependsOn]; !ok {
			skipped = append(skipped, SkippedEdge{e, "unknown dependency " + e.DependsOn})
			continue
		}
		if e.Task == e.DependsOn {
			skipped = append(skipped, SkippedEdge{e, "self dependency"})
			continue
		}
		if slices.Contains(working[i].Dependencies, e.DependsOn) {
			skipped = append(skipped, SkippedEdge{e, "already present"})
			continue
		}

		// Tentatively add the edge and keep it only if the graph still builds.
		prev := working[i].Dependencies
		working[i].Dependencies = append(slices.Clone(prev), e.DependsOn)
		if _, err := graph.Build(working); err != nil {
			working[i].Dependencies = prev
			reason := err.Error()
			if errors.Is(err, graph.ErrCycleDetected) {
				reason = "would create cycle"
			}
			skipped = append(skipped, SkippedEdge{e, reason})
			continue
		}
		accepted = append(accepted, e)
	}
	return accepted, skipped
}

// ApplyEdges returns a copy of tasks with each edge added to its task's
// dependency list. Edges are assumed to have passed ValidateEdges.
func ApplyEdges(tasks []task.Task, edges []DepEdge) []task.Task {
	out := task.Snapshot(tasks)
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.Name] = i
	}
	for _, e := range edges {
		i, ok := index[e.Task]
		if !ok || slices.Contains(out[i].Dependencies, e.DependsOn) {
			continue
		}
		out[i].Dependencies = append(out[i].Dependencies, e.DependsOn)
	}
	return out
}
