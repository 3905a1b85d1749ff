package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gammazero/toposort"

	"github.com/joshharrison/ganttloom/internal/task"
)

// Build validates tasks and constructs a TaskGraph from them.
// Tasks are checked first (names, durations) and then edges, each in input
// order; the first problem found aborts the build.
func Build(tasks []task.Task) (*TaskGraph, error) {
	tasks = task.Snapshot(tasks)

	g := &TaskGraph{
		Tasks:  make(map[string]*task.Task, len(tasks)),
		Order:  make([]string, 0, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	// Index all tasks
	for i := range tasks {
		t := &tasks[i]
		if strings.TrimSpace(t.Name) == "" {
			return nil, &InvalidTaskError{Reason: fmt.Sprintf("task #%d has an empty name", i+1)}
		}
		if _, dup := g.Tasks[t.Name]; dup {
			return nil, &InvalidTaskError{Task: t.Name, Reason: "duplicate task name"}
		}
		if !validDuration(t.Duration) {
			return nil, &InvalidDurationError{Task: t.Name, Value: strconv.FormatFloat(t.Duration, 'g', -1, 64)}
		}
		g.Tasks[t.Name] = t
		g.Order = append(g.Order, t.Name)
	}

	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	for _, id := range g.Order {
		for _, dep := range g.Tasks[id].Dependencies {
			if _, ok := g.Tasks[dep]; !ok {
				return nil, &UnknownDependencyError{Task: id, Dependency: dep}
			}
			if dep == id {
				return nil, &CycleError{Path: []string{id, id}}
			}
			addEdge(dep, id)
		}
		// Repeated dependency names collapse into one edge.
		g.Tasks[id].Dependencies = append([]string(nil), g.RevAdj[id]...)
	}

	for _, id := range g.Order {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	return g, nil
}

func validDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// TopoOrder returns the task names in an order where every dependency comes
// before the tasks that depend on it. Tasks without any edge come first, in
// input order.
func (g *TaskGraph) TopoOrder() ([]string, error) {
	order := make([]string, 0, len(g.Order))
	edges := make([]toposort.Edge, 0)
	for _, id := range g.Order {
		if len(g.Adj[id]) == 0 && len(g.RevAdj[id]) == 0 {
			order = append(order, id)
			continue
		}
		for _, succ := range g.Adj[id] {
			edges = append(edges, toposort.Edge{id, succ})
		}
	}

	if len(edges) == 0 {
		return order, nil
	}

	sortedNodes, err := toposort.Toposort(edges)
	if err != nil {
		if cycle := g.DetectCycle(); cycle != nil {
			return nil, &CycleError{Path: cycle}
		}
		return nil, fmt.Errorf("%w: %v", ErrCycleDetected, err)
	}
	for _, node := range sortedNodes {
		order = append(order, node.(string))
	}

	if len(order) != len(g.Order) {
		return nil, fmt.Errorf("topological sort failed: %d of %d tasks sorted", len(order), len(g.Order))
	}
	return order, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				// Found a cycle; walk parents back to its entry point
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.Order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// Successors returns the tasks that depend directly on id.
func (g *TaskGraph) Successors(id string) []string {
	return g.Adj[id]
}

// Dependencies returns the tasks id depends on directly.
func (g *TaskGraph) Dependencies(id string) []string {
	return g.RevAdj[id]
}
