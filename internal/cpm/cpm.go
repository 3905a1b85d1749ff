package cpm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/joshharrison/ganttloom/internal/graph"
)

// Epsilon is the tolerance, in days, under which slack is treated as zero.
// Fractional durations accumulate float error in both passes.
const Epsilon = 1e-9

// ErrInvariant marks a schedule that violates its own invariants, such as
// negative slack. It indicates a defect, not bad input.
var ErrInvariant = errors.New("schedule invariant violated")

// Analyze performs critical path analysis on a task graph: a forward pass for
// earliest dates and levels, a backward pass over the successor index for
// latest dates, then slack and critical path.
func Analyze(g *graph.TaskGraph) (*CPMResult, error) {
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	r := newRun(g)

	// Forward pass: ES, EF and level
	for _, id := range order {
		if err := r.forward(id); err != nil {
			return nil, err
		}
	}

	// Project duration is anchored on the tasks nothing depends on
	total := 0.0
	for _, id := range g.Leaves {
		if ef := r.tasks[id].EF; ef > total {
			total = ef
		}
	}
	r.total = total

	// Backward pass: LF, LS and slack, in reverse topological order
	for i := len(order) - 1; i >= 0; i-- {
		if err := r.backward(order[i]); err != nil {
			return nil, err
		}
	}

	result := &CPMResult{
		Tasks:           r.tasks,
		Order:           append([]string(nil), g.Order...),
		TopoOrder:       order,
		ProjectDuration: total,
	}

	for _, id := range g.Order {
		if r.tasks[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	result.Levels = computeLevels(result)

	return result, nil
}

// run holds the memo tables of a single Analyze call.
type run struct {
	g     *graph.TaskGraph
	tasks map[string]*TaskSchedule
	early map[string]bool // forward pass finalized
	late  map[string]bool // backward pass finalized
	total float64
}

func newRun(g *graph.TaskGraph) *run {
	r := &run{
		g:     g,
		tasks: make(map[string]*TaskSchedule, len(g.Order)),
		early: make(map[string]bool, len(g.Order)),
		late:  make(map[string]bool, len(g.Order)),
	}
	for _, id := range g.Order {
		r.tasks[id] = &TaskSchedule{TaskID: id, Duration: g.Tasks[id].Duration}
	}
	return r
}

// forward computes ES = max(EF of dependencies) and level = 1 + max(level
// of dependencies). Every dependency must already be finalized.
func (r *run) forward(id string) error {
	if r.early[id] {
		return fmt.Errorf("%w: task %q resolved twice in forward pass", ErrInvariant, id)
	}
	ts := r.tasks[id]

	es := 0.0
	level := 1
	for _, dep := range r.g.RevAdj[id] {
		if !r.early[dep] {
			return fmt.Errorf("%w: dependency %q of %q not resolved before it", ErrInvariant, dep, id)
		}
		depTS := r.tasks[dep]
		if depTS.EF > es {
			es = depTS.EF
		}
		if depTS.Level+1 > level {
			level = depTS.Level + 1
		}
	}

	ts.ES = es
	ts.EF = es + ts.Duration
	ts.Level = level
	r.early[id] = true
	return nil
}

// backward computes LF = min(LS of successors), or the project duration for
// tasks without successors, then LS and slack.
func (r *run) backward(id string) error {
	if r.late[id] {
		return fmt.Errorf("%w: task %q resolved twice in backward pass", ErrInvariant, id)
	}
	ts := r.tasks[id]

	lf := r.total
	for i, succ := range r.g.Adj[id] {
		if !r.late[succ] {
			return fmt.Errorf("%w: successor %q of %q not resolved before it", ErrInvariant, succ, id)
		}
		if ls := r.tasks[succ].LS; i == 0 || ls < lf {
			lf = ls
		}
	}

	ts.LF = lf
	ts.LS = lf - ts.Duration
	ts.Slack = ts.LS - ts.ES

	switch {
	case math.Abs(ts.Slack) < Epsilon:
		ts.Slack = 0
		ts.LS = ts.ES
		ts.LF = ts.EF
	case ts.Slack < 0:
		return fmt.Errorf("%w: task %q has negative slack %g", ErrInvariant, id, ts.Slack)
	}
	ts.IsCritical = ts.Slack == 0

	r.late[id] = true
	return nil
}

// computeLevels groups tasks by level, in input order with critical tasks
// first within each level.
func computeLevels(result *CPMResult) []Level {
	groups := make(map[int][]string)
	maxLevel := 0
	for _, id := range result.Order {
		lvl := result.Tasks[id].Level
		groups[lvl] = append(groups[lvl], id)
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	levels := make([]Level, 0, maxLevel)
	for lvl := 1; lvl <= maxLevel; lvl++ {
		taskIDs := groups[lvl]
		if len(taskIDs) == 0 {
			continue
		}

		hasCritical := false
		for _, id := range taskIDs {
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Sort critical tasks first within level
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		levels = append(levels, Level{
			Index:      lvl,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		})
	}

	return levels
}
