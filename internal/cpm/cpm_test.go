package cpm

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

func buildTestGraph(t *testing.T, tasks []task.Task) *graph.TaskGraph {
	t.Helper()
	g, err := graph.Build(tasks)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func analyze(t *testing.T, tasks []task.Task) *CPMResult {
	t.Helper()
	result, err := Analyze(buildTestGraph(t, tasks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestAnalyze_SingleTask(t *testing.T) {
	result := analyze(t, []task.Task{{Name: "A", Duration: 5}})

	if result.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %g", result.ProjectDuration)
	}
	assertSchedule(t, result.Tasks["A"], 0, 5, 0, 5, 0, true)
	if !reflect.DeepEqual(result.CriticalPath, []string{"A"}) {
		t.Errorf("expected critical path [A], got %v", result.CriticalPath)
	}
	if result.Tasks["A"].Level != 1 {
		t.Errorf("expected level 1, got %d", result.Tasks["A"].Level)
	}
}

func TestAnalyze_Chain(t *testing.T) {
	result := analyze(t, []task.Task{
		{Name: "A", Duration: 3},
		{Name: "B", Duration: 2, Dependencies: []string{"A"}},
	})

	if result.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %g", result.ProjectDuration)
	}
	assertSchedule(t, result.Tasks["A"], 0, 3, 0, 3, 0, true)
	assertSchedule(t, result.Tasks["B"], 3, 5, 3, 5, 0, true)
	if !reflect.DeepEqual(result.CriticalPath, []string{"A", "B"}) {
		t.Errorf("expected critical path [A B], got %v", result.CriticalPath)
	}
}

func TestAnalyze_JoinWithSlack(t *testing.T) {
	result := analyze(t, []task.Task{
		{Name: "A", Duration: 3},
		{Name: "B", Duration: 5},
		{Name: "C", Duration: 2, Dependencies: []string{"A", "B"}},
	})

	assertSchedule(t, result.Tasks["A"], 0, 3, 2, 5, 2, false)
	assertSchedule(t, result.Tasks["B"], 0, 5, 0, 5, 0, true)
	assertSchedule(t, result.Tasks["C"], 5, 7, 5, 7, 0, true)
	if result.ProjectDuration != 7 {
		t.Errorf("expected project duration 7, got %g", result.ProjectDuration)
	}
	if !reflect.DeepEqual(result.CriticalPath, []string{"B", "C"}) {
		t.Errorf("expected critical path [B C], got %v", result.CriticalPath)
	}
}

func TestAnalyze_WithEstimates(t *testing.T) {
	// A(5) -> B(1) -> D(1)
	// A(5) -> C(10) -> D(1)
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 5},
		{Name: "b", Duration: 1, Dependencies: []string{"a"}},
		{Name: "c", Duration: 10, Dependencies: []string{"a"}},
		{Name: "d", Duration: 1, Dependencies: []string{"b", "c"}},
	})

	if result.ProjectDuration != 16 {
		t.Errorf("expected project duration 16, got %g", result.ProjectDuration)
	}
	if result.Tasks["b"].IsCritical {
		t.Error("expected task b to NOT be critical")
	}
	if result.Tasks["b"].Slack != 9 {
		t.Errorf("expected b slack=9, got %g", result.Tasks["b"].Slack)
	}
	if !reflect.DeepEqual(result.CriticalPath, []string{"a", "c", "d"}) {
		t.Errorf("expected critical path [a c d], got %v", result.CriticalPath)
	}
}

func TestAnalyze_MultipleSuccessors(t *testing.T) {
	// a feeds a short branch (b) and a long branch (c -> e). Its latest
	// finish must come from the tighter successor.
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 2},
		{Name: "b", Duration: 1, Dependencies: []string{"a"}},
		{Name: "c", Duration: 4, Dependencies: []string{"a"}},
		{Name: "e", Duration: 3, Dependencies: []string{"c"}},
	})

	if result.ProjectDuration != 9 {
		t.Errorf("expected project duration 9, got %g", result.ProjectDuration)
	}
	assertSchedule(t, result.Tasks["a"], 0, 2, 0, 2, 0, true)
	assertSchedule(t, result.Tasks["b"], 2, 3, 8, 9, 6, false)
	assertSchedule(t, result.Tasks["c"], 2, 6, 2, 6, 0, true)
	assertSchedule(t, result.Tasks["e"], 6, 9, 6, 9, 0, true)
}

func TestAnalyze_ParallelIndependent(t *testing.T) {
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 1},
		{Name: "b", Duration: 4},
		{Name: "c", Duration: 2},
	})

	if len(result.Levels) != 1 {
		t.Fatalf("expected 1 level, got %d", len(result.Levels))
	}
	if got := result.Levels[0].TaskIDs; !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("expected critical task first then input order, got %v", got)
	}
	if result.ProjectDuration != 4 {
		t.Errorf("expected project duration 4, got %g", result.ProjectDuration)
	}
	assertSchedule(t, result.Tasks["a"], 0, 1, 3, 4, 3, false)
}

func TestAnalyze_WideDAGLevels(t *testing.T) {
	//     A
	//   / | \
	//  B  C  D
	//   \ | /
	//     E
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 1},
		{Name: "b", Duration: 1, Dependencies: []string{"a"}},
		{Name: "c", Duration: 1, Dependencies: []string{"a"}},
		{Name: "d", Duration: 1, Dependencies: []string{"a"}},
		{Name: "e", Duration: 1, Dependencies: []string{"b", "c", "d"}},
	})

	if len(result.Levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(result.Levels))
	}
	if len(result.Levels[1].TaskIDs) != 3 {
		t.Errorf("expected 3 tasks in level 2, got %d", len(result.Levels[1].TaskIDs))
	}
	if result.Tasks["e"].Level != 3 {
		t.Errorf("expected e at level 3, got %d", result.Tasks["e"].Level)
	}
}

func TestAnalyze_LevelUsesLongestChain(t *testing.T) {
	// d depends on a directly and on a -> b -> c, so it sits at level 4
	// even though one of its dependencies is a source.
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 1},
		{Name: "b", Duration: 1, Dependencies: []string{"a"}},
		{Name: "c", Duration: 1, Dependencies: []string{"b"}},
		{Name: "d", Duration: 1, Dependencies: []string{"a", "c"}},
	})
	if result.Tasks["d"].Level != 4 {
		t.Errorf("expected d at level 4, got %d", result.Tasks["d"].Level)
	}
}

func TestAnalyze_FractionalDurations(t *testing.T) {
	result := analyze(t, []task.Task{
		{Name: "a", Duration: 0.1},
		{Name: "b", Duration: 0.2, Dependencies: []string{"a"}},
		{Name: "c", Duration: 0.25, Dependencies: []string{"a"}},
	})

	for _, id := range []string{"a", "c"} {
		if !result.Tasks[id].IsCritical {
			t.Errorf("expected %s to be critical, slack=%g", id, result.Tasks[id].Slack)
		}
	}
	if result.Tasks["b"].IsCritical {
		t.Error("expected b to NOT be critical")
	}
	if math.Abs(result.Tasks["b"].Slack-0.05) > 1e-9 {
		t.Errorf("expected b slack 0.05, got %g", result.Tasks["b"].Slack)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	result := analyze(t, nil)
	if result.ProjectDuration != 0 {
		t.Errorf("expected project duration 0, got %g", result.ProjectDuration)
	}
	if len(result.CriticalPath) != 0 || len(result.Levels) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestAnalyze_CycleOnHandBuiltGraph(t *testing.T) {
	g := &graph.TaskGraph{
		Tasks: map[string]*task.Task{
			"a": {Name: "a", Duration: 1},
			"b": {Name: "b", Duration: 1},
		},
		Order:  []string{"a", "b"},
		Adj:    map[string][]string{"a": {"b"}, "b": {"a"}},
		RevAdj: map[string][]string{"a": {"b"}, "b": {"a"}},
	}

	_, err := Analyze(g)
	if !errors.Is(err, graph.ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestAnalyze_NegativeSlackIsInvariant(t *testing.T) {
	// No leaves means a project duration of 0, so "a" would finish late.
	g := &graph.TaskGraph{
		Tasks:  map[string]*task.Task{"a": {Name: "a", Duration: 2}},
		Order:  []string{"a"},
		Adj:    map[string][]string{},
		RevAdj: map[string][]string{},
		Roots:  []string{"a"},
	}

	result, err := Analyze(g)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	if !strings.Contains(err.Error(), "negative slack") {
		t.Errorf("expected negative slack error, got %v", err)
	}
	if result != nil {
		t.Error("no partial result may be returned")
	}
}

func TestAnalyze_Properties(t *testing.T) {
	tasks := []task.Task{
		{Name: "design", Duration: 3},
		{Name: "backend", Duration: 8, Dependencies: []string{"design"}},
		{Name: "frontend", Duration: 5.5, Dependencies: []string{"design"}},
		{Name: "docs", Duration: 2},
		{Name: "qa", Duration: 2.5, Dependencies: []string{"backend", "frontend"}},
		{Name: "release", Duration: 1, Dependencies: []string{"qa", "docs"}},
		{Name: "blog", Duration: 0.5, Dependencies: []string{"frontend"}},
	}
	g := buildTestGraph(t, tasks)
	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxLeafEF := 0.0
	for _, id := range g.Leaves {
		maxLeafEF = math.Max(maxLeafEF, result.Tasks[id].EF)
	}
	if result.ProjectDuration != maxLeafEF {
		t.Errorf("project duration %g != max leaf EF %g", result.ProjectDuration, maxLeafEF)
	}

	for _, tk := range tasks {
		ts := result.Tasks[tk.Name]
		if !approx(ts.EF, ts.ES+tk.Duration) {
			t.Errorf("%s: EF %g != ES %g + %g", tk.Name, ts.EF, ts.ES, tk.Duration)
		}
		if !approx(ts.LF, ts.LS+tk.Duration) {
			t.Errorf("%s: LF %g != LS %g + %g", tk.Name, ts.LF, ts.LS, tk.Duration)
		}
		if ts.Slack < 0 {
			t.Errorf("%s: negative slack %g", tk.Name, ts.Slack)
		}
		if ts.IsCritical != (ts.Slack == 0) {
			t.Errorf("%s: critical=%v with slack %g", tk.Name, ts.IsCritical, ts.Slack)
		}
		for _, dep := range tk.Dependencies {
			if ts.EF < result.Tasks[dep].EF {
				t.Errorf("%s finishes before its dependency %s", tk.Name, dep)
			}
		}
	}

	again, err := Analyze(buildTestGraph(t, tasks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(result.Tasks, again.Tasks) || !reflect.DeepEqual(result.CriticalPath, again.CriticalPath) {
		t.Error("expected identical results on repeated runs")
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertSchedule(t *testing.T, ts *TaskSchedule, es, ef, ls, lf, slack float64, critical bool) {
	t.Helper()
	if ts.ES != es {
		t.Errorf("task %s: expected ES=%g, got %g", ts.TaskID, es, ts.ES)
	}
	if ts.EF != ef {
		t.Errorf("task %s: expected EF=%g, got %g", ts.TaskID, ef, ts.EF)
	}
	if ts.LS != ls {
		t.Errorf("task %s: expected LS=%g, got %g", ts.TaskID, ls, ts.LS)
	}
	if ts.LF != lf {
		t.Errorf("task %s: expected LF=%g, got %g", ts.TaskID, lf, ts.LF)
	}
	if ts.Slack != slack {
		t.Errorf("task %s: expected slack=%g, got %g", ts.TaskID, slack, ts.Slack)
	}
	if ts.IsCritical != critical {
		t.Errorf("task %s: expected critical=%v, got %v", ts.TaskID, critical, ts.IsCritical)
	}
}
