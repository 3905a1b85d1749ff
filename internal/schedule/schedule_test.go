package schedule

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

func startDate(t *testing.T) calendar.Date {
	t.Helper()
	d, err := calendar.Parse("2024-01-01")
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	return d
}

func TestGenerate_SingleTask(t *testing.T) {
	s, err := Generate([]task.Task{{Name: "A", Duration: 5}}, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if s.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %g", s.ProjectDuration)
	}
	a := s.Entry("A")
	if a == nil {
		t.Fatal("expected entry for A")
	}
	if a.EarliestStart != 0 || a.EarliestFinish != 5 {
		t.Errorf("expected ES=0 EF=5, got ES=%g EF=%g", a.EarliestStart, a.EarliestFinish)
	}
	if a.StartDate.String() != "2024-01-01" || a.FinishDate.String() != "2024-01-06" {
		t.Errorf("expected 2024-01-01 -> 2024-01-06, got %s -> %s", a.StartDate, a.FinishDate)
	}
	if !a.IsCritical {
		t.Error("expected A to be critical")
	}
	if s.Finish.String() != "2024-01-06" {
		t.Errorf("expected project finish 2024-01-06, got %s", s.Finish)
	}
}

func TestGenerate_Chain(t *testing.T) {
	s, err := Generate([]task.Task{
		{Name: "A", Duration: 3},
		{Name: "B", Duration: 2, Dependencies: []string{"A"}},
	}, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	b := s.Entry("B")
	if b.EarliestStart != 3 || b.EarliestFinish != 5 {
		t.Errorf("expected B ES=3 EF=5, got ES=%g EF=%g", b.EarliestStart, b.EarliestFinish)
	}
	if s.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %g", s.ProjectDuration)
	}
	if !reflect.DeepEqual(s.CriticalPath, []string{"A", "B"}) {
		t.Errorf("expected critical path [A B], got %v", s.CriticalPath)
	}
}

func TestGenerate_Join(t *testing.T) {
	s, err := Generate([]task.Task{
		{Name: "A", Duration: 3},
		{Name: "B", Duration: 5},
		{Name: "C", Duration: 2, Dependencies: []string{"A", "B"}},
	}, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	c := s.Entry("C")
	if c.EarliestStart != 5 || c.EarliestFinish != 7 {
		t.Errorf("expected C ES=5 EF=7, got ES=%g EF=%g", c.EarliestStart, c.EarliestFinish)
	}
	if a := s.Entry("A"); a.Slack != 2 || a.IsCritical {
		t.Errorf("expected A slack=2 not critical, got slack=%g critical=%v", a.Slack, a.IsCritical)
	}
	if b := s.Entry("B"); b.Slack != 0 || !b.IsCritical {
		t.Errorf("expected B critical, got slack=%g", b.Slack)
	}
	if !c.IsCritical {
		t.Error("expected C to be critical")
	}
	if a := s.Entry("A"); a.LatestStartDate.String() != "2024-01-03" {
		t.Errorf("expected A latest start 2024-01-03, got %s", a.LatestStartDate)
	}
}

func TestGenerate_UnknownDependency(t *testing.T) {
	s, err := Generate([]task.Task{{Name: "X", Duration: 1, Dependencies: []string{"Y"}}}, startDate(t))
	if !errors.Is(err, graph.ErrUnknownDependency) {
		t.Fatalf("expected unknown dependency error, got %v", err)
	}
	if s != nil {
		t.Error("expected no schedule on error")
	}
}

func TestGenerate_Cycle(t *testing.T) {
	_, err := Generate([]task.Task{
		{Name: "A", Duration: 1, Dependencies: []string{"B"}},
		{Name: "B", Duration: 1, Dependencies: []string{"A"}},
	}, startDate(t))
	if !errors.Is(err, graph.ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if !strings.Contains(err.Error(), "A") {
		t.Errorf("expected error to name a task on the cycle, got %v", err)
	}
}

func TestGenerate_InvalidDuration(t *testing.T) {
	_, err := Generate([]task.Task{{Name: "A", Duration: 0}}, startDate(t))
	if !errors.Is(err, graph.ErrInvalidDuration) {
		t.Fatalf("expected invalid duration error, got %v", err)
	}
}

func TestGenerate_Empty(t *testing.T) {
	s, err := Generate(nil, startDate(t))
	if err != nil {
		t.Fatalf("expected no error for empty task set, got %v", err)
	}
	if s.ProjectDuration != 0 || len(s.Entries) != 0 {
		t.Errorf("expected empty schedule, got %+v", s)
	}
	if s.Finish.String() != "2024-01-01" {
		t.Errorf("expected finish on start date, got %s", s.Finish)
	}
}

func TestGenerate_PreservesInputOrder(t *testing.T) {
	tasks := []task.Task{
		{Name: "deploy", Duration: 1, Dependencies: []string{"build"}},
		{Name: "build", Duration: 2},
		{Name: "notes", Duration: 1},
	}
	s, err := Generate(tasks, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var names []string
	for _, e := range s.Entries {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, task.Names(tasks)) {
		t.Errorf("expected entries in input order %v, got %v", task.Names(tasks), names)
	}
	if !reflect.DeepEqual(s.CriticalPath, []string{"deploy", "build"}) {
		t.Errorf("expected critical path in input order, got %v", s.CriticalPath)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	tasks := []task.Task{
		{Name: "a", Duration: 2.5},
		{Name: "b", Duration: 1, Dependencies: []string{"a"}},
		{Name: "c", Duration: 4, Dependencies: []string{"a"}},
	}
	first, err := Generate(tasks, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := Generate(tasks, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("expected identical output\n%s\n%s", a, b)
	}
}

func TestSchedule_JSONDates(t *testing.T) {
	s, err := Generate([]task.Task{{Name: "A", Duration: 5}}, startDate(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"start":"2024-01-01"`, `"finish_date":"2024-01-06"`, `"critical_path":["A"]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}
}
