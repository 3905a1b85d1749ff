package schedule

import (
	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/cpm"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

// Generate schedules tasks from the given project start date. It returns
// entries in the same order as tasks, or the first validation error; no
// partial schedule is ever returned. An empty task list yields an empty
// schedule.
func Generate(tasks []task.Task, start calendar.Date) (*Schedule, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}

	result, err := cpm.Analyze(g)
	if err != nil {
		return nil, err
	}

	return FromAnalysis(g, result, start), nil
}

// FromAnalysis projects a CPM result onto the calendar.
func FromAnalysis(g *graph.TaskGraph, result *cpm.CPMResult, start calendar.Date) *Schedule {
	s := &Schedule{
		Start:           start,
		Finish:          calendar.Project(start, result.ProjectDuration),
		ProjectDuration: result.ProjectDuration,
		TotalTasks:      g.TaskCount(),
		CriticalPath:    append([]string{}, result.CriticalPath...),
		Entries:         make([]Entry, 0, len(g.Order)),
		Levels:          make([]Level, 0, len(result.Levels)),
	}

	for _, id := range g.Order {
		ts := result.Tasks[id]
		s.Entries = append(s.Entries, Entry{
			Name:             id,
			Duration:         ts.Duration,
			Dependencies:     append([]string{}, g.Dependencies(id)...),
			EarliestStart:    ts.ES,
			EarliestFinish:   ts.EF,
			LatestStart:      ts.LS,
			LatestFinish:     ts.LF,
			Slack:            ts.Slack,
			Level:            ts.Level,
			IsCritical:       ts.IsCritical,
			StartDate:        calendar.Project(start, ts.ES),
			FinishDate:       calendar.Project(start, ts.EF),
			LatestStartDate:  calendar.Project(start, ts.LS),
			LatestFinishDate: calendar.Project(start, ts.LF),
		})
	}

	for _, lvl := range result.Levels {
		s.Levels = append(s.Levels, Level{
			Index:      lvl.Index,
			Tasks:      append([]string{}, lvl.TaskIDs...),
			IsCritical: lvl.IsCritical,
		})
	}

	return s
}

// Entry returns the entry for the named task, or nil.
func (s *Schedule) Entry(name string) *Entry {
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			return &s.Entries[i]
		}
	}
	return nil
}
