package schedule

import "github.com/joshharrison/ganttloom/internal/calendar"

// Schedule is the complete, derived schedule of one task list.
type Schedule struct {
	Start           calendar.Date `json:"start"`
	Finish          calendar.Date `json:"finish"`
	ProjectDuration float64       `json:"project_duration"`
	TotalTasks      int           `json:"total_tasks"`
	CriticalPath    []string      `json:"critical_path"`
	Entries         []Entry       `json:"entries"`
	Levels          []Level       `json:"levels"`
}

// Entry is the schedule of a single task. Offsets are in days from Start.
type Entry struct {
	Name           string   `json:"name"`
	Duration       float64  `json:"duration"`
	Dependencies   []string `json:"dependencies"`
	EarliestStart  float64  `json:"earliest_start"`
	EarliestFinish float64  `json:"earliest_finish"`
	LatestStart    float64  `json:"latest_start"`
	LatestFinish   float64  `json:"latest_finish"`
	Slack          float64  `json:"slack"`
	Level          int      `json:"level"`
	IsCritical     bool     `json:"is_critical"`

	StartDate        calendar.Date `json:"start_date"`
	FinishDate       calendar.Date `json:"finish_date"`
	LatestStartDate  calendar.Date `json:"latest_start_date"`
	LatestFinishDate calendar.Date `json:"latest_finish_date"`
}

// Level groups task names that share a dependency depth.
type Level struct {
	Index      int      `json:"index"`
	Tasks      []string `json:"tasks"`
	IsCritical bool     `json:"is_critical"`
}
