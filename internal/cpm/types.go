package cpm

// CPMResult holds the complete critical path analysis.
type CPMResult struct {
	Tasks           map[string]*TaskSchedule
	Order           []string // task names in input order
	TopoOrder       []string
	CriticalPath    []string // critical task names in input order
	ProjectDuration float64
	Levels          []Level // tasks grouped by dependency depth
}

// TaskSchedule holds the scheduling info for a single task. All values are
// day offsets from the project start.
type TaskSchedule struct {
	TaskID     string
	Duration   float64
	ES, EF     float64 // earliest start/finish
	LS, LF     float64 // latest start/finish
	Slack      float64
	Level      int // 1 for tasks without dependencies
	IsCritical bool
}

// Level is a group of tasks sharing the same dependency depth.
type Level struct {
	Index      int // 1-based, same as TaskSchedule.Level
	TaskIDs    []string
	IsCritical bool // true if the level contains critical path tasks
}
