package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joshharrison/ganttloom/internal/schedule"
	"github.com/joshharrison/ganttloom/internal/ui"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// Reporter renders a computed schedule for the terminal and other tools.
type Reporter struct {
	Schedule *schedule.Schedule
}

// New creates a new Reporter.
func New(s *schedule.Schedule) *Reporter {
	return &Reporter{Schedule: s}
}

// PrintSchedule writes the summary header followed by the full schedule table.
func (r *Reporter) PrintSchedule(w io.Writer) {
	r.printHeader(w)
	if len(r.Schedule.Entries) == 0 {
		fmt.Fprintln(w, ui.Dim("No tasks to schedule."))
		return
	}
	fmt.Fprintln(w, r.Table())
}

func (r *Reporter) printHeader(w io.Writer) {
	s := r.Schedule

	fmt.Fprintf(w, "📅 %s\n", ui.BoldCyan("Project Schedule"))
	fmt.Fprintln(w, ui.Cyan("════════════════════"))
	fmt.Fprintf(w, "Start:     %s\n", ui.Bold(s.Start))
	fmt.Fprintf(w, "Finish:    %s\n", ui.Bold(s.Finish))
	fmt.Fprintf(w, "Duration:  %s days\n", ui.Bold(ui.FormatDays(s.ProjectDuration)))
	fmt.Fprintf(w, "Tasks:     %s (%d levels)\n", ui.Bold(s.TotalTasks), len(s.Levels))
	if len(s.CriticalPath) > 0 {
		fmt.Fprintf(w, "⚡ Critical path: %s (%d tasks)\n",
			ui.BoldYellow(strings.Join(s.CriticalPath, " → ")), len(s.CriticalPath))
	}
	fmt.Fprintln(w)
}

// Table renders all entries, in input order, as a bordered table. Critical
// rows are highlighted.
func (r *Reporter) Table() string {
	entries := r.Schedule.Entries

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		deps := strings.Join(e.Dependencies, ", ")
		if deps == "" {
			deps = "-"
		}
		crit := ""
		if e.IsCritical {
			crit = "⚡"
		}
		rows = append(rows, []string{
			e.Name,
			ui.FormatDays(e.Duration),
			deps,
			ui.FormatDays(e.EarliestStart),
			ui.FormatDays(e.EarliestFinish),
			ui.FormatDays(e.LatestStart),
			ui.FormatDays(e.LatestFinish),
			ui.FormatDays(e.Slack),
			e.StartDate.String(),
			e.FinishDate.String(),
			crit,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("TASK", "DAYS", "DEPENDS ON", "ES", "EF", "LS", "LF", "SLACK", "START", "FINISH", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(entries) && entries[row].IsCritical:
				return criticalStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// PrintLevels writes tasks grouped by dependency level.
func (r *Reporter) PrintLevels(w io.Writer) {
	s := r.Schedule

	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Schedule by Level"))
	fmt.Fprintln(w, ui.Cyan("═════════════════════"))
	fmt.Fprintln(w)

	for _, lvl := range s.Levels {
		depStr := ui.Dim("independent")
		if lvl.Index > 1 {
			depStr = ui.Dim(fmt.Sprintf("after level %d", lvl.Index-1))
		}
		fmt.Fprintf(w, "🌊 %s %d (%d tasks, %s, %s):\n",
			ui.BoldWhite("Level"), lvl.Index, len(lvl.Tasks), depStr, ui.LevelStatus(lvl.IsCritical))

		for _, name := range lvl.Tasks {
			e := s.Entry(name)
			if e == nil {
				continue
			}
			crit := ""
			if e.IsCritical {
				crit = "  " + ui.BoldYellow("⚡ critical")
			} else {
				crit = "  " + ui.Dim("slack ") + ui.Slack(e.Slack)
			}
			fmt.Fprintf(w, "  %s  %s → %s  %sd%s\n",
				ui.TaskName(e.Name, e.IsCritical), e.StartDate, e.FinishDate, ui.FormatDays(e.Duration), crit)
		}
		fmt.Fprintln(w)
	}
}

// PrintDAG writes an ASCII dependency graph, level by level, with each
// task's successors listed beneath it.
func (r *Reporter) PrintDAG(w io.Writer) {
	s := r.Schedule
	succ := r.successors()

	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, lvl := range s.Levels {
		fmt.Fprintf(w, "%s 🌊 Level %d %s\n", ui.Cyan("──"), lvl.Index, ui.Cyan("──────────────────────────────"))
		for _, name := range lvl.Tasks {
			e := s.Entry(name)
			if e == nil {
				continue
			}
			fmt.Fprintf(w, "  %s [%s] %sd\n", ui.CriticalIcon(e.IsCritical), ui.TaskName(name, e.IsCritical), ui.FormatDays(e.Duration))
			for _, next := range succ[name] {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(next))
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintDOT writes the dependency graph in Graphviz format. Critical tasks,
// and edges along which no slack exists, are drawn in red.
func (r *Reporter) PrintDOT(w io.Writer) {
	s := r.Schedule

	fmt.Fprintln(w, "digraph ganttloom {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, e := range s.Entries {
		label := fmt.Sprintf(`%s\n%sd  %s`, dotEscape(e.Name), ui.FormatDays(e.Duration), e.StartDate)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if e.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", e.Name, attrs)
	}

	fmt.Fprintln(w)

	for _, e := range s.Entries {
		for _, dep := range e.Dependencies {
			style := ""
			if d := s.Entry(dep); d != nil && d.IsCritical && e.IsCritical && d.EarliestFinish == e.EarliestStart {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", dep, e.Name, style)
		}
	}

	fmt.Fprintln(w, "}")
}

// JSON returns the schedule as indented JSON.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Schedule, "", "  ")
}

// successors maps each task to the tasks that depend on it, in input order.
func (r *Reporter) successors() map[string][]string {
	succ := make(map[string][]string)
	for _, e := range r.Schedule.Entries {
		for _, dep := range e.Dependencies {
			succ[dep] = append(succ[dep], e.Name)
		}
	}
	return succ
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
