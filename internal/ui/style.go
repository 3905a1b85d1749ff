package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetColor turns colored output on or off for the whole process.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// ColorEnabled reports whether styled strings carry escape codes.
func ColorEnabled() bool {
	return !color.NoColor
}

// PrintLogo renders the colored ganttloom logo to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	crit := color.New(color.FgRed)
	sep := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +-----------------------------+")
	bars.Fprintln(w, "   |  ======                     |")
	crit.Fprintln(w, "   |     ##########              |")
	bars.Fprintln(w, "   |        =========            |")
	sep.Fprintln(w, "   |=============================|")
	brand.Fprintln(w, "   |  G  A  N  T  T  L  O  O  M  |")
	sep.Fprintln(w, "   |=============================|")
	crit.Fprintln(w, "   |               ############  |")
	frame.Fprintln(w, "   +-----------------------------+")
	tag.Fprintf(w, "   %s Critical path scheduling\n", Dim("📅"))
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
}

// taskColorIndex hashes a task name to a palette index.
func taskColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskName returns name in a color derived from the name, so the same task
// keeps its color across views. Critical tasks are always bold red.
func TaskName(name string, critical bool) string {
	if critical {
		return BoldRed(name)
	}
	return taskColors[taskColorIndex(name)](name)
}

// CriticalIcon returns the marker shown next to critical tasks.
func CriticalIcon(critical bool) string {
	if critical {
		return Red("⚡")
	}
	return " "
}

// Slack formats a slack value in days. Zero slack is highlighted.
func Slack(days float64) string {
	s := FormatDays(days)
	if days == 0 {
		return BoldRed(s)
	}
	return Green(s)
}

// LevelStatus labels a level by whether it holds critical work.
func LevelStatus(critical bool) string {
	if critical {
		return BoldRed("critical")
	}
	return Dim("slack")
}

// FormatDays prints a day count without a trailing ".0" for whole values.
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
