package reporter

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/joshharrison/ganttloom/internal/ui"
)

const (
	barCritical = "█"
	barNormal   = "▓"
	barSlack    = "·"

	maxLabelWidth = 24
	minGanttWidth = 10
)

// GanttOptions controls the chart layout.
type GanttOptions struct {
	// Width is the number of columns used for the time axis.
	Width int
	// Unit places axis ticks every day ("days") or every seven days ("weeks").
	Unit string
}

// PrintGantt writes an early-start Gantt chart. Bars start at each task's
// earliest start; slack is drawn as a dotted tail after the bar.
func (r *Reporter) PrintGantt(w io.Writer, opts GanttOptions) {
	s := r.Schedule

	fmt.Fprintf(w, "📊 %s  %s → %s (%s days)\n",
		ui.BoldCyan("Gantt"), s.Start, s.Finish, ui.FormatDays(s.ProjectDuration))
	fmt.Fprintln(w)

	if len(s.Entries) == 0 || s.ProjectDuration <= 0 {
		fmt.Fprintln(w, ui.Dim("No tasks to schedule."))
		return
	}

	width := opts.Width
	if width < minGanttWidth {
		width = minGanttWidth
	}
	scale := float64(width) / s.ProjectDuration

	labelWidth := 0
	for _, e := range s.Entries {
		if n := utf8.RuneCountInString(e.Name); n > labelWidth {
			labelWidth = n
		}
	}
	if labelWidth > maxLabelWidth {
		labelWidth = maxLabelWidth
	}

	for _, e := range s.Entries {
		start, bar, tail := barSpan(e.EarliestStart, e.Duration, e.Slack, scale, width)

		glyph := ui.Cyan(strings.Repeat(barNormal, bar))
		if e.IsCritical {
			glyph = ui.BoldRed(strings.Repeat(barCritical, bar))
		}
		line := strings.Repeat(" ", start) + glyph + ui.Dim(strings.Repeat(barSlack, tail))
		pad := strings.Repeat(" ", width-start-bar-tail)

		fmt.Fprintf(w, "  %s %s%s%s %s\n",
			padLabel(e.Name, labelWidth), ui.Dim("│"), line, pad, ui.Dim("│ "+ui.FormatDays(e.Duration)+"d"))
	}

	fmt.Fprintf(w, "  %s %s\n", strings.Repeat(" ", labelWidth), ui.Dim(axis(width, scale, tickEvery(opts.Unit))))
	fmt.Fprintf(w, "  %s %s%s%s\n", strings.Repeat(" ", labelWidth),
		s.Start, strings.Repeat(" ", max(1, width+2-2*len(s.Start.String()))), s.Finish)
	fmt.Fprintf(w, "\n  %s critical  %s slack  %s float\n",
		ui.BoldRed(barCritical), ui.Cyan(barNormal), ui.Dim(barSlack))
}

// barSpan converts day offsets to column positions. Every bar is at least
// one column wide and nothing extends past width.
func barSpan(es, duration, slack, scale float64, width int) (start, bar, tail int) {
	start = int(math.Round(es * scale))
	end := int(math.Round((es + duration) * scale))
	if end <= start {
		end = start + 1
	}
	if end > width {
		end = width
		if start >= end {
			start = end - 1
		}
	}
	bar = end - start

	slackEnd := int(math.Round((es + duration + slack) * scale))
	if slackEnd > width {
		slackEnd = width
	}
	if slackEnd > end {
		tail = slackEnd - end
	}
	return start, bar, tail
}

func tickEvery(unit string) float64 {
	if unit == "weeks" {
		return 7
	}
	return 1
}

// axis draws the time axis with a tick every step days, skipping ticks that
// would sit closer than two columns apart.
func axis(width int, scale, step float64) string {
	line := []rune("└" + strings.Repeat("─", width) + "┘")
	if step*scale < 2 {
		return string(line)
	}
	for d := step; ; d += step {
		col := int(math.Round(d * scale))
		if col >= width {
			break
		}
		line[col+1] = '┴'
	}
	return string(line)
}

func padLabel(name string, width int) string {
	n := utf8.RuneCountInString(name)
	if n > width {
		return string([]rune(name)[:width-1]) + "…"
	}
	return name + strings.Repeat(" ", width-n)
}
