package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/claude"
	"github.com/joshharrison/ganttloom/internal/config"
	"github.com/joshharrison/ganttloom/internal/cpm"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/reporter"
	"github.com/joshharrison/ganttloom/internal/schedule"
	"github.com/joshharrison/ganttloom/internal/server"
	"github.com/joshharrison/ganttloom/internal/task"
	"github.com/joshharrison/ganttloom/internal/tasksfile"
	"github.com/joshharrison/ganttloom/internal/ui"
)

var (
	flagFile    string
	flagStart   string
	flagConfig  string
	flagJSON    bool
	flagNoColor bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttloom",
		Short: "Compute critical path schedules from a task list",
		Long: `Ganttloom reads a list of tasks with durations and dependencies, computes
earliest and latest start and finish times with the critical path method,
and maps the result onto calendar dates starting from a project start date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = c
			ui.SetColor(cfg.ColorEnabled() && !flagNoColor)
			if flagFile == "" {
				flagFile = cfg.Tasks
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Task file (.yaml, .json or .hcl; default from config or tasks.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "Project start date YYYY-MM-DD (default from config or today)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(ganttCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(inferDepsCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// startDate resolves --start over the config file's start date.
func startDate() (calendar.Date, error) {
	if flagStart != "" {
		d, err := calendar.Parse(flagStart)
		if err != nil {
			return calendar.Date{}, fmt.Errorf("--start: %w", err)
		}
		return d, nil
	}
	return cfg.StartDate()
}

// buildSchedule is shared logic for the commands that display a schedule.
func buildSchedule() (*schedule.Schedule, error) {
	start, err := startDate()
	if err != nil {
		return nil, err
	}

	tasks, err := tasksfile.Load(flagFile)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	s, err := schedule.Generate(tasks, start)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	return s, nil
}

func scheduleCmd() *cobra.Command {
	var (
		flagLevels bool
		flagServer string
		flagOutput string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute and print the project schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   *schedule.Schedule
				err error
			)
			if flagServer != "" {
				s, err = remoteSchedule(cmd.Context(), flagServer)
			} else {
				s, err = buildSchedule()
			}
			if err != nil {
				return err
			}

			return writeSchedule(os.Stdout, s, scheduleOutput{
				JSON:   flagJSON || cfg.Format == config.FormatJSON,
				Levels: flagLevels,
				Path:   flagOutput,
			})
		},
	}

	cmd.Flags().BoolVar(&flagLevels, "levels", false, "Group tasks by dependency level")
	cmd.Flags().StringVar(&flagServer, "server", "", "Compute the schedule on a running ganttloom server (e.g. http://localhost:7700)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Also save schedule JSON to file")

	return cmd
}

// scheduleOutput selects how the schedule command renders its result.
type scheduleOutput struct {
	JSON   bool
	Levels bool
	Path   string // JSON copy written here when set
}

// writeSchedule saves the JSON copy first, then prints the schedule to w.
func writeSchedule(w io.Writer, s *schedule.Schedule, out scheduleOutput) error {
	rpt := reporter.New(s)
	if out.Path != "" || out.JSON {
		data, err := rpt.JSON()
		if err != nil {
			return err
		}
		if out.Path != "" {
			if err := os.WriteFile(out.Path, data, 0644); err != nil {
				return fmt.Errorf("write schedule: %w", err)
			}
		}
		if out.JSON {
			_, err := fmt.Fprintln(w, string(data))
			return err
		}
	}

	if out.Levels {
		rpt.PrintLevels(w)
		return nil
	}
	rpt.PrintSchedule(w)
	return nil
}

// remoteSchedule sends the task file to a ganttloom server.
func remoteSchedule(ctx context.Context, addr string) (*schedule.Schedule, error) {
	start, err := startDate()
	if err != nil {
		return nil, err
	}
	tasks, err := tasksfile.Load(flagFile)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return server.PostSchedule(ctx, strings.TrimRight(addr, "/"), server.Request{Start: &start, Tasks: tasks})
}

func ganttCmd() *cobra.Command {
	var (
		flagWidth int
		flagUnit  string
	)

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Print an ASCII Gantt chart of the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSchedule()
			if err != nil {
				return err
			}

			opts := reporter.GanttOptions{Width: cfg.Chart.Width, Unit: cfg.Chart.Unit}
			if cmd.Flags().Changed("width") {
				opts.Width = flagWidth
			}
			if cmd.Flags().Changed("unit") {
				opts.Unit = flagUnit
			}
			reporter.New(s).PrintGantt(os.Stdout, opts)
			return nil
		},
	}

	cmd.Flags().IntVar(&flagWidth, "width", 60, "Chart width in columns")
	cmd.Flags().StringVar(&flagUnit, "unit", "days", "Axis tick unit (days, weeks)")

	return cmd
}

func vizCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Print the task dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSchedule()
			if err != nil {
				return err
			}

			rpt := reporter.New(s)
			switch flagFormat {
			case "dot":
				rpt.PrintDOT(os.Stdout)
			case "ascii":
				rpt.PrintDAG(os.Stdout)
			default:
				return fmt.Errorf("unknown format %q (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the task file for unknown dependencies, cycles and bad durations",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := tasksfile.Load(flagFile)
			if err != nil {
				return reportInvalid(err)
			}

			g, err := graph.Build(tasks)
			if err != nil {
				return reportInvalid(err)
			}
			result, err := cpm.Analyze(g)
			if err != nil {
				return reportInvalid(err)
			}

			isolated := 0
			for _, name := range g.Order {
				if len(g.Adj[name]) == 0 && len(g.RevAdj[name]) == 0 {
					isolated++
				}
			}

			if flagJSON {
				return outputJSON(map[string]any{
					"valid":            true,
					"tasks":            g.TaskCount(),
					"roots":            g.Roots,
					"leaves":           g.Leaves,
					"isolated":         isolated,
					"project_duration": result.ProjectDuration,
				})
			}

			fmt.Printf("%s %s: %s tasks, %d roots, %d leaves, %s days\n",
				ui.Green("✅"), flagFile, ui.Bold(g.TaskCount()), len(g.Roots), len(g.Leaves),
				ui.Bold(ui.FormatDays(result.ProjectDuration)))
			if isolated > 0 && g.TaskCount() > 1 {
				fmt.Printf("   %s %d task(s) have no dependencies and no dependents\n", ui.Yellow("⚠"), isolated)
			}
			return nil
		},
	}
}

// reportInvalid prints a validation failure with its kind and returns it.
func reportInvalid(err error) error {
	if flagJSON {
		outputJSON(map[string]any{"valid": false, "kind": graph.Kind(err), "error": err.Error()})
		return err
	}
	fmt.Printf("%s %s %s\n", ui.Red("❌"), ui.BoldRed(graph.Kind(err)+":"), err)
	return err
}

func addCmd() *cobra.Command {
	var (
		flagName     string
		flagDuration float64
		flagDeps     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a task to the YAML task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := task.Task{Name: strings.TrimSpace(flagName), Duration: flagDuration}
			for _, d := range strings.Split(flagDeps, ",") {
				if d = strings.TrimSpace(d); d != "" {
					t.Dependencies = append(t.Dependencies, d)
				}
			}

			if t.Name == "" {
				return &graph.InvalidTaskError{Task: t.Name, Reason: "--name is required"}
			}
			if !(t.Duration > 0) {
				return &graph.InvalidDurationError{Task: t.Name, Value: strconv.FormatFloat(t.Duration, 'g', -1, 64)}
			}

			if err := tasksfile.Append(flagFile, t); err != nil {
				return err
			}
			fmt.Printf("%s added %s (%s days) to %s\n", ui.Green("✅"), ui.BoldMagenta(t.Name), ui.FormatDays(t.Duration), flagFile)

			// A dependency may name a task that is added later, so only warn.
			tasks, err := tasksfile.Load(flagFile)
			if err != nil {
				return err
			}
			if _, err := graph.Build(tasks); err != nil {
				log.Printf("warning: %s is not yet schedulable: %v", flagFile, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagName, "name", "", "Task name")
	cmd.Flags().Float64Var(&flagDuration, "duration", 0, "Duration in days (may be fractional)")
	cmd.Flags().StringVar(&flagDeps, "deps", "", "Comma separated names of tasks that must finish first")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("duration")

	return cmd
}

func inferDepsCmd() *cobra.Command {
	var (
		flagApply    bool
		flagModel    string
		flagFromFile string
		flagOutput   string
	)

	cmd := &cobra.Command{
		Use:   "infer-deps",
		Short: "Use Claude to infer task dependencies from task names",
		Long: `Sends task names and durations to Claude and infers dependency edges.
By default runs in dry-run mode; use --apply to write deps to the task file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := tasksfile.Load(flagFile)
			if err != nil {
				return fmt.Errorf("load tasks: %w", err)
			}
			if len(tasks) == 0 {
				return fmt.Errorf("no tasks found in %s", flagFile)
			}
			if _, err := graph.Build(tasks); err != nil {
				return fmt.Errorf("task file must be valid before inferring dependencies: %w", err)
			}

			var result *claude.InferDepsResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				result = &claude.InferDepsResult{}
				if err := json.Unmarshal(data, result); err != nil {
					return fmt.Errorf("parse from-file: %w", err)
				}
				fmt.Printf("📂 Loaded %s edges from %s\n", ui.Bold(len(result.Edges)), ui.Dim(flagFromFile))
			} else {
				model := flagModel
				if model == "" {
					model = cfg.Infer.Model
				}
				claudeClient, err := claude.NewClient("", model)
				if err != nil {
					return err
				}

				fmt.Printf("🔍 Sending %s tasks to Claude for dependency inference...\n", ui.Bold(len(tasks)))
				result, err = claudeClient.InferDeps(cmd.Context(), claude.Summaries(tasks))
				if err != nil {
					return fmt.Errorf("infer deps: %w", err)
				}
			}

			accepted, skipped := claude.ValidateEdges(tasks, result.Edges)
			for _, sk := range skipped {
				fmt.Printf("  %s %s -> %s: %s\n", ui.Yellow("⏭️  SKIP:"), sk.Edge.DependsOn, sk.Edge.Task, sk.Reason)
			}

			if flagJSON {
				out := struct {
					Edges   []claude.DepEdge `json:"edges"`
					Summary string           `json:"summary"`
				}{
					Edges:   accepted,
					Summary: result.Summary,
				}
				if flagOutput != "" {
					data, err := json.MarshalIndent(out, "", "  ")
					if err != nil {
						return err
					}
					if err := os.WriteFile(flagOutput, data, 0644); err != nil {
						return err
					}
					fmt.Printf("Wrote %d edges to %s\n", len(accepted), flagOutput)
				} else if err := outputJSON(out); err != nil {
					return err
				}
			} else {
				fmt.Printf("\n🔗 Inferred %s dependencies (%d from Claude, %d after validation):\n\n",
					ui.Bold(len(accepted)), len(result.Edges), len(accepted))
				for _, e := range accepted {
					fmt.Printf("  %s %s after %s  %s\n", ui.Cyan("→"), ui.BoldMagenta(e.Task), ui.BoldMagenta(e.DependsOn), ui.Dim(e.Reason))
				}
				if result.Summary != "" {
					fmt.Printf("\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
				}
			}

			if !flagApply {
				if !flagJSON {
					fmt.Printf("\n🎯 %s\n", ui.Yellow("Dry run: use --apply to write these dependencies to "+flagFile+"."))
				}
				return nil
			}
			if len(accepted) == 0 {
				return nil
			}

			if err := tasksfile.Save(flagFile, claude.ApplyEdges(tasks, accepted)); err != nil {
				return fmt.Errorf("apply deps: %w", err)
			}
			fmt.Printf("\n🏁 Applied %s dependencies to %s.\n", ui.BoldGreen(len(accepted)), flagFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write inferred deps to the task file (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default from config, else Sonnet)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save JSON output to file (use with --json)")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load inferred deps from a JSON file instead of calling Claude")

	return cmd
}

func explainCmd() *cobra.Command {
	var flagModel string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Ask Claude for a narrative review of the critical path and slack",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSchedule()
			if err != nil {
				return err
			}

			// The report sent to Claude must be free of escape codes.
			wasColor := ui.ColorEnabled()
			ui.SetColor(false)
			var buf bytes.Buffer
			reporter.New(s).PrintSchedule(&buf)
			ui.SetColor(wasColor)

			model := flagModel
			if model == "" {
				model = cfg.Infer.Model
			}
			claudeClient, err := claude.NewClient("", model)
			if err != nil {
				return err
			}

			fmt.Printf("🔍 Asking Claude to review %s tasks...\n\n", ui.Bold(s.TotalTasks))
			text, err := claudeClient.ExplainSchedule(cmd.Context(), buf.String())
			if err != nil {
				return fmt.Errorf("explain schedule: %w", err)
			}
			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default from config, else Sonnet)")

	return cmd
}

func serveCmd() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /schedule over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := cfg.Server.Port
			if cmd.Flags().Changed("port") {
				port = flagPort
			}
			if server.IsPortOpen(fmt.Sprintf("localhost:%d", port)) {
				return fmt.Errorf("port %d is already in use", port)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ui.PrintLogo(os.Stderr)
			fmt.Fprintf(os.Stderr, "🌐 Listening on %s\n", ui.BoldCyan(fmt.Sprintf("http://localhost:%d", port)))
			fmt.Fprintf(os.Stderr, "   %s\n", ui.Dim("POST /schedule  GET /healthz  (Ctrl-C to stop)"))

			return server.Serve(ctx, port)
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 7700, "Port to listen on")

	return cmd
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
