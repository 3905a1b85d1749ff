// Package tasksfile reads and writes task lists stored as YAML, JSON or HCL.
//
// JSON input is read leniently so that exports of the Gantt web form
// ("Nom", "Durée", "Dépendances") load without conversion, and dependency
// lists may be given as a comma separated string.
package tasksfile

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshharrison/ganttloom/internal/task"
)

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

// ErrUnsupportedFormat is returned for file extensions with no reader.
var ErrUnsupportedFormat = errors.New("unsupported task file format")

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %s (use .yaml, .json or .hcl)", ErrUnsupportedFormat, path)
	}
}

// Load reads a task list from path.
func Load(path string) ([]task.Task, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	tasks, err := Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// Parse decodes a task list in the given format.
func Parse(format string, data []byte) ([]task.Task, error) {
	var (
		tasks []task.Task
		err   error
	)
	switch format {
	case FormatYAML:
		tasks, err = parseYAML(data)
	case FormatJSON:
		tasks, err = parseJSON(data)
	case FormatHCL:
		tasks, err = parseHCL(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Dependencies = dedupe(tasks[i].Name, tasks[i].Dependencies)
	}
	return tasks, nil
}

// splitDeps splits the comma separated dependency input of the Gantt web form.
func splitDeps(s string) []string {
	var deps []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			deps = append(deps, d)
		}
	}
	return deps
}

func dedupe(name string, deps []string) []string {
	if len(deps) < 2 {
		return deps
	}
	seen := make(map[string]bool, len(deps))
	out := deps[:0]
	for _, d := range deps {
		if seen[d] {
			log.Printf("warning: task %q lists dependency %q more than once", name, d)
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
