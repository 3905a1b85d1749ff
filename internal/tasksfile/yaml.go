package tasksfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

// yamlTask keeps duration and dependencies as raw nodes so that a quoted or
// missing duration is reported as an invalid duration instead of a decode
// failure, and dependencies may be a list or a comma separated string.
type yamlTask struct {
	Name         string    `yaml:"name"`
	Duration     yaml.Node `yaml:"duration"`
	Dependencies yaml.Node `yaml:"dependencies"`
}

type yamlFile struct {
	Tasks []yamlTask `yaml:"tasks"`
}

// fileOut is the layout written by Save.
type fileOut struct {
	Tasks []task.Task `yaml:"tasks"`
}

func parseYAML(data []byte) ([]task.Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil // empty document
	}

	var raw []yamlTask
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case yaml.MappingNode:
		var f yamlFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		raw = f.Tasks
	default:
		return nil, fmt.Errorf("parse yaml: expected a task list or a mapping with a tasks key (line %d)", root.Line)
	}

	tasks := make([]task.Task, 0, len(raw))
	for _, rt := range raw {
		t := task.Task{Name: strings.TrimSpace(rt.Name)}

		d, err := yamlDuration(t.Name, &rt.Duration)
		if err != nil {
			return nil, err
		}
		t.Duration = d

		deps, err := yamlDeps(t.Name, &rt.Dependencies)
		if err != nil {
			return nil, err
		}
		t.Dependencies = deps

		tasks = append(tasks, t)
	}
	return tasks, nil
}

func yamlDuration(name string, n *yaml.Node) (float64, error) {
	if n.Kind == 0 {
		return 0, &graph.InvalidDurationError{Task: name, Value: "missing"}
	}
	if n.Kind != yaml.ScalarNode {
		return 0, &graph.InvalidDurationError{Task: name, Value: fmt.Sprintf("of kind %s (line %d)", kindName(n.Kind), n.Line)}
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		var d float64
		if err := n.Decode(&d); err != nil {
			return 0, &graph.InvalidDurationError{Task: name, Value: fmt.Sprintf("%q", n.Value)}
		}
		return d, nil
	default:
		return 0, &graph.InvalidDurationError{Task: name, Value: fmt.Sprintf("%q", n.Value)}
	}
}

func yamlDeps(name string, n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return splitDeps(n.Value), nil
	case yaml.SequenceNode:
		var deps []string
		if err := n.Decode(&deps); err != nil {
			return nil, fmt.Errorf("task %q: dependencies (line %d): %w", name, n.Line, err)
		}
		out := deps[:0]
		for _, d := range deps {
			if d = strings.TrimSpace(d); d != "" {
				out = append(out, d)
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	default:
		return nil, fmt.Errorf("task %q: dependencies must be a list or a comma separated string (line %d)", name, n.Line)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// Save writes tasks to path as YAML.
func Save(path string, tasks []task.Task) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format != FormatYAML {
		return fmt.Errorf("%w: only YAML task files can be written (%s)", ErrUnsupportedFormat, path)
	}

	data, err := yaml.Marshal(fileOut{Tasks: tasks})
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Append adds t to the YAML task file at path, creating the file if needed.
// A task whose name is already present is rejected.
func Append(path string, t task.Task) error {
	tasks, err := Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for _, existing := range tasks {
		if existing.Name == t.Name {
			return &graph.InvalidTaskError{Task: t.Name, Reason: "task already exists in " + path}
		}
	}

	return Save(path, append(tasks, t))
}
