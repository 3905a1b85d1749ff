package tasksfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

// Accepted keys, in lookup order. The French keys match the Gantt web form.
var (
	nameKeys     = []string{"name", "Nom", "task", "Task"}
	durationKeys = []string{"duration", "Durée", "Duree", "days"}
	depsKeys     = []string{"dependencies", "Dépendances", "Dependances", "depends_on", "deps"}
)

func parseJSON(data []byte) ([]task.Task, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("parse json: invalid JSON")
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("tasks")
	}
	if !list.IsArray() {
		return nil, errors.New("parse json: expected a task array or an object with a tasks array")
	}

	items := list.Array()
	tasks := make([]task.Task, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("parse json: task #%d is not an object", i+1)
		}

		t := task.Task{Name: strings.TrimSpace(firstOf(item, nameKeys).String())}

		dur := firstOf(item, durationKeys)
		switch {
		case !dur.Exists():
			return nil, &graph.InvalidDurationError{Task: t.Name, Value: "missing"}
		case dur.Type != gjson.Number:
			return nil, &graph.InvalidDurationError{Task: t.Name, Value: dur.Raw}
		}
		t.Duration = dur.Float()

		deps := firstOf(item, depsKeys)
		switch {
		case deps.IsArray():
			for _, d := range deps.Array() {
				if d.Type != gjson.String {
					return nil, depsError(t.Name, deps)
				}
				if name := strings.TrimSpace(d.String()); name != "" {
					t.Dependencies = append(t.Dependencies, name)
				}
			}
		case deps.Type == gjson.String:
			t.Dependencies = splitDeps(deps.String())
		case deps.Exists() && deps.Type != gjson.Null:
			return nil, depsError(t.Name, deps)
		}

		tasks = append(tasks, t)
	}
	return tasks, nil
}

func depsError(name string, deps gjson.Result) error {
	return fmt.Errorf("task %q: dependencies must be an array of names or a comma separated string, got %s", name, deps.Raw)
}

func firstOf(item gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if r := item.Get(gjson.Escape(k)); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
