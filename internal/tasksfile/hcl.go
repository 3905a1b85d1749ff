package tasksfile

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/task"
)

// hclFile is the layout of an HCL task file:
//
//	task "build" {
//	  duration   = 3
//	  depends_on = ["design"]
//	}
type hclFile struct {
	Tasks []hclTask `hcl:"task,block"`
}

type hclTask struct {
	Name      string    `hcl:"name,label"`
	Duration  cty.Value `hcl:"duration,optional"`
	DependsOn []string  `hcl:"depends_on,optional"`
}

func parseHCL(data []byte) ([]task.Task, error) {
	var f hclFile
	if err := hclsimple.Decode("tasks.hcl", data, nil, &f); err != nil {
		return nil, fmt.Errorf("parse hcl: %w", err)
	}

	tasks := make([]task.Task, 0, len(f.Tasks))
	for _, ht := range f.Tasks {
		t := task.Task{Name: strings.TrimSpace(ht.Name)}

		d, err := ctyDuration(t.Name, ht.Duration)
		if err != nil {
			return nil, err
		}
		t.Duration = d

		for _, dep := range ht.DependsOn {
			t.Dependencies = append(t.Dependencies, splitDeps(dep)...)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func ctyDuration(name string, v cty.Value) (float64, error) {
	if v.IsNull() {
		return 0, &graph.InvalidDurationError{Task: name, Value: "missing"}
	}
	if !v.IsKnown() || !v.Type().Equals(cty.Number) {
		return 0, &graph.InvalidDurationError{Task: name, Value: "of type " + v.Type().FriendlyName()}
	}
	d, _ := v.AsBigFloat().Float64()
	return d, nil
}
