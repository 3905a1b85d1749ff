package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/ganttloom/internal/task"
)

// TaskSummary is the task info sent to Claude for dependency inference.
type TaskSummary struct {
	Name         string   `json:"name"`
	Duration     float64  `json:"duration"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// DepEdge is a single inferred dependency.
type DepEdge struct {
	Task      string `json:"task"`       // task that waits
	DependsOn string `json:"depends_on"` // task that must finish first
	Reason    string `json:"reason"`
}

// InferDepsResult holds the full response from Claude.
type InferDepsResult struct {
	Edges   []DepEdge `json:"edges"`
	Summary string    `json:"summary"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to Claude Sonnet.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.ModelClaudeSonnet4_6
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{inner: inner, model: m}, nil
}

// Summaries converts tasks to the form sent in prompts.
func Summaries(tasks []task.Task) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	for i, t := range tasks {
		out[i] = TaskSummary{Name: t.Name, Duration: t.Duration, Dependencies: t.Dependencies}
	}
	return out
}

const inferDepsPrompt = `You are an experienced project planner. Given a list of project tasks with their durations in days, infer the dependency edges between them.

Rules:
- Only add a dependency when there is a strong causal reason (task B cannot start until task A is complete).
- Prefer fewer edges. Do not add transitive or speculative dependencies.
- Keep every dependency already listed on a task; only add new ones.
- Do not create cycles.
- Only use task names from the provided list, spelled exactly as given.
- A task cannot depend on itself.

Return your answer as JSON with this exact structure:
{
  "edges": [
    {"task": "<task that waits>", "depends_on": "<task that must finish first>", "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph summary of the dependency structure>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the tasks:
`

// buildPrompt constructs the full prompt for dependency inference.
func buildPrompt(tasks []TaskSummary) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return inferDepsPrompt + string(data), nil
}

// InferDeps calls the Claude API to infer task dependencies.
func (c *Client) InferDeps(ctx context.Context, tasks []TaskSummary) (*InferDepsResult, error) {
	prompt, err := buildPrompt(tasks)
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	return parseInferDeps(text)
}

// parseInferDeps decodes a dependency inference response, tolerating
// markdown fences around the JSON.
func parseInferDeps(text string) (*InferDepsResult, error) {
	text = stripJSONFences(text)

	var result InferDepsResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w\nraw: %s", err, text)
	}
	for i := range result.Edges {
		result.Edges[i].Task = strings.TrimSpace(result.Edges[i].Task)
		result.Edges[i].DependsOn = strings.TrimSpace(result.Edges[i].DependsOn)
	}
	return &result, nil
}

const explainSchedulePrompt = `You are a project manager reviewing a computed project schedule.

You will receive the schedule report: start and finish dates, every task with its earliest and latest dates and slack in days, and the critical path.

Produce a short narrative covering:
- Which chain of tasks drives the finish date and why.
- Which tasks have the most slack and could absorb delays.
- The biggest scheduling risks.

Keep it concise: a short paragraph per point. Do not repeat the table verbatim.
`

// ExplainSchedule sends a rendered schedule report to Claude and returns a
// human-readable review of the critical path and slack.
func (c *Client) ExplainSchedule(ctx context.Context, report string) (string, error) {
	var userContent strings.Builder
	userContent.WriteString("## Schedule\n\n")
	userContent.WriteString(report)

	text, err := c.complete(ctx, explainSchedulePrompt, userContent.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// complete sends a single user message and returns the concatenated text blocks.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(4096),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	// Remove ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		// Strip opening fence line
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
