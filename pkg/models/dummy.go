package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/agent"
)

// DummyLLM is a lightweight model implementation useful for local testing
// without API calls. As a ToolAgent it routes every query through one tool
// and echoes the result: outline-ish queries go to the outline tool,
// everything else to content search.
type DummyLLM struct {
	Prefix string
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

func (d *DummyLLM) Generate(_ context.Context, prompt string) (any, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

func (d *DummyLLM) GenerateWithTools(ctx context.Context, query, _ string, specs []agent.ToolSpec, exec ToolExecutor) (string, error) {
	name := "search_course_content"
	arguments := map[string]any{"query": query}
	if strings.Contains(strings.ToLower(query), "outline") {
		name = "get_course_outline"
		arguments = map[string]any{}
	}

	available := false
	for _, spec := range specs {
		if spec.Name == name {
			available = true
			break
		}
	}
	if !available {
		return fmt.Sprintf("%s %s", d.Prefix, query), nil
	}

	output := exec(ctx, name, arguments)
	return fmt.Sprintf("%s %s", d.Prefix, output), nil
}

var _ ToolAgent = (*DummyLLM)(nil)
