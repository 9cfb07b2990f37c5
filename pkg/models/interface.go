package models

import (
	"context"

	"github.com/syllabus-ai/syllabus/pkg/agent"
)

// Agent is the minimal text-generation contract.
type Agent interface {
	Generate(context.Context, string) (any, error)
}

// ToolExecutor dispatches one named tool call and returns its text result.
// Failures arrive as text on the same channel; the executor never errors.
type ToolExecutor func(ctx context.Context, name string, arguments map[string]any) string

// ToolAgent generates answers with access to callable tools. The model
// decides when to call; the executor carries the call to the dispatcher.
type ToolAgent interface {
	Agent
	GenerateWithTools(ctx context.Context, query, history string, specs []agent.ToolSpec, exec ToolExecutor) (string, error)
}
