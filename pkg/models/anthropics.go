package models

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/syllabus-ai/syllabus/pkg/agent"
)

const defaultSystemPrompt = `You are an AI assistant specialized in course materials with access to search and outline tools.

Tool usage:
- Use search_course_content for questions about specific course content or detailed educational materials.
- Use get_course_outline for questions about course structure, lesson lists, or what a course covers.
- Answer course-specific questions from tool results only; do not invent content.
- If a tool finds nothing relevant, say so plainly.

Keep answers brief, concise and focused, and do not mention the tools themselves.`

// maxToolRounds bounds how many sequential tool rounds the model may take
// before it must answer with the results it has.
const maxToolRounds = 2

// AnthropicLLM implements Agent and ToolAgent using Anthropic's Messages API.
type AnthropicLLM struct {
	Client       *anthropic.Client
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// NewAnthropicLLM constructs a client. It reads ANTHROPIC_API_KEY from the env.
func NewAnthropicLLM(model string) *AnthropicLLM {
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	key := os.Getenv("ANTHROPIC_API_KEY")
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	return &AnthropicLLM{
		Client:       &cl,
		Model:        model, // e.g. "claude-3-5-sonnet-latest"
		MaxTokens:    1024,
		SystemPrompt: defaultSystemPrompt,
	}
}

// Generate performs a single-turn completion and returns concatenated text.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string) (any, error) {
	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: a.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, err
	}
	return textContent(msg), nil
}

// GenerateWithTools answers a query with the provided tools available. Tool
// calls requested by the model run through exec and their results are fed
// back as tool_result blocks; after maxToolRounds the model must answer
// with what it has.
func (a *AnthropicLLM) GenerateWithTools(ctx context.Context, query, history string, specs []agent.ToolSpec, exec ToolExecutor) (string, error) {
	system := a.SystemPrompt
	if strings.TrimSpace(history) != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", system, history)
	}

	toolParams := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		toolParams = append(toolParams, anthropic.ToolUnionParam{OfTool: toolParam(spec)})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
	}

	for round := 0; ; round++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(a.Model),
			MaxTokens: int64(a.MaxTokens),
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages:  messages,
		}
		if round < maxToolRounds {
			params.Tools = toolParams
		}

		msg, err := a.Client.Messages.New(ctx, params)
		if err != nil {
			return "", err
		}
		if msg.StopReason != "tool_use" {
			return textContent(msg), nil
		}

		messages = append(messages, msg.ToParam())
		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
			if !ok {
				continue
			}
			var arguments map[string]any
			if err := json.Unmarshal([]byte(toolUse.JSON.Input.Raw()), &arguments); err != nil {
				arguments = map[string]any{}
			}
			output := exec(ctx, toolUse.Name, arguments)
			results = append(results, anthropic.NewToolResultBlock(toolUse.ID, output, false))
		}
		if len(results) == 0 {
			return textContent(msg), nil
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}
}

func toolParam(spec agent.ToolSpec) *anthropic.ToolParam {
	properties, _ := spec.InputSchema["properties"].(map[string]any)
	var required []string
	switch raw := spec.InputSchema["required"].(type) {
	case []string:
		required = raw
	case []any:
		for _, item := range raw {
			if s, ok := item.(string); ok {
				required = append(required, s)
			}
		}
	}
	return &anthropic.ToolParam{
		Name:        spec.Name,
		Description: anthropic.String(spec.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: properties,
			Required:   required,
		},
	}
}

func textContent(msg *anthropic.Message) string {
	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}
