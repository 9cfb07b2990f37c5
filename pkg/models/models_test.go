package models

import (
	"context"
	"testing"

	"github.com/syllabus-ai/syllabus/pkg/agent"
)

func TestNewDummyLLMDefaultPrefix(t *testing.T) {
	llm := NewDummyLLM("")
	resp, err := llm.Generate(context.Background(), "line1\nline2")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := resp.(string); got != "Dummy response: line2" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestNewDummyLLMUsesLastNonEmptyLine(t *testing.T) {
	llm := NewDummyLLM("Prefix:")
	resp, err := llm.Generate(context.Background(), "first\n\nsecond\n  \nthird")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := resp.(string); got != "Prefix: third" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestNewLLMProviderErrorsOnUnknownProvider(t *testing.T) {
	if _, err := NewLLMProvider(context.Background(), "unknown", "model"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestDummyLLMHandlesEmptyPrompt(t *testing.T) {
	llm := NewDummyLLM("Prefix")
	resp, err := llm.Generate(context.Background(), "\n\n\n")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := resp.(string); got != "Prefix <empty prompt>" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func toolSpecs() []agent.ToolSpec {
	return []agent.ToolSpec{
		{Name: "search_course_content"},
		{Name: "get_course_outline"},
	}
}

func TestDummyLLMRoutesSearch(t *testing.T) {
	llm := NewDummyLLM("A:")

	var calledName string
	var calledArgs map[string]any
	exec := func(_ context.Context, name string, args map[string]any) string {
		calledName = name
		calledArgs = args
		return "tool output"
	}

	answer, err := llm.GenerateWithTools(context.Background(), "what is a transport?", "", toolSpecs(), exec)
	if err != nil {
		t.Fatalf("GenerateWithTools returned error: %v", err)
	}
	if calledName != "search_course_content" {
		t.Fatalf("routed to %q", calledName)
	}
	if calledArgs["query"] != "what is a transport?" {
		t.Fatalf("query argument = %v", calledArgs["query"])
	}
	if answer != "A: tool output" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestDummyLLMRoutesOutline(t *testing.T) {
	llm := NewDummyLLM("A:")

	var calledName string
	exec := func(_ context.Context, name string, args map[string]any) string {
		calledName = name
		return "catalog"
	}

	if _, err := llm.GenerateWithTools(context.Background(), "give me the course outline", "", toolSpecs(), exec); err != nil {
		t.Fatalf("GenerateWithTools returned error: %v", err)
	}
	if calledName != "get_course_outline" {
		t.Fatalf("routed to %q", calledName)
	}
}

func TestDummyLLMWithoutMatchingTool(t *testing.T) {
	llm := NewDummyLLM("A:")

	exec := func(_ context.Context, name string, args map[string]any) string {
		t.Fatalf("executor must not run, got call for %q", name)
		return ""
	}

	answer, err := llm.GenerateWithTools(context.Background(), "anything", "", nil, exec)
	if err != nil {
		t.Fatalf("GenerateWithTools returned error: %v", err)
	}
	if answer != "A: anything" {
		t.Fatalf("answer = %q", answer)
	}
}
