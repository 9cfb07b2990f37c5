package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
)

func TestAsUTCPToolsConversion(t *testing.T) {
	tool := &stubTool{name: "lookup", content: "result text"}
	catalog, err := NewToolCatalog(tool)
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}

	converted := catalog.AsUTCPTools("syllabus")
	if len(converted) != 1 {
		t.Fatalf("expected 1 UTCP tool, got %d", len(converted))
	}

	ut := converted[0]
	if ut.Name != "syllabus.lookup" {
		t.Fatalf("tool name = %q", ut.Name)
	}
	if ut.Inputs.Type != "object" {
		t.Fatalf("input schema type = %q", ut.Inputs.Type)
	}
	if ut.Handler == nil {
		t.Fatal("handler is nil")
	}

	out, err := ut.Handler(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if out != "result text" {
		t.Fatalf("handler output = %v", out)
	}
}

func TestCatalogRegisterAsUTCPProvider(t *testing.T) {
	ctx := context.Background()
	tool := &stubTool{name: "lookup", content: "lookup result"}
	catalog, err := NewToolCatalog(tool)
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}

	client, err := utcp.NewUTCPClient(ctx, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to create utcp client: %v", err)
	}

	if err := catalog.RegisterAsUTCPProvider(ctx, client, "syllabus"); err != nil {
		t.Fatalf("register as utcp provider: %v", err)
	}

	out, err := client.CallTool(ctx, "syllabus.lookup", map[string]any{"query": "ping"})
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if !strings.Contains(fmt.Sprint(out), "lookup result") {
		t.Fatalf("expected dispatched tool output, got %#v", out)
	}
	if tool.calls != 1 {
		t.Fatalf("tool invoked %d times, want 1", tool.calls)
	}
}

func TestSchemaRequired(t *testing.T) {
	if got := schemaRequired(map[string]any{"required": []string{"query"}}); len(got) != 1 || got[0] != "query" {
		t.Fatalf("[]string form = %v", got)
	}
	if got := schemaRequired(map[string]any{"required": []any{"a", "b"}}); len(got) != 2 {
		t.Fatalf("[]any form = %v", got)
	}
	if got := schemaRequired(map[string]any{}); got != nil {
		t.Fatalf("missing form = %v", got)
	}
}
