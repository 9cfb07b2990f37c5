package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ToolCatalog is the in-memory registry that routes named calls to tools
// and aggregates their source side-channel. It assumes one
// dispatch/collect/reset cycle completes before the next begins; callers
// sharing a catalog across concurrent agent turns need their own instances.
type ToolCatalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]ToolSpec
	order []string
}

// NewToolCatalog constructs a catalog seeded with the provided tools.
// Registration errors indicate tool construction bugs and are fatal here.
func NewToolCatalog(tools ...Tool) (*ToolCatalog, error) {
	catalog := &ToolCatalog{
		tools: make(map[string]Tool),
		specs: make(map[string]ToolSpec),
	}
	for _, tool := range tools {
		if err := catalog.Register(tool); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// Register adds a tool under its spec name using a lower-cased key.
// Re-registering an existing name replaces the prior tool in place;
// the name keeps its original position in registration order.
func (c *ToolCatalog) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[key]; !exists {
		c.order = append(c.order, key)
	}
	c.tools[key] = tool
	c.specs[key] = spec
	return nil
}

// Lookup returns the tool and its specification if present.
func (c *ToolCatalog) Lookup(name string) (Tool, ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	tool, ok := c.tools[key]
	if !ok {
		return nil, ToolSpec{}, false
	}
	return tool, c.specs[key], true
}

// Specs returns a snapshot of the tool specifications in registration order.
func (c *ToolCatalog) Specs() []ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}

// Tools returns the registered tools in registration order.
func (c *ToolCatalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		tools = append(tools, c.tools[key])
	}
	return tools
}

// Dispatch routes a named call to the matching tool and returns its text.
// Every failure mode comes back as text on the same channel the tools use;
// callers never see an error value from a dispatch.
func (c *ToolCatalog) Dispatch(ctx context.Context, name string, arguments map[string]any) string {
	tool, _, ok := c.Lookup(name)
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}
	response, err := tool.Invoke(ctx, ToolRequest{Arguments: arguments})
	if err != nil {
		return err.Error()
	}
	return response.Content
}

// CollectSources returns the sources recorded during the current turn: the
// first tool, in registration order, with a non-empty list. At most one
// tool produces sources per turn; if several did, later ones are shadowed.
func (c *ToolCatalog) CollectSources() []Source {
	for _, tool := range c.Tools() {
		if sources := tool.LastSources(); len(sources) > 0 {
			return sources
		}
	}
	return nil
}

// ResetSources clears every tool's source list. Safe to call repeatedly.
func (c *ToolCatalog) ResetSources() {
	for _, tool := range c.Tools() {
		tool.ResetSources()
	}
}
