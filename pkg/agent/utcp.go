package agent

import (
	"context"
	"fmt"
	"strings"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/cli"
	"github.com/universal-tool-calling-protocol/go-utcp/src/repository"
	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"github.com/universal-tool-calling-protocol/go-utcp/src/transports"
)

// catalogCLITransport routes UTCP CallTool invocations for a registered
// catalog provider to in-process handlers instead of spawning a process.
type catalogCLITransport struct {
	inner repository.ClientTransport
	tools map[string][]utcptools.Tool
}

func (t *catalogCLITransport) RegisterToolProvider(ctx context.Context, prov base.Provider) ([]utcptools.Tool, error) {
	p, ok := prov.(*cli.CliProvider)
	if !ok {
		if t.inner != nil {
			return t.inner.RegisterToolProvider(ctx, prov)
		}
		return nil, fmt.Errorf("unsupported provider type %T", prov)
	}
	if t.tools == nil {
		t.tools = make(map[string][]utcptools.Tool)
	}
	list, ok := t.tools[p.Name]
	if !ok {
		if t.inner != nil {
			return t.inner.RegisterToolProvider(ctx, prov)
		}
		return nil, fmt.Errorf("catalog tools not found for provider %s", p.Name)
	}
	return list, nil
}

func (t *catalogCLITransport) DeregisterToolProvider(ctx context.Context, prov base.Provider) error {
	if p, ok := prov.(*cli.CliProvider); ok {
		if _, ok := t.tools[p.Name]; ok {
			delete(t.tools, p.Name)
			return nil
		}
	}
	if t.inner != nil {
		return t.inner.DeregisterToolProvider(ctx, prov)
	}
	return nil
}

func (t *catalogCLITransport) CallTool(ctx context.Context, toolName string, args map[string]any, prov base.Provider, _ *string) (any, error) {
	if p, ok := prov.(*cli.CliProvider); ok {
		if list, ok := t.tools[p.Name]; ok {
			for _, tool := range list {
				if tool.Name == toolName || strings.HasSuffix(tool.Name, "."+toolName) {
					if tool.Handler == nil {
						return nil, fmt.Errorf("tool %s has no handler", toolName)
					}
					return tool.Handler(ctx, args)
				}
			}
		}
		if t.inner != nil {
			return t.inner.CallTool(ctx, toolName, args, prov, nil)
		}
		return nil, fmt.Errorf("tool %s not found for provider %s", toolName, p.Name)
	}
	if t.inner != nil {
		return t.inner.CallTool(ctx, toolName, args, prov, nil)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

func (t *catalogCLITransport) CallToolStream(ctx context.Context, toolName string, args map[string]any, prov base.Provider) (transports.StreamResult, error) {
	if p, ok := prov.(*cli.CliProvider); ok {
		if _, ok := t.tools[p.Name]; ok {
			return nil, fmt.Errorf("streaming not supported for tool %s (provider %s)", toolName, p.Name)
		}
	}
	if t.inner != nil {
		return t.inner.CallToolStream(ctx, toolName, args, prov)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

// AsUTCPTools converts every registered tool into a UTCP tool with an
// in-process handler. Handlers route through Dispatch, so failures come
// back as text the same way they do for the language model.
func (c *ToolCatalog) AsUTCPTools(providerName string) []utcptools.Tool {
	specs := c.Specs()
	converted := make([]utcptools.Tool, 0, len(specs))
	for _, spec := range specs {
		converted = append(converted, c.asUTCPTool(providerName, spec))
	}
	return converted
}

func (c *ToolCatalog) asUTCPTool(providerName string, spec ToolSpec) utcptools.Tool {
	name := spec.Name
	return utcptools.Tool{
		Name:        fmt.Sprintf("%s.%s", providerName, name),
		Description: spec.Description,
		Provider: &base.BaseProvider{
			Name:         providerName,
			ProviderType: base.ProviderCLI, // in-process handler, no remote transport
		},
		Inputs: utcptools.ToolInputOutputSchema{
			Type:       "object",
			Properties: schemaProperties(spec.InputSchema),
			Required:   schemaRequired(spec.InputSchema),
		},
		Outputs: utcptools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"result": map[string]any{"type": "string"},
			},
		},
		Handler: utcptools.ToolHandler(func(ctx context.Context, inputs map[string]interface{}) (any, error) {
			execCtx := ctx
			if execCtx == nil {
				execCtx = context.Background()
			}
			return c.Dispatch(execCtx, name, inputs), nil
		}),
	}
}

// RegisterAsUTCPProvider registers the catalog's tools as a UTCP provider
// on the given client, installing an in-process CLI transport shim that
// routes CallTool invocations straight to the dispatcher.
func (c *ToolCatalog) RegisterAsUTCPProvider(ctx context.Context, client utcp.UtcpClientInterface, providerName string) error {
	if client == nil {
		return fmt.Errorf("utcp client is nil")
	}
	providerName = strings.TrimSpace(providerName)
	if providerName == "" {
		return fmt.Errorf("provider name is empty")
	}

	tp := &cli.CliProvider{
		BaseProvider: base.BaseProvider{
			Name:         providerName,
			ProviderType: base.ProviderCLI,
		},
	}

	transportsMap := client.GetTransports()
	if transportsMap == nil {
		return fmt.Errorf("utcp client transports map is nil")
	}

	existing := transportsMap[string(base.ProviderCLI)]
	var shim *catalogCLITransport
	if maybe, ok := existing.(*catalogCLITransport); ok {
		shim = maybe
	} else {
		shim = &catalogCLITransport{inner: existing}
		transportsMap[string(base.ProviderCLI)] = shim
	}
	if shim.tools == nil {
		shim.tools = make(map[string][]utcptools.Tool)
	}
	shim.tools[tp.Name] = c.AsUTCPTools(providerName)

	_, err := client.RegisterToolProvider(ctx, tp)
	return err
}

func schemaProperties(schema map[string]any) map[string]any {
	if props, ok := schema["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}

func schemaRequired(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, entry := range req {
			if s, ok := entry.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
