package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/chemeval/chemeval/schema"
)

// Invoker executes tool calls.
type Invoker interface {
	Invoke(ctx context.Context, registry *Registry, calls []schema.ToolCall) ([]schema.ToolResult, error)
}

// SerialInvoker executes tools serially, preserving call order.
type SerialInvoker struct{}

// NewSerialInvoker creates a serial invoker.
func NewSerialInvoker() *SerialInvoker {
	return &SerialInvoker{}
}

func (i *SerialInvoker) Invoke(ctx context.Context, registry *Registry, calls []schema.ToolCall) ([]schema.ToolResult, error) {
	results := make([]schema.ToolResult, len(calls))
	var firstErr error
	for idx, call := range calls {
		result, err := executeToolCall(ctx, registry, call)
		results[idx] = result
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}

func executeToolCall(ctx context.Context, registry *Registry, call schema.ToolCall) (schema.ToolResult, error) {
	if registry == nil {
		return schema.ToolResult{ID: call.ID, Error: "tool registry is nil"}, errors.New("tool registry is nil")
	}

	tool, exists := registry.Get(call.Name)
	if !exists {
		err := schema.NewToolError(call.Name, "execute", schema.ErrToolNotFound)
		return schema.ToolResult{ID: call.ID, Error: err.Error()}, err
	}

	if validator, ok := tool.(interface {
		ValidateInput(json.RawMessage) error
	}); ok {
		if err := validator.ValidateInput(call.Args); err != nil {
			return schema.ToolResult{ID: call.ID, Error: err.Error()}, err
		}
	}

	execCtx := ctx
	if cfg := getToolConfig(tool); cfg != nil && cfg.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	result, err := tool.Execute(execCtx, call.Args)
	toolResult := schema.ToolResult{ID: call.ID, Result: result}
	if err != nil {
		toolResult.Error = err.Error()
	}

	return toolResult, err
}

func getToolConfig(tool Tool) *ToolConfig {
	type configGetter interface {
		Config() *ToolConfig
	}
	if getter, ok := tool.(configGetter); ok {
		if cfg := getter.Config(); cfg != nil {
			return cfg
		}
	}
	return cloneToolConfig(DefaultToolConfig)
}
