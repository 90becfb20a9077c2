package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chemeval/chemeval/schema"
)

// Tool defines the tool interface.
type Tool interface {
	Name() string
	Description() string
	Schema() *ToolSchema
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// ToolSchema describes a tool JSON schema.
type ToolSchema struct {
	Type        string                 `json:"type"`
	Properties  map[string]interface{} `json:"properties"`
	Required    []string               `json:"required"`
	Description string                 `json:"description"`
}

// ToolConfig configures tool execution.
type ToolConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// DefaultToolConfig provides default configuration.
var DefaultToolConfig = &ToolConfig{
	Timeout: 120 * time.Second,
}

// BaseTool provides shared tool functionality.
type BaseTool struct {
	name        string
	description string
	schema      *ToolSchema
	config      *ToolConfig
}

// NewBaseTool creates a base tool.
func NewBaseTool(name, description string, schema *ToolSchema) *BaseTool {
	return &BaseTool{
		name:        name,
		description: description,
		schema:      schema,
		config:      cloneToolConfig(DefaultToolConfig),
	}
}

func (t *BaseTool) Name() string {
	return t.name
}

func (t *BaseTool) Description() string {
	return t.description
}

func (t *BaseTool) Schema() *ToolSchema {
	return t.schema
}

func (t *BaseTool) Config() *ToolConfig {
	if t.config == nil {
		t.config = cloneToolConfig(DefaultToolConfig)
	}
	return t.config
}

func (t *BaseTool) SetConfig(config *ToolConfig) {
	t.config = cloneToolConfig(config)
}

// Execute is a default implementation and should be overridden.
func (t *BaseTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return nil, schema.NewToolError(t.name, "execute", schema.ErrToolExecutionFailed)
}

func cloneToolConfig(config *ToolConfig) *ToolConfig {
	if config == nil {
		return nil
	}
	clone := *config
	return &clone
}

// FuncTool wraps a function as a Tool.
type FuncTool struct {
	*BaseTool
	fn func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// NewFuncTool creates a tool from a function.
func NewFuncTool(name, description string, toolSchema *ToolSchema, fn func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)) *FuncTool {
	return &FuncTool{
		BaseTool: NewBaseTool(name, description, toolSchema),
		fn:       fn,
	}
}

func (t *FuncTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return t.fn(ctx, input)
}

// CreateToolSchema builds a tool schema from properties and required fields.
func CreateToolSchema(description string, properties map[string]interface{}, required []string) *ToolSchema {
	return &ToolSchema{
		Type:        "object",
		Properties:  properties,
		Required:    required,
		Description: description,
	}
}

// StringProperty creates a string property schema.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// NumberProperty creates a number property schema.
func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// BooleanProperty creates a boolean property schema.
func BooleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

// EnumProperty creates a string property schema restricted to values.
func EnumProperty(description string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// ObjectProperty creates an object property schema.
func ObjectProperty(description string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties":  properties,
	}
}

// ArrayProperty creates an array property schema.
func ArrayProperty(description string, items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       items,
	}
}
