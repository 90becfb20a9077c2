package tools

import (
	"sync"

	"github.com/chemeval/chemeval/schema"
)

// Registry stores registered tools.
type Registry struct {
	tools map[string]Tool
	names []string
	mutex sync.RWMutex
}

// NewRegistry constructs a registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Registration order is preserved by Names.
func (r *Registry) Register(tool Tool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := tool.Name()
	if name == "" {
		return schema.NewValidationError("tool.name", name, "tool name cannot be empty")
	}

	if _, exists := r.tools[name]; exists {
		return schema.NewToolError(name, "register", schema.ErrToolAlreadyExists)
	}

	r.tools[name] = tool
	r.names = append(r.names, name)
	return nil
}

// Get retrieves a tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]Tool, 0, len(r.names))
	for _, name := range r.names {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]string(nil), r.names...)
}

// Count returns the number of tools.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.tools)
}

// Has reports whether a tool exists.
func (r *Registry) Has(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// GetSchemas returns schemas for all tools.
func (r *Registry) GetSchemas() map[string]*ToolSchema {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemas := make(map[string]*ToolSchema)
	for name, tool := range r.tools {
		schemas[name] = tool.Schema()
	}
	return schemas
}
