package llm

import (
	"context"

	"github.com/chemeval/chemeval/schema"
)

// ChatModel is the unified model interface that accepts explicit requests
// and returns unified responses.
type ChatModel interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	SupportsTools() bool
	Info() ModelInfo
}

// Request encapsulates a single generation request.
type Request struct {
	Messages   []schema.Message  `json:"messages"`
	Tools      []ToolSpec        `json:"tools,omitempty"`
	ToolChoice *ToolChoiceOption `json:"tool_choice,omitempty"`
}

// Response encapsulates model output and metadata.
type Response struct {
	Message      schema.Message `json:"message"`
	Usage        TokenUsage     `json:"usage"`
	FinishReason string         `json:"finish_reason"`
	ModelInfo    ModelInfo      `json:"model_info"`
}

// ToolSpec describes a functional tool that can be called by the model.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// ToolChoiceOption describes the tool selection strategy.
// Type: auto/none/required/function; when set to function, use Name to
// specify the function name.
type ToolChoiceOption struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// ModelInfo basic model information.
type ModelInfo struct {
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	MaxTokens    int      `json:"max_tokens"`
	Capabilities []string `json:"capabilities"`
}

// TokenUsage statistics.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates usage from another sample.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
