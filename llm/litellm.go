package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voocel/litellm"

	"github.com/chemeval/chemeval/schema"
)

// LiteLLMAdapter implements ChatModel on top of the litellm client.
// The provider is selected from the model name prefix.
type LiteLLMAdapter struct {
	client *litellm.Client
	config ProviderConfig
}

// ProviderConfig configures a LiteLLM-backed model.
type ProviderConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// DefaultProviderConfig returns a default provider configuration.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.0,
		MaxTokens:   4000,
	}
}

// NewLiteLLMAdapter creates an adapter for the given configuration.
func NewLiteLLMAdapter(config ProviderConfig) *LiteLLMAdapter {
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultProviderConfig().MaxTokens
	}

	var opt litellm.ClientOption
	switch providerFor(config.Model) {
	case "anthropic":
		if config.BaseURL != "" {
			opt = litellm.WithAnthropic(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithAnthropic(config.APIKey)
		}
	case "google":
		if config.BaseURL != "" {
			opt = litellm.WithGemini(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithGemini(config.APIKey)
		}
	default:
		if config.BaseURL != "" {
			opt = litellm.WithOpenAI(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithOpenAI(config.APIKey)
		}
	}

	client := litellm.New(opt, litellm.WithDefaults(config.MaxTokens, config.Temperature))
	return &LiteLLMAdapter{client: client, config: config}
}

// Generate performs a single chat completion.
func (a *LiteLLMAdapter) Generate(ctx context.Context, req *Request) (*Response, error) {
	litellmReq := &litellm.Request{
		Model:    a.config.Model,
		Messages: a.convertMessages(req.Messages),
		Tools:    convertToolSpecs(req.Tools),
	}
	if a.config.Temperature != 0 {
		litellmReq.Temperature = litellm.Float64Ptr(a.config.Temperature)
	}
	if a.config.MaxTokens != 0 {
		litellmReq.MaxTokens = litellm.IntPtr(a.config.MaxTokens)
	}

	resp, err := a.client.Complete(ctx, litellmReq)
	if err != nil {
		return nil, fmt.Errorf("litellm chat completion failed: %w", err)
	}

	msg, usage := a.convertResponse(resp)
	return &Response{
		Message:      msg,
		Usage:        usage,
		FinishReason: resp.FinishReason,
		ModelInfo:    a.Info(),
	}, nil
}

// SupportsTools reports whether the configured model can call tools.
func (a *LiteLLMAdapter) SupportsTools() bool {
	return supportsToolCalling(a.config.Model)
}

// Info returns basic model information.
func (a *LiteLLMAdapter) Info() ModelInfo {
	caps := []string{"chat", "completion"}
	if supportsToolCalling(a.config.Model) {
		caps = append(caps, "tool_calling")
	}
	return ModelInfo{
		Name:         a.config.Model,
		Provider:     providerFor(a.config.Model),
		MaxTokens:    a.config.MaxTokens,
		Capabilities: caps,
	}
}

func (a *LiteLLMAdapter) convertMessages(messages []schema.Message) []litellm.Message {
	result := make([]litellm.Message, 0, len(messages))
	for _, msg := range messages {
		m := litellm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == schema.RoleTool {
			m.ToolCallID = msg.ID
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, litellm.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: litellm.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Args),
				},
			})
		}
		result = append(result, m)
	}
	return result
}

func (a *LiteLLMAdapter) convertResponse(resp *litellm.Response) (schema.Message, TokenUsage) {
	msg := schema.Message{
		Role:    schema.RoleAssistant,
		Content: resp.Content,
	}
	for _, tc := range resp.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: json.RawMessage(args),
		})
	}
	usage := TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return msg, usage
}

func convertToolSpecs(specs []ToolSpec) []litellm.Tool {
	if len(specs) == 0 {
		return nil
	}
	result := make([]litellm.Tool, len(specs))
	for i, spec := range specs {
		result[i] = litellm.Tool{
			Type: "function",
			Function: litellm.FunctionSchema{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		}
	}
	return result
}

func providerFor(model string) string {
	switch {
	case hasAnyPrefix(model, "claude"):
		return "anthropic"
	case hasAnyPrefix(model, "gemini"):
		return "google"
	default:
		return "openai"
	}
}

func supportsToolCalling(model string) bool {
	return hasAnyPrefix(model,
		"gpt-4", "gpt-5", "o3", "o4",
		"claude-3", "claude-4", "claude-sonnet", "claude-opus", "claude-haiku",
		"gemini-2", "gemini-1.5",
	)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
