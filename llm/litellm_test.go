package llm

import (
	"testing"

	"github.com/voocel/litellm"

	"github.com/chemeval/chemeval/schema"
)

func TestLiteLLMAdapter_Creation(t *testing.T) {
	adapter := NewLiteLLMAdapter(ProviderConfig{Model: "gpt-4o-mini"})
	if adapter.Info().Name != "gpt-4o-mini" {
		t.Errorf("expected model name 'gpt-4o-mini', got %s", adapter.Info().Name)
	}
	if adapter.Info().Provider != "openai" {
		t.Errorf("expected provider 'openai', got %s", adapter.Info().Provider)
	}
}

func TestLiteLLMAdapter_ProviderRouting(t *testing.T) {
	tests := []struct {
		model    string
		provider string
	}{
		{"gpt-4o-mini", "openai"},
		{"claude-3.5-haiku", "anthropic"},
		{"gemini-2.5-flash", "google"},
		{"unknown-model", "openai"},
	}
	for _, test := range tests {
		if got := providerFor(test.model); got != test.provider {
			t.Errorf("providerFor(%s) = %s, expected %s", test.model, got, test.provider)
		}
	}
}

func TestLiteLLMAdapter_MessageConversion(t *testing.T) {
	adapter := NewLiteLLMAdapter(ProviderConfig{Model: "gpt-4o-mini"})

	toolCallArgs := []byte(`{"name":"water"}`)
	messages := []schema.Message{
		{
			Role: schema.RoleAssistant,
			ToolCalls: []schema.ToolCall{
				{ID: "call_1", Name: "molecule_name_to_smiles", Args: toolCallArgs},
			},
		},
		{
			Role:    schema.RoleTool,
			ID:      "call_1",
			Content: "O",
		},
	}

	llmMessages := adapter.convertMessages(messages)

	if len(llmMessages[0].ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(llmMessages[0].ToolCalls))
	}
	if llmMessages[0].ToolCalls[0].Function.Name != "molecule_name_to_smiles" {
		t.Errorf("unexpected tool call name: %s", llmMessages[0].ToolCalls[0].Function.Name)
	}
	if llmMessages[1].ToolCallID != "call_1" {
		t.Errorf("expected tool call ID 'call_1', got %s", llmMessages[1].ToolCallID)
	}
}

func TestLiteLLMAdapter_ResponseConversion(t *testing.T) {
	adapter := NewLiteLLMAdapter(ProviderConfig{Model: "gpt-4o-mini"})

	response := &litellm.Response{
		Content: "",
		ToolCalls: []litellm.ToolCall{
			{
				ID: "call_1",
				Function: litellm.FunctionCall{
					Name:      "smiles_to_atomsdata",
					Arguments: `{"smiles":"O"}`,
				},
			},
		},
		FinishReason: "tool_calls",
		Model:        "gpt-test",
		Provider:     "openai",
		Usage: litellm.Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
		},
	}

	msg, usage := adapter.convertResponse(response)

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call in response, got %d", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].Name != "smiles_to_atomsdata" {
		t.Errorf("unexpected response tool call name: %s", msg.ToolCalls[0].Name)
	}
	if usage.TotalTokens != 15 {
		t.Errorf("expected token usage to be summed, got %d", usage.TotalTokens)
	}
}

func TestToolCallingSupport(t *testing.T) {
	tests := []struct {
		model    string
		expected bool
	}{
		{"gpt-4o-mini", true},
		{"claude-3.5-haiku", true},
		{"gemini-2.5-pro", true},
		{"unknown-model", false},
	}

	for _, test := range tests {
		result := supportsToolCalling(test.model)
		if result != test.expected {
			t.Errorf("supportsToolCalling(%s) = %t, expected %t", test.model, result, test.expected)
		}
	}
}
