package runner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

// scriptedModel replays a fixed list of responses.
type scriptedModel struct {
	responses []*llm.Response
	calls     int
	requests  []*llm.Request
}

func (m *scriptedModel) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.calls >= len(m.responses) {
		return nil, errors.New("no scripted response left")
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

func (m *scriptedModel) SupportsTools() bool { return true }
func (m *scriptedModel) Info() llm.ModelInfo {
	return llm.ModelInfo{Name: "scripted", Provider: "test"}
}

func newEchoTool() tools.Tool {
	toolSchema := tools.CreateToolSchema(
		"Echo the input back",
		map[string]interface{}{"text": tools.StringProperty("text to echo")},
		[]string{"text"},
	)
	return tools.NewFuncTool("echo", "Echo tool", toolSchema,
		func(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
			return input, nil
		})
}

func toolCallResponse(calls ...schema.ToolCall) *llm.Response {
	msg := schema.Message{Role: schema.RoleAssistant}
	msg.ToolCalls = calls
	return &llm.Response{Message: msg, Usage: llm.TokenUsage{TotalTokens: 10}}
}

func finalResponse(content string) *llm.Response {
	return &llm.Response{
		Message:      schema.Message{Role: schema.RoleAssistant, Content: content},
		Usage:        llm.TokenUsage{TotalTokens: 5},
		FinishReason: "stop",
	}
}

func TestRunDirectAnswer(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{finalResponse("42")}}
	r := New(Config{Model: model})

	result, err := r.Run(context.Background(), "t1", "system", nil,
		schema.Message{Role: schema.RoleUser, Content: "answer?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message.Content != "42" {
		t.Errorf("expected final content 42, got %q", result.Message.Content)
	}
	if len(result.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(result.ToolCalls))
	}
	if result.Usage.TotalTokens != 5 {
		t.Errorf("expected 5 total tokens, got %d", result.Usage.TotalTokens)
	}
}

func TestRunToolCallLoop(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse(schema.ToolCall{ID: "c1", Name: "echo", Args: json.RawMessage(`{"text":"hi"}`)}),
		finalResponse("done"),
	}}
	r := New(Config{Model: model})

	result, err := r.Run(context.Background(), "t1", "", []tools.Tool{newEchoTool()},
		schema.Message{Role: schema.RoleUser, Content: "echo hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ToolCalls) != 1 || result.ToolCalls[0].Name != "echo" {
		t.Fatalf("expected one echo tool call, got %+v", result.ToolCalls)
	}
	if len(result.ToolResults) != 1 {
		t.Fatalf("expected one tool result, got %d", len(result.ToolResults))
	}
	if string(result.ToolResults[0].Result) != `{"text":"hi"}` {
		t.Errorf("unexpected tool result payload: %s", result.ToolResults[0].Result)
	}
	if result.Usage.TotalTokens != 15 {
		t.Errorf("expected accumulated usage 15, got %d", result.Usage.TotalTokens)
	}

	// The second request must include the tool response message.
	second := model.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != schema.RoleTool || last.ID != "c1" {
		t.Errorf("expected trailing tool message for call c1, got role=%s id=%s", last.Role, last.ID)
	}
}

func TestRunUnknownToolScoredNotFatal(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse(schema.ToolCall{ID: "c1", Name: "missing", Args: json.RawMessage(`{}`)}),
		finalResponse("recovered"),
	}}
	r := New(Config{Model: model})

	result, err := r.Run(context.Background(), "t1", "", []tools.Tool{newEchoTool()},
		schema.Message{Role: schema.RoleUser, Content: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolResults) != 1 || result.ToolResults[0].Error == "" {
		t.Fatalf("expected an error tool result, got %+v", result.ToolResults)
	}
	if result.Message.Content != "recovered" {
		t.Errorf("expected the run to continue to the final answer")
	}
}

func TestRunMaxTurnsExceeded(t *testing.T) {
	loop := toolCallResponse(schema.ToolCall{ID: "c1", Name: "echo", Args: json.RawMessage(`{"text":"x"}`)})
	model := &scriptedModel{responses: []*llm.Response{loop, loop, loop}}
	r := New(Config{Model: model, MaxTurns: 3})

	_, err := r.Run(context.Background(), "t1", "", []tools.Tool{newEchoTool()},
		schema.Message{Role: schema.RoleUser, Content: "loop"})
	if err == nil {
		t.Fatal("expected max turns error")
	}
}

func TestRunRequestCarriesToolSpecs(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{finalResponse("ok")}}
	r := New(Config{Model: model})

	_, err := r.Run(context.Background(), "t1", "", []tools.Tool{newEchoTool()},
		schema.Message{Role: schema.RoleUser, Content: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := model.requests[0]
	if len(req.Tools) != 1 || req.Tools[0].Name != "echo" {
		t.Fatalf("expected echo tool spec in request, got %+v", req.Tools)
	}
	if req.ToolChoice == nil || req.ToolChoice.Type != "auto" {
		t.Errorf("expected auto tool choice")
	}
}
