// Package runner executes the bounded multi-turn tool-call loop between a
// chat model and a tool registry.
package runner

import (
	"context"
	"fmt"

	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

// Config controls Runner behavior. It is an explicit per-runner value;
// nothing here is process-global.
type Config struct {
	Model       llm.ChatModel
	ToolInvoker tools.Invoker
	Observer    Observer
	MaxTurns    int
}

// Runner executes an agent run loop.
type Runner struct {
	config Config
}

// New creates a Runner and fills default config.
func New(cfg Config) *Runner {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}
	if cfg.ToolInvoker == nil {
		cfg.ToolInvoker = tools.NewSerialInvoker()
	}
	if cfg.Observer == nil {
		cfg.Observer = &NoopObserver{}
	}
	return &Runner{config: cfg}
}

// State describes the context of a run turn.
type State struct {
	ThreadID string
	Input    schema.Message
	Messages []schema.Message
	Response schema.Message
	Turn     int
}

// RunResult carries full execution results, including the ordered tool-call
// trace accumulated across turns.
type RunResult struct {
	Message     schema.Message      `json:"message"`
	Messages    []schema.Message    `json:"messages"`
	Usage       llm.TokenUsage      `json:"usage"`
	ToolCalls   []schema.ToolCall   `json:"tool_calls"`
	ToolResults []schema.ToolResult `json:"tool_results"`
}

// Observer provides observability callbacks.
type Observer interface {
	OnLLMStart(ctx context.Context, state *State, req *llm.Request)
	OnLLMEnd(ctx context.Context, state *State, resp *llm.Response, err error)
	OnToolCall(ctx context.Context, call *schema.ToolCall)
	OnToolResult(ctx context.Context, result *schema.ToolResult)
	OnError(ctx context.Context, err error)
}

// NoopObserver is a default no-op implementation.
type NoopObserver struct{}

func (o *NoopObserver) OnLLMStart(ctx context.Context, state *State, req *llm.Request) {}

func (o *NoopObserver) OnLLMEnd(ctx context.Context, state *State, resp *llm.Response, err error) {}

func (o *NoopObserver) OnToolCall(ctx context.Context, call *schema.ToolCall) {}

func (o *NoopObserver) OnToolResult(ctx context.Context, result *schema.ToolResult) {}

func (o *NoopObserver) OnError(ctx context.Context, err error) {}

// Run executes one input message through the tool-call loop. systemPrompt
// may be empty. The returned RunResult preserves the order in which tool
// calls were issued.
func (r *Runner) Run(ctx context.Context, threadID, systemPrompt string, toolList []tools.Tool, input schema.Message) (*RunResult, error) {
	if r.config.Model == nil {
		return nil, fmt.Errorf("runner: model is nil")
	}

	registry := tools.NewRegistry()
	for _, t := range toolList {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	messages := make([]schema.Message, 0, 4)
	if systemPrompt != "" {
		messages = append(messages, schema.Message{Role: schema.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, input)

	var toolCalls []schema.ToolCall
	var toolResults []schema.ToolResult
	var usage llm.TokenUsage

	for turn := 1; turn <= r.config.MaxTurns; turn++ {
		state := &State{
			ThreadID: threadID,
			Input:    input,
			Messages: messages,
			Turn:     turn,
		}

		req := r.buildRequest(messages, registry)
		r.config.Observer.OnLLMStart(ctx, state, req)
		resp, err := r.config.Model.Generate(ctx, req)
		r.config.Observer.OnLLMEnd(ctx, state, resp, err)
		if err != nil {
			r.config.Observer.OnError(ctx, err)
			// Return what the run produced so far; callers record partial
			// traces for failed items.
			return &RunResult{
				Messages:    messages,
				Usage:       usage,
				ToolCalls:   toolCalls,
				ToolResults: toolResults,
			}, err
		}
		usage.Add(resp.Usage)

		state.Response = resp.Message
		messages = append(messages, resp.Message)

		if !resp.Message.HasToolCalls() {
			return &RunResult{
				Message:     resp.Message,
				Messages:    messages,
				Usage:       usage,
				ToolCalls:   toolCalls,
				ToolResults: toolResults,
			}, nil
		}

		for idx := range resp.Message.ToolCalls {
			r.config.Observer.OnToolCall(ctx, &resp.Message.ToolCalls[idx])
		}
		toolCalls = append(toolCalls, resp.Message.ToolCalls...)

		results, err := r.config.ToolInvoker.Invoke(ctx, registry, resp.Message.ToolCalls)
		if err != nil {
			// Tool failures are reported back to the model, which may
			// recover or give up on its own.
			r.config.Observer.OnError(ctx, err)
		}
		toolResults = append(toolResults, results...)

		for idx := range results {
			r.config.Observer.OnToolResult(ctx, &results[idx])

			msg := schema.Message{
				ID:      results[idx].ID,
				Role:    schema.RoleTool,
				Content: string(results[idx].Result),
			}
			if results[idx].Error != "" {
				msg.Content = results[idx].Error
				msg.SetMetadata("error", results[idx].Error)
			}
			messages = append(messages, msg)
		}
	}

	return &RunResult{
		Messages:    messages,
		Usage:       usage,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
	}, fmt.Errorf("runner: exceeded max turns %d", r.config.MaxTurns)
}

func (r *Runner) buildRequest(messages []schema.Message, registry *tools.Registry) *llm.Request {
	req := &llm.Request{Messages: messages}
	if r.config.Model.SupportsTools() && registry.Count() > 0 {
		req.Tools = collectToolSpecs(registry.List())
		req.ToolChoice = &llm.ToolChoiceOption{Type: "auto"}
	}
	return req
}

func collectToolSpecs(toolList []tools.Tool) []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(toolList))
	for _, t := range toolList {
		if t == nil || t.Schema() == nil {
			continue
		}
		params := map[string]interface{}{"type": "object"}
		if t.Schema().Type != "" {
			params["type"] = t.Schema().Type
		}
		if len(t.Schema().Properties) > 0 {
			params["properties"] = t.Schema().Properties
		}
		if len(t.Schema().Required) > 0 {
			params["required"] = t.Schema().Required
		}
		specs = append(specs, llm.ToolSpec{Name: t.Name(), Description: t.Description(), Parameters: params})
	}
	return specs
}
