// Package agent ties a chat model, a system prompt, and the chemistry tools
// into a runnable assistant whose conversation state can be inspected and
// persisted per thread.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/runner"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

// DefaultSystemPrompt instructs the model to solve chemistry questions by
// calling the available tools.
const DefaultSystemPrompt = `You are a computational chemistry assistant. Answer the user's question by calling the available tools.
Resolve molecule names to SMILES before generating structures, generate 3D structures before running simulations, and report numerical results with their units.
When you have the answer, reply with it directly and stop calling tools.`

// Config configures an Agent.
type Config struct {
	Name         string
	SystemPrompt string
	Model        llm.ChatModel
	Tools        []tools.Tool
	Observer     runner.Observer
	MaxTurns     int
}

// Agent runs queries against a model with the chemistry tools attached and
// keeps per-thread conversation state.
type Agent struct {
	name         string
	systemPrompt string
	tools        []tools.Tool
	runner       *runner.Runner

	mu      sync.Mutex
	threads map[string]*ThreadState
}

// ThreadState is the recorded state of one conversation thread.
type ThreadState struct {
	ThreadID    string              `json:"thread_id"`
	Query       string              `json:"query"`
	Messages    []schema.Message    `json:"messages"`
	ToolCalls   []schema.ToolCall   `json:"tool_calls"`
	ToolResults []schema.ToolResult `json:"tool_results"`
	Usage       llm.TokenUsage      `json:"usage"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
}

// FinalAnswer returns the content of the last assistant message.
func (s *ThreadState) FinalAnswer() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == schema.RoleAssistant && len(s.Messages[i].ToolCalls) == 0 {
			return s.Messages[i].Content
		}
	}
	return ""
}

// New creates an Agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent: model is required")
	}
	if cfg.Name == "" {
		cfg.Name = "chemeval"
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Agent{
		name:         cfg.Name,
		systemPrompt: cfg.SystemPrompt,
		tools:        cfg.Tools,
		runner: runner.New(runner.Config{
			Model:    cfg.Model,
			Observer: cfg.Observer,
			MaxTurns: cfg.MaxTurns,
		}),
		threads: make(map[string]*ThreadState),
	}, nil
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// RunConfig controls a single Run. A zero ThreadID gets a fresh one.
type RunConfig struct {
	ThreadID string
}

// Run executes one query and records the thread state. The same ThreadID may
// be queried later through State or persisted through WriteState.
func (a *Agent) Run(ctx context.Context, query string, cfg RunConfig) (*ThreadState, error) {
	threadID := cfg.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	state := &ThreadState{
		ThreadID:  threadID,
		Query:     query,
		StartedAt: time.Now(),
	}

	input := schema.Message{
		ID:      uuid.New().String(),
		Role:    schema.RoleUser,
		Content: query,
	}

	result, err := a.runner.Run(ctx, threadID, a.systemPrompt, a.tools, input)
	state.FinishedAt = time.Now()
	if result != nil {
		state.Messages = result.Messages
		state.ToolCalls = result.ToolCalls
		state.ToolResults = result.ToolResults
		state.Usage = result.Usage
	}

	a.mu.Lock()
	a.threads[threadID] = state
	a.mu.Unlock()

	if err != nil {
		return state, schema.NewAgentError(a.name, "run", err)
	}
	return state, nil
}

// State returns the recorded state for a thread, or nil if unknown.
func (a *Agent) State(threadID string) *ThreadState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.threads[threadID]
}

// WriteState persists a thread's state as indented JSON. Parent directories
// are created as needed.
func (a *Agent) WriteState(threadID, path string) error {
	state := a.State(threadID)
	if state == nil {
		return fmt.Errorf("agent: unknown thread %q", threadID)
	}

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("agent: encode state: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("agent: create state dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("agent: write state: %w", err)
	}
	return nil
}
