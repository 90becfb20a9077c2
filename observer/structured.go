package observer

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/runner"
	"github.com/chemeval/chemeval/schema"
)

// Event is a single structured run event.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	ThreadID  string                 `json:"thread_id,omitempty"`
	Turn      int                    `json:"turn,omitempty"`
	Tool      string                 `json:"tool,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// StructuredObserver emits run events as JSON lines, one per event. Safe
// for concurrent use.
type StructuredObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStructuredObserver creates a structured observer writing to stdout.
func NewStructuredObserver() *StructuredObserver {
	return &StructuredObserver{out: os.Stdout}
}

// NewStructuredObserverWithWriter creates a structured observer with a
// custom output.
func NewStructuredObserverWithWriter(w io.Writer) *StructuredObserver {
	return &StructuredObserver{out: w}
}

func (o *StructuredObserver) emit(ev Event) {
	ev.Timestamp = time.Now()
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.out.Write(append(data, '\n'))
}

func (o *StructuredObserver) OnLLMStart(ctx context.Context, state *runner.State, req *llm.Request) {
	o.emit(Event{
		Type:     "llm_start",
		ThreadID: state.ThreadID,
		Turn:     state.Turn,
		Fields: map[string]interface{}{
			"messages": len(req.Messages),
			"tools":    len(req.Tools),
		},
	})
}

func (o *StructuredObserver) OnLLMEnd(ctx context.Context, state *runner.State, resp *llm.Response, err error) {
	ev := Event{Type: "llm_end", ThreadID: state.ThreadID, Turn: state.Turn}
	if err != nil {
		ev.Error = err.Error()
	} else {
		ev.Fields = map[string]interface{}{
			"tool_calls":    len(resp.Message.ToolCalls),
			"total_tokens":  resp.Usage.TotalTokens,
			"finish_reason": resp.FinishReason,
		}
	}
	o.emit(ev)
}

func (o *StructuredObserver) OnToolCall(ctx context.Context, call *schema.ToolCall) {
	o.emit(Event{
		Type: "tool_call",
		Tool: call.Name,
		Fields: map[string]interface{}{
			"id":   call.ID,
			"args": json.RawMessage(call.Args),
		},
	})
}

func (o *StructuredObserver) OnToolResult(ctx context.Context, result *schema.ToolResult) {
	ev := Event{
		Type:   "tool_result",
		Fields: map[string]interface{}{"id": result.ID},
	}
	if result.Error != "" {
		ev.Error = result.Error
	} else {
		ev.Fields["result"] = json.RawMessage(result.Result)
	}
	o.emit(ev)
}

func (o *StructuredObserver) OnError(ctx context.Context, err error) {
	o.emit(Event{Type: "error", Error: err.Error()})
}
