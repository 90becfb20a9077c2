// Package observer provides run observability: a human-readable logging
// observer and a structured JSON observer.
package observer

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/runner"
	"github.com/chemeval/chemeval/schema"
)

// LoggingObserver writes human-readable run events through the standard
// log package.
type LoggingObserver struct {
	logger  *log.Logger
	verbose bool
}

// NewLoggingObserver creates a logging observer writing to stderr.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		logger:  log.New(os.Stderr, "[chemeval] ", log.LstdFlags),
		verbose: verbose,
	}
}

// NewLoggingObserverWithLogger creates a logging observer with a custom logger.
func NewLoggingObserverWithLogger(logger *log.Logger, verbose bool) *LoggingObserver {
	return &LoggingObserver{logger: logger, verbose: verbose}
}

func (o *LoggingObserver) OnLLMStart(ctx context.Context, state *runner.State, req *llm.Request) {
	if o.verbose {
		o.logger.Printf("llm start thread=%s turn=%d messages=%d tools=%d",
			state.ThreadID, state.Turn, len(req.Messages), len(req.Tools))
	}
}

func (o *LoggingObserver) OnLLMEnd(ctx context.Context, state *runner.State, resp *llm.Response, err error) {
	if err != nil {
		o.logger.Printf("llm error thread=%s turn=%d: %v", state.ThreadID, state.Turn, err)
		return
	}
	if o.verbose {
		o.logger.Printf("llm end thread=%s turn=%d tool_calls=%d tokens=%d",
			state.ThreadID, state.Turn, len(resp.Message.ToolCalls), resp.Usage.TotalTokens)
	}
}

func (o *LoggingObserver) OnToolCall(ctx context.Context, call *schema.ToolCall) {
	o.logger.Printf("tool call %s args=%s", call.Name, truncate(string(call.Args), 200))
}

func (o *LoggingObserver) OnToolResult(ctx context.Context, result *schema.ToolResult) {
	if result.Error != "" {
		o.logger.Printf("tool result id=%s error=%s", result.ID, result.Error)
		return
	}
	if o.verbose {
		o.logger.Printf("tool result id=%s result=%s", result.ID, truncate(string(result.Result), 200))
	}
}

func (o *LoggingObserver) OnError(ctx context.Context, err error) {
	o.logger.Printf("run error: %v", err)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
