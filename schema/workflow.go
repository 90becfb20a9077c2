package schema

import "encoding/json"

// ErrorKind classifies workflow failures.
type ErrorKind string

const (
	// ErrKindTool marks a chemistry tool invocation failure.
	ErrKindTool ErrorKind = "tool_error"
	// ErrKindAgent marks an LLM agent run failure.
	ErrKindAgent ErrorKind = "agent_error"
	// ErrKindLookup marks a compound database lookup failure.
	ErrKindLookup ErrorKind = "lookup_error"
)

// Result is the tagged outcome of a workflow step or run.
// Either OK is true and Value holds the payload, or OK is false and
// Kind/Message describe the failure.
type Result struct {
	OK      bool        `json:"ok"`
	Value   interface{} `json:"value,omitempty"`
	Kind    ErrorKind   `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OKResult wraps a payload in a successful result.
func OKResult(value interface{}) Result {
	return Result{OK: true, Value: value}
}

// ErrResult builds a failed result from an error.
func ErrResult(kind ErrorKind, err error) Result {
	r := Result{OK: false, Kind: kind}
	if err != nil {
		r.Message = err.Error()
	}
	return r
}

// Workflow is the ordered record of tool calls and the final result
// produced by one run of a task, either manual or via the LLM agent.
type Workflow struct {
	ToolCalls []ToolCall `json:"tool_calls"`
	Result    Result     `json:"result"`
}

// NewWorkflow creates an empty workflow record.
func NewWorkflow() *Workflow {
	return &Workflow{ToolCalls: []ToolCall{}}
}

// Record appends a tool call with the given name and JSON arguments.
func (w *Workflow) Record(name string, args interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	w.ToolCalls = append(w.ToolCalls, ToolCall{Name: name, Args: raw})
	return nil
}

// Fail marks the workflow as failed.
func (w *Workflow) Fail(kind ErrorKind, err error) *Workflow {
	w.Result = ErrResult(kind, err)
	return w
}

// Succeed marks the workflow as successful with the given value.
func (w *Workflow) Succeed(value interface{}) *Workflow {
	w.Result = OKResult(value)
	return w
}
