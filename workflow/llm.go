package workflow

import (
	"context"

	"github.com/chemeval/chemeval/agent"
	"github.com/chemeval/chemeval/schema"
)

// FromState extracts a workflow record from an agent thread state: the
// ordered tool calls the model issued plus the final answer.
func FromState(state *agent.ThreadState) *schema.Workflow {
	wf := schema.NewWorkflow()
	if state == nil {
		return wf.Fail(schema.ErrKindAgent, schema.ErrInvalidInput)
	}
	wf.ToolCalls = append(wf.ToolCalls, state.ToolCalls...)
	return wf.Succeed(state.FinalAnswer())
}

// RunLLM runs one query through the agent and returns its workflow record.
// Agent failures are contained in the record so batch runs keep going.
func RunLLM(ctx context.Context, ag *agent.Agent, query, threadID string) *schema.Workflow {
	state, err := ag.Run(ctx, query, agent.RunConfig{ThreadID: threadID})
	if err != nil {
		wf := schema.NewWorkflow()
		if state != nil {
			wf.ToolCalls = append(wf.ToolCalls, state.ToolCalls...)
		}
		return wf.Fail(schema.ErrKindAgent, err)
	}
	return FromState(state)
}
