package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemeval/chemeval/agent"
	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

type scriptedModel struct {
	responses []*llm.Response
	calls     int
}

func (m *scriptedModel) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
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

func newScriptedAgent(t *testing.T, responses ...*llm.Response) *agent.Agent {
	t.Helper()

	toolSchema := tools.CreateToolSchema(
		"Convert a molecule name to its canonical SMILES string",
		map[string]interface{}{"name": tools.StringProperty("molecule name")},
		[]string{"name"},
	)
	lookup := tools.NewFuncTool("molecule_name_to_smiles", "name to SMILES", toolSchema,
		func(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
			return json.Marshal("O")
		})

	ag, err := agent.New(agent.Config{
		Model: &scriptedModel{responses: responses},
		Tools: []tools.Tool{lookup},
	})
	require.NoError(t, err)
	return ag
}

func toolCallTurn() *llm.Response {
	msg := schema.Message{Role: schema.RoleAssistant}
	msg.ToolCalls = []schema.ToolCall{
		{ID: "c1", Name: "molecule_name_to_smiles", Args: json.RawMessage(`{"name":"water"}`)},
	}
	return &llm.Response{Message: msg}
}

func answerTurn(content string) *llm.Response {
	return &llm.Response{
		Message:      schema.Message{Role: schema.RoleAssistant, Content: content},
		FinishReason: "stop",
	}
}

func TestRunLLM(t *testing.T) {
	ag := newScriptedAgent(t, toolCallTurn(), answerTurn("The SMILES string of water is O."))

	wf := RunLLM(context.Background(), ag, "What is the SMILES string of water?", "0")

	require.True(t, wf.Result.OK)
	assert.Equal(t, "The SMILES string of water is O.", wf.Result.Value)
	require.Len(t, wf.ToolCalls, 1)
	assert.Equal(t, "molecule_name_to_smiles", wf.ToolCalls[0].Name)
	assert.JSONEq(t, `{"name":"water"}`, string(wf.ToolCalls[0].Args))
}

func TestRunLLMFailureContained(t *testing.T) {
	// One tool-call turn, then the model runs out of responses.
	ag := newScriptedAgent(t, toolCallTurn())

	wf := RunLLM(context.Background(), ag, "water?", "1")

	assert.False(t, wf.Result.OK)
	assert.Equal(t, schema.ErrKindAgent, wf.Result.Kind)
	assert.NotEmpty(t, wf.Result.Message)
	// Whatever the model did before failing stays on the record.
	assert.Len(t, wf.ToolCalls, 1)
}

func TestFromStateNil(t *testing.T) {
	wf := FromState(nil)
	assert.False(t, wf.Result.OK)
	assert.Equal(t, schema.ErrKindAgent, wf.Result.Kind)
}
