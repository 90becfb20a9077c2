package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestWorkflowRecordKeepsOrder(t *testing.T) {
	wf := NewWorkflow()
	if err := wf.Record("molecule_name_to_smiles", map[string]string{"name": "water"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := wf.Record("smiles_to_atomsdata", map[string]string{"smiles": "O"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(wf.ToolCalls) != 2 {
		t.Fatalf("len = %d, want 2", len(wf.ToolCalls))
	}
	if wf.ToolCalls[0].Name != "molecule_name_to_smiles" || wf.ToolCalls[1].Name != "smiles_to_atomsdata" {
		t.Errorf("order not preserved: %+v", wf.ToolCalls)
	}
}

func TestResultTagging(t *testing.T) {
	ok := OKResult("O")
	if !ok.OK || ok.Value != "O" || ok.Kind != "" {
		t.Errorf("unexpected ok result: %+v", ok)
	}

	failed := ErrResult(ErrKindLookup, ErrCompoundNotFound)
	if failed.OK || failed.Kind != ErrKindLookup || failed.Message == "" {
		t.Errorf("unexpected err result: %+v", failed)
	}
}

func TestWorkflowJSONShape(t *testing.T) {
	wf := NewWorkflow()
	if err := wf.Record("molecule_name_to_smiles", map[string]string{"name": "water"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	wf.Succeed("O")

	data, err := json.Marshal(wf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		ToolCalls []json.RawMessage `json:"tool_calls"`
		Result    struct {
			OK    bool        `json:"ok"`
			Value interface{} `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.ToolCalls) != 1 || !decoded.Result.OK || decoded.Result.Value != "O" {
		t.Errorf("unexpected wire shape: %s", data)
	}
}

func TestErrorWrapping(t *testing.T) {
	toolErr := NewToolError("run_ase", "calculate", ErrTimeout)
	if !errors.Is(toolErr, ErrTimeout) {
		t.Error("ToolError should unwrap to its cause")
	}

	agentErr := NewAgentError("chemeval", "run", toolErr)
	if !errors.Is(agentErr, ErrTimeout) {
		t.Error("AgentError should unwrap through the chain")
	}

	var te *ToolError
	if !errors.As(agentErr, &te) || te.ToolName != "run_ase" {
		t.Errorf("errors.As failed to find ToolError: %v", agentErr)
	}
}
