package eval

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCallJSONRoundTrip(t *testing.T) {
	tc := ToolCall{Name: "molecule_name_to_smiles", Arguments: map[string]interface{}{"name": "water"}}

	data, err := json.Marshal(tc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"molecule_name_to_smiles":{"name":"water"}}`, string(data))

	var back ToolCall
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tc.Name, back.Name)
	assert.Equal(t, "water", back.Arguments["name"])
}

func TestToolCallUnmarshalRejectsMultipleKeys(t *testing.T) {
	var tc ToolCall
	err := json.Unmarshal([]byte(`{"a":{},"b":{}}`), &tc)
	assert.Error(t, err)
}

func TestLoadCases(t *testing.T) {
	content := `[
  {
    "query": "What is the SMILES string of water?",
    "answer": {"tool_calls": [{"molecule_name_to_smiles": {"name": "water"}}]}
  },
  {
    "query": "Generate the 3D structure of water from its SMILES string O.",
    "answer": {"tool_calls": [{"smiles_to_atomsdata": {"smiles": "O"}}]}
  }
]`
	path := filepath.Join(t.TempDir(), "ground_truth.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "molecule_name_to_smiles", cases[0].Answer.ToolCalls[0].Name)
	assert.Equal(t, "O", cases[1].Answer.ToolCalls[0].Arguments["smiles"])
}

func TestLoadCasesMissingFile(t *testing.T) {
	_, err := LoadCases(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
