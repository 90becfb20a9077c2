package chem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/pubchem"
)

func testClients(t *testing.T) (*pubchem.Client, *compchem.Client) {
	t.Helper()

	ps := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/compound/name/water/") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"PropertyTable": map[string]interface{}{
				"Properties": []map[string]interface{}{{"CanonicalSMILES": "O"}},
			},
		})
	}))
	t.Cleanup(ps.Close)

	cs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/atomsdata":
			json.NewEncoder(w).Encode(compchem.AtomsData{
				Numbers:      []int{8, 1, 1},
				Positions:    [][]float64{{0, 0, 0}, {0, 0.76, 0.59}, {0, -0.76, 0.59}},
				Multiplicity: 1,
			})
		case "/v1/calculate":
			var input compchem.CalculationInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			json.NewEncoder(w).Encode(compchem.CalculationOutput{
				Converged:      true,
				Energy:         -76.4,
				FinalStructure: input.AtomsData,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(cs.Close)

	pc := pubchem.NewClient(pubchem.WithBaseURL(ps.URL), pubchem.WithThrottle(0))
	return pc, compchem.NewClient(cs.URL)
}

func TestNameToSMILESTool(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	raw, err := toolset.NameToSMILES.Execute(context.Background(), json.RawMessage(`{"name":"water"}`))
	require.NoError(t, err)

	smiles, err := DecodeSMILES(raw)
	require.NoError(t, err)
	assert.Equal(t, "O", smiles)
}

func TestNameToSMILESToolValidation(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	_, err := toolset.NameToSMILES.Execute(context.Background(), json.RawMessage(`{"name":""}`))
	assert.Error(t, err)
}

func TestSMILESToAtomsTool(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	raw, err := toolset.SMILESToAtoms.Execute(context.Background(), json.RawMessage(`{"smiles":"O"}`))
	require.NoError(t, err)

	atoms, err := DecodeAtomsData(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, atoms.NumAtoms())
}

func TestRunASEToolLenientDecoding(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	// Positions given as integers and an unknown key present; both must be
	// tolerated when decoding model-produced arguments.
	input := `{
		"params": {
			"atomsdata": {"numbers": [8, 1, 1], "positions": [[0,0,0],[0,1,1],[0,-1,1]]},
			"driver": "opt",
			"calculator": {"calculator_type": "mace_mp"},
			"fmax": 0.01
		}
	}`

	raw, err := toolset.RunASE.Execute(context.Background(), json.RawMessage(input))
	require.NoError(t, err)

	out, err := DecodeCalculationOutput(raw)
	require.NoError(t, err)
	assert.True(t, out.Converged)
	require.NotNil(t, out.FinalStructure)
	assert.Equal(t, []int{8, 1, 1}, out.FinalStructure.Numbers)
}

func TestRunASEToolMissingStructure(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	_, err := toolset.RunASE.Execute(context.Background(), json.RawMessage(`{"params":{"driver":"opt"}}`))
	assert.Error(t, err)
}

func TestSaveAndReadAtomsRoundTrip(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)
	fname := filepath.Join(t.TempDir(), "structs", "water.xyz")

	saveArgs, err := json.Marshal(map[string]interface{}{
		"atomsdata": compchem.AtomsData{
			Numbers:      []int{8, 1, 1},
			Positions:    [][]float64{{0, 0, 0}, {0, 0.76, 0.59}, {0, -0.76, 0.59}},
			Multiplicity: 1,
		},
		"fname": fname,
	})
	require.NoError(t, err)

	raw, err := toolset.SaveAtoms.Execute(context.Background(), saveArgs)
	require.NoError(t, err)

	var status map[string]string
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, "saved", status["status"])

	_, err = os.Stat(fname)
	require.NoError(t, err)

	readArgs, err := json.Marshal(map[string]string{"fname": fname})
	require.NoError(t, err)
	raw, err = toolset.FileToAtoms.Execute(context.Background(), readArgs)
	require.NoError(t, err)

	atoms, err := DecodeAtomsData(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 1, 1}, atoms.Numbers)
	require.Len(t, atoms.Positions, 3)
	assert.InDelta(t, 0.76, atoms.Positions[1][1], 1e-9)
}

func TestFetchPageTool(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h1>Water</h1><p>H2O is a molecule.</p></body></html>`))
	}))
	t.Cleanup(page.Close)

	tool := NewFetchPageTool(0)

	args, err := json.Marshal(map[string]string{"url": page.URL, "format": "text"})
	require.NoError(t, err)
	raw, err := tool.Execute(context.Background(), args)
	require.NoError(t, err)

	var resp struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Content, "H2O is a molecule.")
}

func TestFetchPageToolBadInput(t *testing.T) {
	tool := NewFetchPageTool(0)

	raw, err := tool.Execute(context.Background(), json.RawMessage(`{"url":"ftp://x","format":"text"}`))
	require.NoError(t, err, "failures are reported in the payload")

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestToolsetStableOrder(t *testing.T) {
	pc, cc := testClients(t)
	toolset := NewToolset(pc, cc)

	var names []string
	for _, tool := range toolset.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		ToolNameToSMILES,
		ToolSMILESToAtoms,
		ToolRunASE,
		ToolFileToAtoms,
		ToolSaveAtoms,
		ToolFetchPage,
	}, names)
}
