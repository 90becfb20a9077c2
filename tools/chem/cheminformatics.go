package chem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/pubchem"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

// NameToSMILESTool resolves a molecule name to a SMILES string through the
// compound database.
type NameToSMILESTool struct {
	*tools.BaseTool
	client *pubchem.Client
}

type nameToSMILESArgs struct {
	Name string `json:"name"`
}

// NewNameToSMILESTool creates the molecule_name_to_smiles tool.
func NewNameToSMILESTool(client *pubchem.Client) *NameToSMILESTool {
	toolSchema := tools.CreateToolSchema(
		"Convert a molecule name to its canonical SMILES string",
		map[string]interface{}{
			"name": tools.StringProperty("The molecule name, e.g. 'water' or an IUPAC name"),
		},
		[]string{"name"},
	)
	return &NameToSMILESTool{
		BaseTool: tools.NewBaseTool(ToolNameToSMILES, "Convert a molecule name to a SMILES string", toolSchema),
		client:   client,
	}
}

// Execute resolves the name and returns the SMILES as a JSON string.
func (t *NameToSMILESTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args nameToSMILESArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, schema.NewToolError(t.Name(), "parse args", err)
	}
	if args.Name == "" {
		return nil, schema.NewValidationError("name", args.Name, "molecule name is required")
	}

	smiles, err := t.client.SMILESByName(ctx, args.Name)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "lookup", err)
	}
	return json.Marshal(smiles)
}

// SMILESToAtomsTool embeds a SMILES string into a 3D structure through the
// calculation backend.
type SMILESToAtomsTool struct {
	*tools.BaseTool
	client *compchem.Client
}

type smilesToAtomsArgs struct {
	SMILES string `json:"smiles"`
}

// NewSMILESToAtomsTool creates the smiles_to_atomsdata tool.
func NewSMILESToAtomsTool(client *compchem.Client) *SMILESToAtomsTool {
	toolSchema := tools.CreateToolSchema(
		"Generate 3D atomic coordinates (atomsdata) from a SMILES string",
		map[string]interface{}{
			"smiles": tools.StringProperty("The SMILES string encoding the molecule"),
		},
		[]string{"smiles"},
	)
	return &SMILESToAtomsTool{
		BaseTool: tools.NewBaseTool(ToolSMILESToAtoms, "Generate atomsdata from a SMILES string", toolSchema),
		client:   client,
	}
}

// Execute converts the SMILES and returns the atomsdata as JSON.
func (t *SMILESToAtomsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args smilesToAtomsArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, schema.NewToolError(t.Name(), "parse args", err)
	}
	if args.SMILES == "" {
		return nil, schema.NewValidationError("smiles", args.SMILES, "SMILES string is required")
	}

	atoms, err := t.client.AtomsDataFromSMILES(ctx, args.SMILES)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "convert", err)
	}
	return json.Marshal(atoms)
}

// DecodeSMILES is a convenience for callers that need the plain string from
// the tool result payload.
func DecodeSMILES(raw json.RawMessage) (string, error) {
	var smiles string
	if err := json.Unmarshal(raw, &smiles); err != nil {
		return "", fmt.Errorf("decode smiles result: %w", err)
	}
	return smiles, nil
}

// DecodeAtomsData decodes an atomsdata tool result payload.
func DecodeAtomsData(raw json.RawMessage) (*compchem.AtomsData, error) {
	var atoms compchem.AtomsData
	if err := json.Unmarshal(raw, &atoms); err != nil {
		return nil, fmt.Errorf("decode atomsdata result: %w", err)
	}
	return &atoms, nil
}
