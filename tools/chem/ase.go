package chem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
)

// RunASETool drives a simulation (geometry optimization, vibrational
// analysis, or thermochemistry) on the calculation backend.
type RunASETool struct {
	*tools.BaseTool
	client *compchem.Client
}

// runASEArgs wraps the calculation input under a params key, matching the
// agent-facing schema.
type runASEArgs struct {
	Params compchem.CalculationInput `json:"params" mapstructure:"params"`
}

// NewRunASETool creates the run_ase tool.
func NewRunASETool(client *compchem.Client) *RunASETool {
	toolSchema := tools.CreateToolSchema(
		"Run an atomistic simulation: geometry optimization (driver=opt), vibrational analysis (driver=vib) or thermochemistry (driver=thermo)",
		map[string]interface{}{
			"params": tools.ObjectProperty("Simulation input", map[string]interface{}{
				"atomsdata": tools.ObjectProperty("The molecular structure to simulate", map[string]interface{}{
					"numbers":   tools.ArrayProperty("Atomic numbers", tools.NumberProperty("atomic number")),
					"positions": tools.ArrayProperty("Cartesian positions in Angstrom", tools.ArrayProperty("xyz", tools.NumberProperty("coordinate"))),
				}),
				"driver":      tools.EnumProperty("Calculation driver", []string{compchem.DriverOpt, compchem.DriverVib, compchem.DriverThermo}),
				"calculator":  tools.ObjectProperty("Calculator selection", map[string]interface{}{
					"calculator_type": tools.StringProperty("Calculator type, e.g. mace_mp or TBLite"),
					"method":          tools.StringProperty("Method or level of theory, e.g. GFN2-xTB"),
				}),
				"temperature": tools.NumberProperty("Temperature in Kelvin for thermo runs"),
				"pressure":    tools.NumberProperty("Pressure in Pascal for thermo runs"),
			}),
		},
		[]string{"params"},
	)
	return &RunASETool{
		BaseTool: tools.NewBaseTool(ToolRunASE, "Run an atomistic simulation on a structure", toolSchema),
		client:   client,
	}
}

// Execute decodes the params payload and runs the calculation.
// LLM-produced arguments are decoded leniently: numeric types are coerced
// and unknown keys are ignored.
func (t *RunASETool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var generic map[string]interface{}
	if err := json.Unmarshal(input, &generic); err != nil {
		return nil, schema.NewToolError(t.Name(), "parse args", err)
	}

	var args runASEArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "build decoder", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, schema.NewToolError(t.Name(), "decode params", err)
	}

	if args.Params.AtomsData == nil || args.Params.AtomsData.NumAtoms() == 0 {
		return nil, schema.NewValidationError("params.atomsdata", nil, "structure is required")
	}

	out, err := t.client.Calculate(ctx, &args.Params)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "calculate", err)
	}
	return json.Marshal(out)
}

// DecodeCalculationOutput decodes a run_ase tool result payload.
func DecodeCalculationOutput(raw json.RawMessage) (*compchem.CalculationOutput, error) {
	var out compchem.CalculationOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileToAtomsTool reads a structure from an XYZ file.
type FileToAtomsTool struct {
	*tools.BaseTool
}

type fileToAtomsArgs struct {
	Fname string `json:"fname"`
}

// NewFileToAtomsTool creates the file_to_atomsdata tool.
func NewFileToAtomsTool() *FileToAtomsTool {
	toolSchema := tools.CreateToolSchema(
		"Read atomic coordinates (atomsdata) from an XYZ file",
		map[string]interface{}{
			"fname": tools.StringProperty("Path of the XYZ file to read"),
		},
		[]string{"fname"},
	)
	return &FileToAtomsTool{
		BaseTool: tools.NewBaseTool(ToolFileToAtoms, "Read atomsdata from an XYZ file", toolSchema),
	}
}

func (t *FileToAtomsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args fileToAtomsArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, schema.NewToolError(t.Name(), "parse args", err)
	}
	if args.Fname == "" {
		return nil, schema.NewValidationError("fname", args.Fname, "file path is required")
	}

	f, err := os.Open(args.Fname)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "open", err)
	}
	defer f.Close()

	atoms, err := compchem.ReadXYZ(f)
	if err != nil {
		return nil, schema.NewToolError(t.Name(), "parse xyz", err)
	}
	return json.Marshal(atoms)
}

// SaveAtomsTool writes a structure to an XYZ file.
type SaveAtomsTool struct {
	*tools.BaseTool
}

type saveAtomsArgs struct {
	AtomsData *compchem.AtomsData `json:"atomsdata"`
	Fname     string              `json:"fname"`
}

// NewSaveAtomsTool creates the save_atomsdata_to_file tool.
func NewSaveAtomsTool() *SaveAtomsTool {
	toolSchema := tools.CreateToolSchema(
		"Save atomic coordinates (atomsdata) to an XYZ file",
		map[string]interface{}{
			"atomsdata": tools.ObjectProperty("The structure to save", map[string]interface{}{
				"numbers":   tools.ArrayProperty("Atomic numbers", tools.NumberProperty("atomic number")),
				"positions": tools.ArrayProperty("Cartesian positions in Angstrom", tools.ArrayProperty("xyz", tools.NumberProperty("coordinate"))),
			}),
			"fname": tools.StringProperty("Destination file path, e.g. output/water.xyz"),
		},
		[]string{"atomsdata", "fname"},
	)
	return &SaveAtomsTool{
		BaseTool: tools.NewBaseTool(ToolSaveAtoms, "Save atomsdata to an XYZ file", toolSchema),
	}
}

func (t *SaveAtomsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args saveAtomsArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, schema.NewToolError(t.Name(), "parse args", err)
	}
	if args.AtomsData == nil || args.AtomsData.NumAtoms() == 0 {
		return nil, schema.NewValidationError("atomsdata", nil, "structure is required")
	}
	if args.Fname == "" {
		return nil, schema.NewValidationError("fname", args.Fname, "file path is required")
	}

	if dir := filepath.Dir(args.Fname); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, schema.NewToolError(t.Name(), "mkdir", err)
		}
	}

	var sb strings.Builder
	comment := strings.TrimSuffix(filepath.Base(args.Fname), filepath.Ext(args.Fname))
	if err := args.AtomsData.WriteXYZ(&sb, comment); err != nil {
		return nil, schema.NewToolError(t.Name(), "encode xyz", err)
	}
	if err := os.WriteFile(args.Fname, []byte(sb.String()), 0o644); err != nil {
		return nil, schema.NewToolError(t.Name(), "write", err)
	}

	return json.Marshal(map[string]string{"status": "saved", "fname": args.Fname})
}
