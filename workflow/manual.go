// Package workflow produces tool-call workflow records: deterministic manual
// reference runs and extraction of LLM agent runs into the same shape.
package workflow

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools"
	"github.com/chemeval/chemeval/tools/chem"
)

// Manual runs deterministic reference workflows through the chemistry tools,
// recording every call in order. These traces are the ground truth LLM runs
// are scored against.
type Manual struct {
	toolset *chem.Toolset
}

// NewManual creates a manual workflow runner over the given toolset.
func NewManual(toolset *chem.Toolset) *Manual {
	return &Manual{toolset: toolset}
}

// invoke records the call on the workflow, then executes the tool. The call
// is recorded even when execution fails so the trace shows what was
// attempted.
func (m *Manual) invoke(ctx context.Context, wf *schema.Workflow, tool tools.Tool, args interface{}) (json.RawMessage, error) {
	if err := wf.Record(tool.Name(), args); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return tool.Execute(ctx, raw)
}

type nameArgs struct {
	Name string `json:"name"`
}

type smilesArgs struct {
	SMILES string `json:"smiles"`
}

type runASEArgs struct {
	Params compchem.CalculationInput `json:"params"`
}

type saveArgs struct {
	AtomsData *compchem.AtomsData `json:"atomsdata"`
	Fname     string              `json:"fname"`
}

// SMILESFromName resolves a molecule name to a SMILES string.
func (m *Manual) SMILESFromName(ctx context.Context, name string) *schema.Workflow {
	wf := schema.NewWorkflow()
	raw, err := m.invoke(ctx, wf, m.toolset.NameToSMILES, nameArgs{Name: name})
	if err != nil {
		return wf.Fail(schema.ErrKindLookup, err)
	}
	smiles, err := chem.DecodeSMILES(raw)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	return wf.Succeed(smiles)
}

// AtomsDataFromName resolves a molecule name to a 3D structure.
func (m *Manual) AtomsDataFromName(ctx context.Context, name string) *schema.Workflow {
	wf := schema.NewWorkflow()
	atoms, err := m.resolveStructure(ctx, wf, name)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	return wf.Succeed(atoms)
}

// resolveStructure runs the name -> SMILES -> atomsdata prefix shared by the
// simulation workflows, recording both calls.
func (m *Manual) resolveStructure(ctx context.Context, wf *schema.Workflow, name string) (*compchem.AtomsData, error) {
	raw, err := m.invoke(ctx, wf, m.toolset.NameToSMILES, nameArgs{Name: name})
	if err != nil {
		return nil, err
	}
	smiles, err := chem.DecodeSMILES(raw)
	if err != nil {
		return nil, err
	}

	raw, err = m.invoke(ctx, wf, m.toolset.SMILESToAtoms, smilesArgs{SMILES: smiles})
	if err != nil {
		return nil, err
	}
	return chem.DecodeAtomsData(raw)
}

// runSimulation records and executes a run_ase call.
func (m *Manual) runSimulation(ctx context.Context, wf *schema.Workflow, input compchem.CalculationInput) (*compchem.CalculationOutput, error) {
	raw, err := m.invoke(ctx, wf, m.toolset.RunASE, runASEArgs{Params: input})
	if err != nil {
		return nil, err
	}
	return chem.DecodeCalculationOutput(raw)
}

// OptimizeGeometry optimizes a molecule's geometry starting from its name.
// The result value is the optimized structure.
func (m *Manual) OptimizeGeometry(ctx context.Context, name string, calculator compchem.CalculatorSpec) *schema.Workflow {
	wf := schema.NewWorkflow()
	atoms, err := m.resolveStructure(ctx, wf, name)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	out, err := m.runSimulation(ctx, wf, compchem.CalculationInput{
		AtomsData:  atoms,
		Driver:     compchem.DriverOpt,
		Calculator: calculator,
	})
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	return wf.Succeed(out.FinalStructure)
}

// FrequencyResult is the value of a vibrational analysis workflow.
type FrequencyResult struct {
	FrequencyCM1 []float64 `json:"frequency_cm1"`
}

// VibrationalFrequencies computes a molecule's vibrational frequencies
// starting from its name.
func (m *Manual) VibrationalFrequencies(ctx context.Context, name string, calculator compchem.CalculatorSpec) *schema.Workflow {
	wf := schema.NewWorkflow()
	atoms, err := m.resolveStructure(ctx, wf, name)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	out, err := m.runSimulation(ctx, wf, compchem.CalculationInput{
		AtomsData:  atoms,
		Driver:     compchem.DriverVib,
		Calculator: calculator,
	})
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	if out.VibrationalFrequencies == nil {
		return wf.Succeed(FrequencyResult{FrequencyCM1: []float64{}})
	}
	return wf.Succeed(FrequencyResult{FrequencyCM1: out.VibrationalFrequencies.Frequencies})
}

// PropertyValue is the value of a thermochemistry workflow.
type PropertyValue struct {
	Value    float64 `json:"value"`
	Property string  `json:"property"`
	Unit     string  `json:"unit"`
}

// GibbsFreeEnergy computes a molecule's Gibbs free energy at the given
// temperature, starting from its name. Energies are in eV.
func (m *Manual) GibbsFreeEnergy(ctx context.Context, name string, calculator compchem.CalculatorSpec, temperature float64) *schema.Workflow {
	wf := schema.NewWorkflow()
	atoms, err := m.resolveStructure(ctx, wf, name)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	out, err := m.runSimulation(ctx, wf, compchem.CalculationInput{
		AtomsData:   atoms,
		Driver:      compchem.DriverThermo,
		Calculator:  calculator,
		Temperature: temperature,
	})
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	value, ok := out.Thermochemistry[compchem.PropGibbsFreeEnergy]
	if !ok {
		return wf.Fail(schema.ErrKindTool, schema.ErrInvalidInput)
	}
	return wf.Succeed(PropertyValue{Value: value, Property: "Gibbs free energy", Unit: "eV"})
}

// OptimizeAndSave optimizes a molecule's geometry and writes the optimized
// structure to <outputDir>/<name>.xyz.
func (m *Manual) OptimizeAndSave(ctx context.Context, name string, calculator compchem.CalculatorSpec, outputDir string) *schema.Workflow {
	wf := schema.NewWorkflow()
	atoms, err := m.resolveStructure(ctx, wf, name)
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	out, err := m.runSimulation(ctx, wf, compchem.CalculationInput{
		AtomsData:  atoms,
		Driver:     compchem.DriverOpt,
		Calculator: calculator,
	})
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	fname := filepath.Join(outputDir, name+".xyz")
	raw, err := m.invoke(ctx, wf, m.toolset.SaveAtoms, saveArgs{AtomsData: out.FinalStructure, Fname: fname})
	if err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	var saved map[string]string
	if err := json.Unmarshal(raw, &saved); err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	return wf.Succeed(saved)
}

// ReactionConditions holds the thermodynamic conditions for a reaction
// property calculation.
type ReactionConditions struct {
	Property    string
	Temperature float64
	Pressure    float64
}

// DefaultReactionConditions computes enthalpy at standard conditions.
func DefaultReactionConditions() ReactionConditions {
	return ReactionConditions{
		Property:    compchem.PropEnthalpy,
		Temperature: 298.15,
		Pressure:    101325,
	}
}

// ReactionProperty computes a thermochemical reaction property as the
// coefficient-weighted sum over products minus reactants. Each species runs
// the full name -> SMILES -> structure -> thermo pipeline.
func (m *Manual) ReactionProperty(ctx context.Context, reaction dataset.Reaction, calculator compchem.CalculatorSpec, cond ReactionConditions) *schema.Workflow {
	wf := schema.NewWorkflow()
	if cond.Property == "" {
		cond = DefaultReactionConditions()
	}

	total := 0.0
	process := func(species []dataset.Species, sign float64) error {
		for _, s := range species {
			atoms, err := m.resolveStructure(ctx, wf, s.Name)
			if err != nil {
				return err
			}
			out, err := m.runSimulation(ctx, wf, compchem.CalculationInput{
				AtomsData:   atoms,
				Driver:      compchem.DriverThermo,
				Calculator:  calculator,
				Temperature: cond.Temperature,
				Pressure:    cond.Pressure,
			})
			if err != nil {
				return err
			}
			value, ok := out.Thermochemistry[cond.Property]
			if !ok {
				return schema.ErrInvalidInput
			}
			total += sign * value * s.Coefficient
		}
		return nil
	}

	if err := process(reaction.Reactants, -1); err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}
	if err := process(reaction.Products, 1); err != nil {
		return wf.Fail(schema.ErrKindTool, err)
	}

	return wf.Succeed(PropertyValue{Value: total, Property: cond.Property, Unit: "eV"})
}
