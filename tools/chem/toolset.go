// Package chem provides the chemistry tools exposed to the agent and to the
// manual reference workflows: compound name resolution, structure
// generation, simulation driving, and structure file handling.
package chem

import (
	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/pubchem"
	"github.com/chemeval/chemeval/tools"
)

// Tool names as the agent sees them.
const (
	ToolNameToSMILES  = "molecule_name_to_smiles"
	ToolSMILESToAtoms = "smiles_to_atomsdata"
	ToolRunASE        = "run_ase"
	ToolFileToAtoms   = "file_to_atomsdata"
	ToolSaveAtoms     = "save_atomsdata_to_file"
	ToolFetchPage     = "fetch_compound_page"
)

// Toolset bundles the chemistry tools over shared service clients.
type Toolset struct {
	NameToSMILES  tools.Tool
	SMILESToAtoms tools.Tool
	RunASE        tools.Tool
	FileToAtoms   tools.Tool
	SaveAtoms     tools.Tool
	FetchPage     tools.Tool
}

// NewToolset builds the chemistry tools over the given clients.
func NewToolset(pc *pubchem.Client, cc *compchem.Client) *Toolset {
	return &Toolset{
		NameToSMILES:  NewNameToSMILESTool(pc),
		SMILESToAtoms: NewSMILESToAtomsTool(cc),
		RunASE:        NewRunASETool(cc),
		FileToAtoms:   NewFileToAtomsTool(),
		SaveAtoms:     NewSaveAtomsTool(),
		FetchPage:     NewFetchPageTool(0),
	}
}

// All returns the tools in a stable order suitable for registration.
func (t *Toolset) All() []tools.Tool {
	return []tools.Tool{
		t.NameToSMILES,
		t.SMILESToAtoms,
		t.RunASE,
		t.FileToAtoms,
		t.SaveAtoms,
		t.FetchPage,
	}
}
