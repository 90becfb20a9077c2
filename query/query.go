// Package query renders the natural-language prompts given to the agent for
// each evaluation task kind.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chemeval/chemeval/dataset"
)

// Kind enumerates the supported query kinds. Each kind maps to one prompt
// shape through Format.
type Kind string

// Molecule-name query kinds.
const (
	NameToCoord    Kind = "name_to_coord"
	NameToOpt      Kind = "name_to_opt"
	NameToVib      Kind = "name_to_vib"
	NameToEnthalpy Kind = "name_to_enthalpy"
	NameToGibbs    Kind = "name_to_gibbs"
	NameToOptFile  Kind = "name_to_opt_file"
)

// SMILES query kinds.
const (
	SMILESToCoord    Kind = "smiles_to_coord"
	SMILESToOpt      Kind = "smiles_to_opt"
	SMILESToVib      Kind = "smiles_to_vib"
	SMILESToEnthalpy Kind = "smiles_to_enthalpy"
	SMILESToGibbs    Kind = "smiles_to_gibbs"
	SMILESToOptFile  Kind = "smiles_to_opt_file"
)

// Reaction query kinds.
const (
	ReactionEnthalpy           Kind = "reaction_enthalpy"
	ReactionEnthalpyMethod     Kind = "reaction_enthalpy_method"
	ReactionGibbs              Kind = "reaction_gibbs"
	ReactionGibbsMethod        Kind = "reaction_gibbs_method"
	ReactionGibbsMethodAndTemp Kind = "reaction_gibbs_method_temperature"
)

// MoleculeParams are the inputs for molecule and SMILES query kinds.
type MoleculeParams struct {
	Name        string
	SMILES      string
	Method      string
	Temperature float64
}

// FormatMolecule renders a molecule or SMILES query. Unknown kinds are an
// error, not a fallback prompt.
func FormatMolecule(kind Kind, p MoleculeParams) (string, error) {
	switch kind {
	case NameToCoord:
		return fmt.Sprintf("Provide the XYZ coordinates corresponding to this molecule: %s", p.Name), nil
	case NameToOpt:
		return fmt.Sprintf("Perform geometry optimization for a molecule %s using %s", p.Name, p.Method), nil
	case NameToVib:
		return fmt.Sprintf("Run vibrational frequency calculation for a molecule %s using %s", p.Name, p.Method), nil
	case NameToEnthalpy:
		return fmt.Sprintf("Calculate the enthalpy of a molecule %s using %s", p.Name, p.Method), nil
	case NameToGibbs:
		return fmt.Sprintf("Calculate the Gibbs free energy of a molecule %s using %s potential at a temperature of %sK",
			p.Name, p.Method, formatNumber(p.Temperature)), nil
	case NameToOptFile:
		return fmt.Sprintf("Perform geometry optimization for a molecule %s using %s. Save the optimized coordinate in an XYZ file.",
			p.Name, p.Method), nil
	case SMILESToCoord:
		return fmt.Sprintf("Provide the XYZ coordinates corresponding to this SMILES string: %s", p.SMILES), nil
	case SMILESToOpt:
		return fmt.Sprintf("Perform geometry optimization for this SMILES string %s using %s", p.SMILES, p.Method), nil
	case SMILESToVib:
		return fmt.Sprintf("Run vibrational frequency calculation for this SMILES string %s using %s", p.SMILES, p.Method), nil
	case SMILESToEnthalpy:
		return fmt.Sprintf("Calculate the enthalpy of this SMILES string %s using %s", p.SMILES, p.Method), nil
	case SMILESToGibbs:
		return fmt.Sprintf("Calculate the Gibbs free energy of this SMILES string %s using %s at T=%sK",
			p.SMILES, p.Method, formatNumber(p.Temperature)), nil
	case SMILESToOptFile:
		return fmt.Sprintf("Perform geometry optimization for this SMILES string %s using %s. Save the optimized coordinate in an XYZ file.",
			p.SMILES, p.Method), nil
	default:
		return "", fmt.Errorf("unknown molecule query kind %q", kind)
	}
}

// ReactionParams are the inputs for reaction query kinds.
type ReactionParams struct {
	Method      string
	Temperature float64
}

// FormatReaction renders a reaction query.
func FormatReaction(kind Kind, r dataset.Reaction, p ReactionParams) (string, error) {
	eq := Equation(r)
	switch kind {
	case ReactionEnthalpy:
		return fmt.Sprintf("Calculate the reaction enthalpy for this reaction: %s", eq), nil
	case ReactionEnthalpyMethod:
		return fmt.Sprintf("You are given a chemical reaction: %s. Calculate the enthalpy for this reaction using %s at %sK.",
			eq, p.Method, formatNumber(p.Temperature)), nil
	case ReactionGibbs:
		return fmt.Sprintf("What is the Gibbs free energy of reaction for %s?", eq), nil
	case ReactionGibbsMethod:
		return fmt.Sprintf("What is the Gibbs free energy of reaction for %s using %s?", eq, p.Method), nil
	case ReactionGibbsMethodAndTemp:
		return fmt.Sprintf("What is the Gibbs free energy of reaction for %s using %s at %sK?",
			eq, p.Method, formatNumber(p.Temperature)), nil
	default:
		return "", fmt.Errorf("unknown reaction query kind %q", kind)
	}
}

// Equation renders a reaction as "2 (water) + 1 (oxygen) -> ...".
func Equation(r dataset.Reaction) string {
	return sideString(r.Reactants) + " -> " + sideString(r.Products)
}

func sideString(side []dataset.Species) string {
	parts := make([]string, 0, len(side))
	for _, s := range side {
		parts = append(parts, fmt.Sprintf("%s (%s)", formatNumber(s.Coefficient), s.Name))
	}
	return strings.Join(parts, " + ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
