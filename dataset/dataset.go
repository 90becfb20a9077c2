// Package dataset defines the molecule and reaction dataset formats and the
// JSON result records written by evaluation runs.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chemeval/chemeval/schema"
)

// Molecule is one entry in a molecule dataset.
type Molecule struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	NumberOfAtoms int    `json:"number_of_atoms"`
	SMILES        string `json:"smiles"`
}

// Species is a reactant or product with its stoichiometric coefficient.
type Species struct {
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`
}

// Reaction is one entry in a reaction dataset.
type Reaction struct {
	ReactionIndex int       `json:"reaction_index"`
	ReactionName  string    `json:"reaction_name"`
	Reactants     []Species `json:"reactants"`
	Products      []Species `json:"products"`
}

// LoadMolecules reads a molecule dataset, keeping at most n entries.
// n <= 0 keeps everything.
func LoadMolecules(path string, n int) ([]Molecule, error) {
	var molecules []Molecule
	if err := loadJSON(path, &molecules); err != nil {
		return nil, err
	}
	return limit(molecules, n), nil
}

// LoadReactions reads a reaction dataset, keeping at most n entries.
// n <= 0 keeps everything.
func LoadReactions(path string, n int) ([]Reaction, error) {
	var reactions []Reaction
	if err := loadJSON(path, &reactions); err != nil {
		return nil, err
	}
	return limit(reactions, n), nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && n < len(items) {
		return items[:n]
	}
	return items
}

// SaveJSON writes v as indented JSON, creating parent directories as needed.
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Metadata describes provenance of one result record.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	GitCommit string `json:"git_commit"`
}

// CollectMetadata captures the current timestamp and git commit.
// A failing git lookup degrades to "unknown".
func CollectMetadata() Metadata {
	commit := "unknown"
	if out, err := exec.Command("git", "rev-parse", "HEAD").Output(); err == nil {
		commit = strings.TrimSpace(string(out))
	}
	return Metadata{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		GitCommit: commit,
	}
}

// RunRecord holds the workflows and metadata recorded for one dataset item.
type RunRecord struct {
	ManualWorkflow *schema.Workflow `json:"manual_workflow,omitempty"`
	LLMWorkflow    *schema.Workflow `json:"llm_workflow,omitempty"`
	Metadata       interface{}      `json:"metadata,omitempty"`
}

// Results maps dataset item keys (molecule or reaction names) to records.
type Results map[string]*RunRecord

// LoadResults reads a results file written by a previous run.
func LoadResults(path string) (Results, error) {
	var results Results
	if err := loadJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FailedKeys returns the keys whose recorded workflows carry failed results.
func (r Results) FailedKeys() []string {
	var failed []string
	for key, record := range r {
		if record == nil {
			continue
		}
		for _, wf := range []*schema.Workflow{record.ManualWorkflow, record.LLMWorkflow} {
			if wf != nil && !wf.Result.OK {
				failed = append(failed, key)
				break
			}
		}
	}
	return failed
}
