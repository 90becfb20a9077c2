package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/query"
	"github.com/chemeval/chemeval/tools/chem"
	"github.com/chemeval/chemeval/workflow"
)

var llmFlags struct {
	modelName   string
	fname       string
	nStructures int
	queryKind   string
	outputFp    string
	stateDir    string
}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Run LLM agent workflows over a molecule dataset",
	Long: `For each molecule, renders the query for the selected kind, runs it
through the agent, and records the tool-call trace and final answer.
Agent failures are contained per molecule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)
		toolset := chem.NewToolset(pc, cc)
		ag, err := newAgent(cfg, llmFlags.modelName, toolset)
		if err != nil {
			return err
		}

		molecules, err := dataset.LoadMolecules(llmFlags.fname, llmFlags.nStructures)
		if err != nil {
			return err
		}

		kind := query.Kind(llmFlags.queryKind)
		combined := dataset.Results{}
		for idx, molecule := range molecules {
			q, err := query.FormatMolecule(kind, query.MoleculeParams{
				Name:        molecule.Name,
				SMILES:      molecule.SMILES,
				Method:      cfg.Calculator.Method,
				Temperature: cfg.Calculator.Temperature,
			})
			if err != nil {
				return err
			}

			fmt.Printf("molecule %d: %s\n", molecule.Index, molecule.Name)
			threadID := strconv.Itoa(idx)
			combined[molecule.Name] = &dataset.RunRecord{
				LLMWorkflow: workflow.RunLLM(cmd.Context(), ag, q, threadID),
				Metadata:    dataset.CollectMetadata(),
			}

			if llmFlags.stateDir != "" {
				statePath := filepath.Join(llmFlags.stateDir, threadID+".json")
				if err := ag.WriteState(threadID, statePath); err != nil {
					fmt.Printf("write state for %s: %v\n", molecule.Name, err)
				}
			}
		}

		if err := dataset.SaveJSON(llmFlags.outputFp, combined); err != nil {
			return err
		}
		fmt.Printf("Saved %d workflows to %s\n", len(combined), llmFlags.outputFp)
		return nil
	},
}

var llmReactionFlags struct {
	modelName  string
	reactionFp string
	nReactions int
	queryKind  string
	outputFp   string
}

var llmReactionsCmd = &cobra.Command{
	Use:   "llm-reactions",
	Short: "Run LLM agent workflows over a reaction dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)
		toolset := chem.NewToolset(pc, cc)
		ag, err := newAgent(cfg, llmReactionFlags.modelName, toolset)
		if err != nil {
			return err
		}

		reactions, err := dataset.LoadReactions(llmReactionFlags.reactionFp, llmReactionFlags.nReactions)
		if err != nil {
			return err
		}

		kind := query.Kind(llmReactionFlags.queryKind)
		combined := dataset.Results{}
		for idx, reaction := range reactions {
			q, err := query.FormatReaction(kind, reaction, query.ReactionParams{
				Method:      cfg.Calculator.Method,
				Temperature: cfg.Calculator.Temperature,
			})
			if err != nil {
				return err
			}

			fmt.Printf("reaction %d: %s\n", reaction.ReactionIndex, reaction.ReactionName)
			combined[reaction.ReactionName] = &dataset.RunRecord{
				LLMWorkflow: workflow.RunLLM(cmd.Context(), ag, q, strconv.Itoa(idx)),
				Metadata:    dataset.CollectMetadata(),
			}
		}

		if err := dataset.SaveJSON(llmReactionFlags.outputFp, combined); err != nil {
			return err
		}
		fmt.Printf("Saved %d workflows to %s\n", len(combined), llmReactionFlags.outputFp)
		return nil
	},
}

func init() {
	llmCmd.Flags().StringVar(&llmFlags.modelName, "model-name", "", "LLM model name (default from config)")
	llmCmd.Flags().StringVar(&llmFlags.fname, "fname", "data_from_pubchem.json", "input molecule dataset")
	llmCmd.Flags().IntVar(&llmFlags.nStructures, "n-structures", 15, "number of molecules to process")
	llmCmd.Flags().StringVar(&llmFlags.queryKind, "query-kind", string(query.NameToOptFile), "query kind to render per molecule")
	llmCmd.Flags().StringVar(&llmFlags.outputFp, "output-fp", "llm_workflow.json", "output results path")
	llmCmd.Flags().StringVar(&llmFlags.stateDir, "state-dir", "", "directory to dump per-thread agent state (optional)")
	rootCmd.AddCommand(llmCmd)

	llmReactionsCmd.Flags().StringVar(&llmReactionFlags.modelName, "model-name", "", "LLM model name (default from config)")
	llmReactionsCmd.Flags().StringVar(&llmReactionFlags.reactionFp, "reaction-fp", "reaction_dataset.json", "input reaction dataset")
	llmReactionsCmd.Flags().IntVar(&llmReactionFlags.nReactions, "n-reactions", 10, "number of reactions to process")
	llmReactionsCmd.Flags().StringVar(&llmReactionFlags.queryKind, "query-kind", string(query.ReactionEnthalpyMethod), "query kind to render per reaction")
	llmReactionsCmd.Flags().StringVar(&llmReactionFlags.outputFp, "output-fp", "llm_workflow.json", "output results path")
	rootCmd.AddCommand(llmReactionsCmd)
}
