package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/schema"
	"github.com/chemeval/chemeval/tools/chem"
	"github.com/chemeval/chemeval/workflow"
)

// Manual workflow task names.
const (
	taskSMILES    = "smiles"
	taskAtomsData = "atomsdata"
	taskOpt       = "opt"
	taskVib       = "vib"
	taskGibbs     = "gibbs"
	taskOptFile   = "opt_file"
)

var manualFlags struct {
	fname       string
	nStructures int
	task        string
	outputFp    string
	outputDir   string
}

// manualTask maps a task name to the workflow it runs per molecule.
func manualTask(task string, manual *workflow.Manual, calculator compchem.CalculatorSpec, temperature float64, outputDir string) (func(ctx context.Context, name string) *schema.Workflow, error) {
	switch task {
	case taskSMILES:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.SMILESFromName(ctx, name)
		}, nil
	case taskAtomsData:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.AtomsDataFromName(ctx, name)
		}, nil
	case taskOpt:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.OptimizeGeometry(ctx, name, calculator)
		}, nil
	case taskVib:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.VibrationalFrequencies(ctx, name, calculator)
		}, nil
	case taskGibbs:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.GibbsFreeEnergy(ctx, name, calculator, temperature)
		}, nil
	case taskOptFile:
		return func(ctx context.Context, name string) *schema.Workflow {
			return manual.OptimizeAndSave(ctx, name, calculator, outputDir)
		}, nil
	default:
		return nil, fmt.Errorf("unknown task %q (one of: smiles, atomsdata, opt, vib, gibbs, opt_file)", task)
	}
}

var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Run deterministic reference workflows over a molecule dataset",
	Long: `Runs the selected manual workflow for each molecule in the dataset and
writes the recorded tool calls and results. Failures are contained per
molecule so one bad entry never stops the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)
		manual := workflow.NewManual(chem.NewToolset(pc, cc))

		run, err := manualTask(manualFlags.task, manual, cfg.Calculator.Spec(),
			cfg.Calculator.Temperature, manualFlags.outputDir)
		if err != nil {
			return err
		}

		molecules, err := dataset.LoadMolecules(manualFlags.fname, manualFlags.nStructures)
		if err != nil {
			return err
		}

		combined := dataset.Results{}
		for _, molecule := range molecules {
			fmt.Printf("molecule %d: %s\n", molecule.Index, molecule.Name)
			combined[molecule.Name] = &dataset.RunRecord{
				ManualWorkflow: run(cmd.Context(), molecule.Name),
				Metadata:       dataset.CollectMetadata(),
			}
		}

		if err := dataset.SaveJSON(manualFlags.outputFp, combined); err != nil {
			return err
		}
		fmt.Printf("Saved %d workflows to %s\n", len(combined), manualFlags.outputFp)
		return nil
	},
}

var manualReactionFlags struct {
	reactionFp string
	nReactions int
	property   string
	outputFp   string
}

var manualReactionsCmd = &cobra.Command{
	Use:   "manual-reactions",
	Short: "Compute reaction thermochemistry through the manual workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)
		manual := workflow.NewManual(chem.NewToolset(pc, cc))

		reactions, err := dataset.LoadReactions(manualReactionFlags.reactionFp, manualReactionFlags.nReactions)
		if err != nil {
			return err
		}

		cond := workflow.ReactionConditions{
			Property:    manualReactionFlags.property,
			Temperature: cfg.Calculator.Temperature,
			Pressure:    cfg.Calculator.Pressure,
		}

		combined := dataset.Results{}
		for _, reaction := range reactions {
			fmt.Printf("reaction %d: %s\n", reaction.ReactionIndex, reaction.ReactionName)
			combined[reaction.ReactionName] = &dataset.RunRecord{
				ManualWorkflow: manual.ReactionProperty(cmd.Context(), reaction, cfg.Calculator.Spec(), cond),
				Metadata:       dataset.CollectMetadata(),
			}
		}

		if err := dataset.SaveJSON(manualReactionFlags.outputFp, combined); err != nil {
			return err
		}
		fmt.Printf("Saved %d workflows to %s\n", len(combined), manualReactionFlags.outputFp)
		return nil
	},
}

func init() {
	manualCmd.Flags().StringVar(&manualFlags.fname, "fname", "data_from_pubchem.json", "input molecule dataset")
	manualCmd.Flags().IntVar(&manualFlags.nStructures, "n-structures", 15, "number of molecules to process")
	manualCmd.Flags().StringVar(&manualFlags.task, "task", taskOptFile, "workflow task (smiles, atomsdata, opt, vib, gibbs, opt_file)")
	manualCmd.Flags().StringVar(&manualFlags.outputFp, "output-fp", "manual_workflow.json", "output results path")
	manualCmd.Flags().StringVar(&manualFlags.outputDir, "output-dir", "manual_files", "directory for saved structures (opt_file task)")
	rootCmd.AddCommand(manualCmd)

	manualReactionsCmd.Flags().StringVar(&manualReactionFlags.reactionFp, "reaction-fp", "reaction_dataset.json", "input reaction dataset")
	manualReactionsCmd.Flags().IntVar(&manualReactionFlags.nReactions, "n-reactions", 10, "number of reactions to process")
	manualReactionsCmd.Flags().StringVar(&manualReactionFlags.property, "property", compchem.PropEnthalpy, "thermochemical property (enthalpy, gibbs_free_energy, entropy)")
	manualReactionsCmd.Flags().StringVar(&manualReactionFlags.outputFp, "output-fp", "manual_workflow.json", "output results path")
	rootCmd.AddCommand(manualReactionsCmd)
}
