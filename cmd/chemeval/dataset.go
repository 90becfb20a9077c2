package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/pubchem"
)

var datasetFlags struct {
	n        int
	cidMin   int
	cidMax   int
	seed     int64
	minAtoms int
	maxAtoms int
	outputFp string
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Sample random molecules from PubChem into a dataset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)

		atomCount := func(ctx context.Context, smiles string) (int, error) {
			atoms, err := cc.AtomsDataFromSMILES(ctx, smiles)
			if err != nil {
				return 0, err
			}
			return atoms.NumAtoms(), nil
		}

		sampler := pubchem.NewSampler(pc, atomCount, log.Printf)
		molecules, err := sampler.Sample(cmd.Context(), pubchem.SamplerConfig{
			N:        datasetFlags.n,
			CIDMin:   datasetFlags.cidMin,
			CIDMax:   datasetFlags.cidMax,
			Seed:     datasetFlags.seed,
			MinAtoms: datasetFlags.minAtoms,
			MaxAtoms: datasetFlags.maxAtoms,
		})
		if err != nil {
			return err
		}

		if err := dataset.SaveJSON(datasetFlags.outputFp, molecules); err != nil {
			return err
		}
		fmt.Printf("Saved %d molecules to %s\n", len(molecules), datasetFlags.outputFp)
		return nil
	},
}

func init() {
	def := pubchem.DefaultSamplerConfig()
	datasetCmd.Flags().IntVar(&datasetFlags.n, "n-structures", def.N, "number of molecules to collect")
	datasetCmd.Flags().IntVar(&datasetFlags.cidMin, "cid-min", def.CIDMin, "lower bound of the CID range")
	datasetCmd.Flags().IntVar(&datasetFlags.cidMax, "cid-max", def.CIDMax, "upper bound of the CID range")
	datasetCmd.Flags().Int64Var(&datasetFlags.seed, "seed", def.Seed, "random seed")
	datasetCmd.Flags().IntVar(&datasetFlags.minAtoms, "min-atoms", def.MinAtoms, "skip molecules at or below this atom count")
	datasetCmd.Flags().IntVar(&datasetFlags.maxAtoms, "max-atoms", def.MaxAtoms, "skip molecules at or above this atom count")
	datasetCmd.Flags().StringVar(&datasetFlags.outputFp, "output-fp", "data_from_pubchem.json", "output dataset path")
	rootCmd.AddCommand(datasetCmd)
}
