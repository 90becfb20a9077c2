package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/dataset"
)

var findErrorsCmd = &cobra.Command{
	Use:   "find-errors <results.json>",
	Short: "List dataset items whose recorded workflows failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := dataset.LoadResults(args[0])
		if err != nil {
			return err
		}
		keys := results.FailedKeys()
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findErrorsCmd)
}
