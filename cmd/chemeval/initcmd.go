package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/config"
)

var initFlags struct {
	path string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(initFlags.path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", initFlags.path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initFlags.path, "path", "chemeval.yaml", "where to write the config file")
	rootCmd.AddCommand(initCmd)
}
