package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/eval"
	"github.com/chemeval/chemeval/tools/chem"
	"github.com/chemeval/chemeval/workflow"
)

var evalFlags struct {
	modelName string
	inputFile string
	outputDir string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score a model's tool calls against ground truth",
	Long: `Runs each ground-truth query through the agent, compares the observed
tool-call sequence against the expected one by position, and reports
per-query diffs plus an overall accuracy figure. A query only counts as
accurate when every expected call matches in name, arguments, and order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc, cc := newClients(cfg)
		toolset := chem.NewToolset(pc, cc)
		ag, err := newAgent(cfg, evalFlags.modelName, toolset)
		if err != nil {
			return err
		}

		cases, err := eval.LoadCases(evalFlags.inputFile)
		if err != nil {
			return err
		}

		modelName := evalFlags.modelName
		if modelName == "" {
			modelName = cfg.Model.Name
		}

		// Run every query first, then score, so the raw traces are saved
		// even if scoring output fails.
		observed := make([][]eval.ToolCall, len(cases))
		for idx, c := range cases {
			fmt.Printf("query %d: %s\n", idx, c.Query)
			wf := workflow.RunLLM(cmd.Context(), ag, c.Query, strconv.Itoa(idx))
			observed[idx] = eval.FromSchemaCalls(wf.ToolCalls)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		tracePath := filepath.Join(evalFlags.outputDir, fmt.Sprintf("%s_%s_tool_call.json", modelName, timestamp))
		if err := dataset.SaveJSON(tracePath, observed); err != nil {
			return err
		}
		fmt.Printf("Saved tool calls to %s\n", tracePath)

		descriptions := eval.DescribeTools(toolset.All())
		results := make([]eval.Result, len(cases))
		details := make(map[string]eval.Result, len(cases))
		for idx, c := range cases {
			results[idx] = eval.CheckWithOrder(descriptions, observed[idx], c.Answer.ToolCalls)
			details[c.Query] = results[idx]
		}

		summary := eval.Summarize(results)
		fmt.Printf("Accuracy of %s: %.1f%% (%d/%d accurate tool-call sequences)\n",
			modelName, summary.Accuracy, summary.FullyMatched, summary.Total)

		evalPath := filepath.Join(evalFlags.outputDir, fmt.Sprintf("%s_%s_eval.json", modelName, timestamp))
		if err := dataset.SaveJSON(evalPath, map[string]interface{}{
			"summary": summary,
			"details": details,
		}); err != nil {
			return err
		}
		fmt.Printf("Saved evaluation results to %s\n", evalPath)
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalFlags.modelName, "model-name", "", "LLM model name (default from config)")
	evalCmd.Flags().StringVar(&evalFlags.inputFile, "input-file", "ground_truth_sample.json", "ground-truth query file")
	evalCmd.Flags().StringVar(&evalFlags.outputDir, "output-dir", ".", "directory for trace and score files")
	rootCmd.AddCommand(evalCmd)
}
