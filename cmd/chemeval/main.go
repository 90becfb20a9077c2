// chemeval runs the evaluation and data-generation harness for the
// computational-chemistry agent: dataset building, manual reference
// workflows, LLM workflow runs, and tool-call scoring.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chemeval/chemeval/agent"
	"github.com/chemeval/chemeval/compchem"
	"github.com/chemeval/chemeval/config"
	"github.com/chemeval/chemeval/llm"
	"github.com/chemeval/chemeval/observer"
	"github.com/chemeval/chemeval/pubchem"
	"github.com/chemeval/chemeval/runner"
	"github.com/chemeval/chemeval/tools/chem"
)

var (
	flagConfig        string
	flagVerbose       bool
	flagStructuredLog bool
)

var rootCmd = &cobra.Command{
	Use:           "chemeval",
	Short:         "Evaluation harness for the LLM-driven computational-chemistry agent",
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `chemeval builds molecule/reaction datasets, runs deterministic manual
reference workflows and LLM agent workflows over them, and scores the
agent's tool-call traces against ground truth.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./chemeval.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagStructuredLog, "structured-log", false, "emit run events as JSON lines")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagVerbose {
		cfg.Run.Verbose = true
	}
	if flagStructuredLog {
		cfg.Run.StructuredLog = true
	}
	return cfg, nil
}

func newObserver(cfg config.Config) runner.Observer {
	if cfg.Run.StructuredLog {
		return observer.NewStructuredObserver()
	}
	return observer.NewLoggingObserver(cfg.Run.Verbose)
}

func newClients(cfg config.Config) (*pubchem.Client, *compchem.Client) {
	pc := pubchem.NewClient(
		pubchem.WithBaseURL(cfg.PubChem.BaseURL),
		pubchem.WithThrottle(cfg.PubChem.Throttle()),
	)
	cc := compchem.NewClient(cfg.Compchem.BaseURL)
	return pc, cc
}

func newAgent(cfg config.Config, modelName string, toolset *chem.Toolset) (*agent.Agent, error) {
	if modelName == "" {
		modelName = cfg.Model.Name
	}
	model := llm.NewLiteLLMAdapter(llm.ProviderConfig{
		Model:       modelName,
		APIKey:      cfg.Model.APIKey,
		BaseURL:     cfg.Model.BaseURL,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
	})
	return agent.New(agent.Config{
		Model:    model,
		Tools:    toolset.All(),
		Observer: newObserver(cfg),
		MaxTurns: cfg.Run.MaxTurns,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
