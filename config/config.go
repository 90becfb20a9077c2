// Package config loads harness configuration from a YAML file, environment
// variables, and defaults. Configuration is an explicit value handed to the
// components that need it; nothing reads it through package globals.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chemeval/chemeval/compchem"
)

// EnvPrefix is the environment variable prefix, e.g. CHEMEVAL_MODEL_NAME.
const EnvPrefix = "CHEMEVAL"

// ModelConfig selects and tunes the LLM.
type ModelConfig struct {
	Name        string  `mapstructure:"name" yaml:"name"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// PubChemConfig tunes the compound database client.
type PubChemConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	ThrottleMS int    `mapstructure:"throttle_ms" yaml:"throttle_ms"`
}

// Throttle returns the configured inter-request delay.
func (c PubChemConfig) Throttle() time.Duration {
	return time.Duration(c.ThrottleMS) * time.Millisecond
}

// CompchemConfig locates the calculation backend.
type CompchemConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// CalculatorConfig picks the default simulation method and conditions.
type CalculatorConfig struct {
	Type        string  `mapstructure:"type" yaml:"type"`
	Method      string  `mapstructure:"method" yaml:"method"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	Pressure    float64 `mapstructure:"pressure" yaml:"pressure"`
}

// Spec converts the configuration into a calculator spec.
func (c CalculatorConfig) Spec() compchem.CalculatorSpec {
	return compchem.CalculatorSpec{CalculatorType: c.Type, Method: c.Method}
}

// RunConfig tunes agent runs.
type RunConfig struct {
	MaxTurns      int  `mapstructure:"max_turns" yaml:"max_turns"`
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	StructuredLog bool `mapstructure:"structured_log" yaml:"structured_log"`
}

// Config is the full harness configuration.
type Config struct {
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	PubChem    PubChemConfig    `mapstructure:"pubchem" yaml:"pubchem"`
	Compchem   CompchemConfig   `mapstructure:"compchem" yaml:"compchem"`
	Calculator CalculatorConfig `mapstructure:"calculator" yaml:"calculator"`
	Run        RunConfig        `mapstructure:"run" yaml:"run"`
	OutputDir  string           `mapstructure:"output_dir" yaml:"output_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Name:        "gpt-4o-mini",
			Temperature: 0.0,
			MaxTokens:   4096,
		},
		PubChem: PubChemConfig{
			BaseURL:    "https://pubchem.ncbi.nlm.nih.gov/rest/pug",
			ThrottleMS: 500,
		},
		Compchem: CompchemConfig{
			BaseURL: "http://localhost:8089",
		},
		Calculator: CalculatorConfig{
			Type:        "TBLite",
			Method:      "GFN2-xTB",
			Temperature: 298.15,
			Pressure:    101325,
		},
		Run: RunConfig{
			MaxTurns: 10,
		},
		OutputDir: "results",
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("model.name", def.Model.Name)
	v.SetDefault("model.temperature", def.Model.Temperature)
	v.SetDefault("model.max_tokens", def.Model.MaxTokens)
	v.SetDefault("pubchem.base_url", def.PubChem.BaseURL)
	v.SetDefault("pubchem.throttle_ms", def.PubChem.ThrottleMS)
	v.SetDefault("compchem.base_url", def.Compchem.BaseURL)
	v.SetDefault("calculator.type", def.Calculator.Type)
	v.SetDefault("calculator.method", def.Calculator.Method)
	v.SetDefault("calculator.temperature", def.Calculator.Temperature)
	v.SetDefault("calculator.pressure", def.Calculator.Pressure)
	v.SetDefault("run.max_turns", def.Run.MaxTurns)
	v.SetDefault("output_dir", def.OutputDir)
}

// Load reads configuration from the given file path, falling back to
// ./chemeval.yaml, then to environment variables and defaults. An empty
// path with no config file present is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("chemeval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = apiKeyFromEnv(cfg.Model.Name)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// apiKeyFromEnv falls back to the conventional provider environment
// variables when no key is configured.
func apiKeyFromEnv(modelName string) string {
	candidates := []string{"OPENAI_API_KEY"}
	switch {
	case strings.HasPrefix(modelName, "claude"):
		candidates = []string{"ANTHROPIC_API_KEY"}
	case strings.HasPrefix(modelName, "gemini"):
		candidates = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, name := range candidates {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

