// Package compchem talks to the computational-chemistry backend service
// that performs structure generation and simulation runs.
package compchem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Calculation drivers accepted by the backend.
const (
	DriverOpt    = "opt"
	DriverVib    = "vib"
	DriverThermo = "thermo"
)

// Thermochemistry keys returned for thermo runs.
const (
	PropEnthalpy        = "enthalpy"
	PropGibbsFreeEnergy = "gibbs_free_energy"
	PropEntropy         = "entropy"
)

// CalculatorSpec selects the simulation method.
type CalculatorSpec struct {
	CalculatorType string `json:"calculator_type"`
	Method         string `json:"method,omitempty"`
}

// CalculationInput is the payload for a simulation run.
type CalculationInput struct {
	AtomsData   *AtomsData     `json:"atomsdata"`
	Driver      string         `json:"driver"`
	Calculator  CalculatorSpec `json:"calculator"`
	Temperature float64        `json:"temperature,omitempty"`
	Pressure    float64        `json:"pressure,omitempty"`
}

// Frequencies holds vibrational analysis output in cm^-1.
type Frequencies struct {
	Frequencies []float64 `json:"frequencies"`
}

// CalculationOutput is the backend response for a simulation run.
type CalculationOutput struct {
	Converged              bool               `json:"converged"`
	Energy                 float64            `json:"energy"`
	FinalStructure         *AtomsData         `json:"final_structure,omitempty"`
	VibrationalFrequencies *Frequencies       `json:"vibrational_frequencies,omitempty"`
	Thermochemistry        map[string]float64 `json:"thermochemistry,omitempty"`
}

// Client is a REST client for the calculation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AtomsDataFromSMILES asks the backend to embed a SMILES string into a
// 3D structure.
func (c *Client) AtomsDataFromSMILES(ctx context.Context, smiles string) (*AtomsData, error) {
	var atoms AtomsData
	payload := map[string]string{"smiles": smiles}
	if err := c.post(ctx, "/v1/atomsdata", payload, &atoms); err != nil {
		return nil, fmt.Errorf("atomsdata from smiles %q: %w", smiles, err)
	}
	if atoms.Multiplicity == 0 {
		atoms.Multiplicity = 1
	}
	return &atoms, nil
}

// Calculate runs a simulation with the given input.
func (c *Client) Calculate(ctx context.Context, input *CalculationInput) (*CalculationOutput, error) {
	if input.AtomsData == nil {
		return nil, fmt.Errorf("calculate: atomsdata is required")
	}
	if input.Driver == "" {
		return nil, fmt.Errorf("calculate: driver is required")
	}
	var out CalculationOutput
	if err := c.post(ctx, "/v1/calculate", input, &out); err != nil {
		return nil, fmt.Errorf("calculate %s: %w", input.Driver, err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return json.Unmarshal(data, result)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
