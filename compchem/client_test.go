package compchem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAtomsDataFromSMILES(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/atomsdata" {
			http.NotFound(w, r)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["smiles"] != "O" {
			t.Errorf("smiles = %q, want O", req["smiles"])
		}
		json.NewEncoder(w).Encode(AtomsData{
			Numbers:   []int{8, 1, 1},
			Positions: [][]float64{{0, 0, 0}, {0, 1, 0}, {0, -1, 0}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	atoms, err := client.AtomsDataFromSMILES(context.Background(), "O")
	if err != nil {
		t.Fatalf("AtomsDataFromSMILES: %v", err)
	}
	if atoms.NumAtoms() != 3 {
		t.Errorf("NumAtoms() = %d, want 3", atoms.NumAtoms())
	}
	if atoms.Multiplicity != 1 {
		t.Errorf("missing multiplicity default, got %d", atoms.Multiplicity)
	}
}

func TestCalculate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input CalculationInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode input: %v", err)
		}
		if input.Driver != DriverThermo || input.Temperature != 400 {
			t.Errorf("unexpected input: %+v", input)
		}
		json.NewEncoder(w).Encode(CalculationOutput{
			Converged: true,
			Energy:    -76.4,
			Thermochemistry: map[string]float64{
				PropEnthalpy:        -75.9,
				PropGibbsFreeEnergy: -76.2,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	out, err := client.Calculate(context.Background(), &CalculationInput{
		AtomsData:   &AtomsData{Numbers: []int{8}, Positions: [][]float64{{0, 0, 0}}},
		Driver:      DriverThermo,
		Calculator:  CalculatorSpec{CalculatorType: "TBLite", Method: "GFN2-xTB"},
		Temperature: 400,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !out.Converged {
		t.Error("expected converged output")
	}
	if out.Thermochemistry[PropEnthalpy] != -75.9 {
		t.Errorf("enthalpy = %v", out.Thermochemistry[PropEnthalpy])
	}
}

func TestCalculateValidatesInput(t *testing.T) {
	client := NewClient("http://unused")

	if _, err := client.Calculate(context.Background(), &CalculationInput{Driver: DriverOpt}); err == nil {
		t.Error("expected error for missing atomsdata")
	}
	atoms := &AtomsData{Numbers: []int{1}, Positions: [][]float64{{0, 0, 0}}}
	if _, err := client.Calculate(context.Background(), &CalculationInput{AtomsData: atoms}); err == nil {
		t.Error("expected error for missing driver")
	}
}

func TestCalculateBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "SMILES could not be embedded", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Calculate(context.Background(), &CalculationInput{
		AtomsData: &AtomsData{Numbers: []int{8}, Positions: [][]float64{{0, 0, 0}}},
		Driver:    DriverOpt,
	})
	if err == nil {
		t.Fatal("expected backend error")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("expected status code in error, got %v", err)
	}
}
