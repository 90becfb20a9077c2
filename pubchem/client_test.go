package pubchem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/chemeval/chemeval/schema"
)

func propertyResponse(fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"PropertyTable": map[string]interface{}{
			"Properties": []map[string]interface{}{fields},
		},
	}
}

func TestCompoundByCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/compound/cid/962/property/"):
			json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{
				"CID":             962,
				"IUPACName":       "oxidane",
				"CanonicalSMILES": "O",
			}))
		case strings.Contains(r.URL.Path, "/compound/cid/962/synonyms/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"InformationList": map[string]interface{}{
					"Information": []map[string]interface{}{
						{"CID": 962, "Synonym": []string{"water", "H2O"}},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))
	compound, err := client.CompoundByCID(context.Background(), 962)
	if err != nil {
		t.Fatalf("CompoundByCID: %v", err)
	}
	if compound.IUPACName != "oxidane" || compound.CanonicalSMILES != "O" {
		t.Errorf("unexpected compound: %+v", compound)
	}
	if compound.PreferredName() != "oxidane" {
		t.Errorf("PreferredName() = %q, want oxidane", compound.PreferredName())
	}
	if len(compound.Synonyms) != 2 {
		t.Errorf("expected 2 synonyms, got %v", compound.Synonyms)
	}
}

func TestCompoundByCIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))
	_, err := client.CompoundByCID(context.Background(), 1)
	if !errors.Is(err, schema.ErrCompoundNotFound) {
		t.Fatalf("expected ErrCompoundNotFound, got %v", err)
	}
}

func TestSMILESByNameEscapesName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{"CanonicalSMILES": "CCO"}))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))
	smiles, err := client.SMILESByName(context.Background(), "ethyl alcohol")
	if err != nil {
		t.Fatalf("SMILESByName: %v", err)
	}
	if smiles != "CCO" {
		t.Errorf("smiles = %q, want CCO", smiles)
	}
	if !strings.Contains(gotPath, "ethyl%20alcohol") {
		t.Errorf("name not escaped in path: %s", gotPath)
	}
}

func TestThrottleSpacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{"CanonicalSMILES": "O"}))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(50*time.Millisecond))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.SMILESByName(context.Background(), "water"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three throttled requests finished in %v, want >= 100ms", elapsed)
	}
}

func TestSamplerFiltersAndDedupes(t *testing.T) {
	// CIDs resolve to molecules of varying sizes; only the mid-sized ones
	// should be collected.
	atomCounts := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		switch {
		case len(parts) > 3 && parts[2] == "cid" && strings.Contains(r.URL.Path, "/property/"):
			cid, _ := strconv.Atoi(parts[3])
			name := fmt.Sprintf("compound-%d", cid)
			json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{
				"CID":             cid,
				"IUPACName":       name,
				"CanonicalSMILES": name,
			}))
		case len(parts) > 3 && parts[2] == "cid" && strings.Contains(r.URL.Path, "/synonyms/"):
			json.NewEncoder(w).Encode(map[string]interface{}{})
		case len(parts) > 3 && parts[2] == "name":
			json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{
				"CanonicalSMILES": "smiles-" + parts[3],
			}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))

	atomCount := func(ctx context.Context, smiles string) (int, error) {
		// Alternate sizes: every other candidate lands inside the window.
		atomCounts[smiles]++
		if len(atomCounts)%2 == 0 {
			return 30, nil
		}
		return 10, nil
	}

	sampler := NewSampler(client, atomCount, nil)
	molecules, err := sampler.Sample(context.Background(), SamplerConfig{
		N:        5,
		CIDMin:   0,
		CIDMax:   1000,
		Seed:     2025,
		MinAtoms: 6,
		MaxAtoms: 20,
	})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(molecules) != 5 {
		t.Fatalf("collected %d molecules, want 5", len(molecules))
	}

	seen := map[string]bool{}
	for i, m := range molecules {
		if m.Index != i {
			t.Errorf("molecule %d has index %d", i, m.Index)
		}
		if m.NumberOfAtoms != 10 {
			t.Errorf("molecule %s outside atom window: %d", m.Name, m.NumberOfAtoms)
		}
		if seen[m.Name] {
			t.Errorf("duplicate molecule %s", m.Name)
		}
		seen[m.Name] = true
	}
}

func TestSamplerDeterministicSeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		switch {
		case parts[2] == "cid" && strings.Contains(r.URL.Path, "/property/"):
			json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{
				"IUPACName":       "compound-" + parts[3],
				"CanonicalSMILES": "C",
			}))
		case parts[2] == "cid":
			json.NewEncoder(w).Encode(map[string]interface{}{})
		default:
			json.NewEncoder(w).Encode(propertyResponse(map[string]interface{}{"CanonicalSMILES": "C"}))
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))
	atomCount := func(ctx context.Context, smiles string) (int, error) { return 10, nil }
	cfg := SamplerConfig{N: 3, CIDMin: 0, CIDMax: 100000, Seed: 7, MinAtoms: 6, MaxAtoms: 20}

	first, err := NewSampler(client, atomCount, nil).Sample(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first sample: %v", err)
	}
	second, err := NewSampler(client, atomCount, nil).Sample(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second sample: %v", err)
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("same seed produced different samples: %v vs %v", first, second)
		}
	}
}

func TestSamplerBudgetExhaustion(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithThrottle(0))
	atomCount := func(ctx context.Context, smiles string) (int, error) { return 10, nil }

	sampler := NewSampler(client, atomCount, nil)
	_, err := sampler.Sample(context.Background(), SamplerConfig{
		N: 2, CIDMin: 0, CIDMax: 100, Seed: 1, MinAtoms: 6, MaxAtoms: 20, MaxTries: 10,
	})
	if err == nil {
		t.Fatal("expected budget exhaustion error")
	}
}
