package pubchem

import (
	"context"
	"errors"
	"math/rand"

	"github.com/chemeval/chemeval/dataset"
	"github.com/chemeval/chemeval/schema"
)

// AtomCountFunc resolves a SMILES string to its atom count. The sampler uses
// it to filter candidates by molecule size.
type AtomCountFunc func(ctx context.Context, smiles string) (int, error)

// SamplerConfig controls random molecule sampling.
type SamplerConfig struct {
	N        int   // number of molecules to collect
	CIDMin   int   // lower bound of the CID range (inclusive)
	CIDMax   int   // upper bound of the CID range (exclusive)
	Seed     int64 // random seed for reproducibility
	MinAtoms int   // molecules at or below this size are skipped
	MaxAtoms int   // molecules at or above this size are skipped
	MaxTries int   // safety cap on lookups; 0 means 100 per requested molecule
}

// DefaultSamplerConfig mirrors the dataset-generation defaults.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		N:        60,
		CIDMin:   0,
		CIDMax:   10_000_000,
		Seed:     2025,
		MinAtoms: 6,
		MaxAtoms: 20,
	}
}

// Sampler draws random compounds from PubChem and filters them by size.
type Sampler struct {
	client    *Client
	atomCount AtomCountFunc
	logf      func(format string, args ...interface{})
}

// NewSampler creates a sampler. logf may be nil.
func NewSampler(client *Client, atomCount AtomCountFunc, logf func(string, ...interface{})) *Sampler {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Sampler{client: client, atomCount: atomCount, logf: logf}
}

// Sample collects cfg.N molecules by drawing random CIDs. CIDs without a
// usable name, without a SMILES, or outside the atom-count window are
// skipped; lookup failures are skipped as well so one bad CID never aborts
// the run.
func (s *Sampler) Sample(ctx context.Context, cfg SamplerConfig) ([]dataset.Molecule, error) {
	if cfg.N <= 0 {
		return nil, schema.NewValidationError("sampler.n", cfg.N, "must be positive")
	}
	if cfg.CIDMax <= cfg.CIDMin {
		return nil, schema.NewValidationError("sampler.cid_range", cfg.CIDMax, "empty CID range")
	}
	maxTries := cfg.MaxTries
	if maxTries <= 0 {
		maxTries = cfg.N * 100
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	tried := make(map[int]bool)
	var output []dataset.Molecule

	for tries := 0; len(output) < cfg.N && tries < maxTries; tries++ {
		if err := ctx.Err(); err != nil {
			return output, err
		}

		cid := cfg.CIDMin + rng.Intn(cfg.CIDMax-cfg.CIDMin)
		if tried[cid] {
			continue
		}
		tried[cid] = true

		compound, err := s.client.CompoundByCID(ctx, cid)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return output, err
			}
			continue
		}

		name := compound.PreferredName()
		if name == "" {
			continue
		}

		smiles, err := s.client.SMILESByName(ctx, name)
		if err != nil {
			continue
		}

		natoms, err := s.atomCount(ctx, smiles)
		if err != nil {
			continue
		}
		if natoms <= cfg.MinAtoms || natoms >= cfg.MaxAtoms {
			s.logf("skipping %s: %d atoms outside window", name, natoms)
			continue
		}

		output = append(output, dataset.Molecule{
			Index:         len(output),
			Name:          name,
			NumberOfAtoms: natoms,
			SMILES:        smiles,
		})
		s.logf("collected %d/%d: %s", len(output), cfg.N, name)
	}

	if len(output) < cfg.N {
		return output, schema.NewWorkflowError("pubchem_sample", "sample",
			errors.New("exhausted lookup budget before collecting requested molecules"))
	}
	return output, nil
}
