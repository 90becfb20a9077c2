package compchem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AtomsData is the structure representation exchanged with the calculation
// backend: atomic numbers plus Cartesian positions in Angstrom.
type AtomsData struct {
	Numbers      []int       `json:"numbers"`
	Positions    [][]float64 `json:"positions"`
	Charge       int         `json:"charge"`
	Multiplicity int         `json:"multiplicity"`
}

// NumAtoms returns the atom count.
func (a *AtomsData) NumAtoms() int {
	return len(a.Numbers)
}

// elementSymbols maps atomic number to element symbol.
var elementSymbols = []string{
	"X", "H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for z, sym := range elementSymbols {
		if z == 0 {
			continue
		}
		m[sym] = z
	}
	return m
}()

// Symbol returns the element symbol for an atomic number.
func Symbol(z int) (string, error) {
	if z <= 0 || z >= len(elementSymbols) {
		return "", fmt.Errorf("atomic number %d out of range", z)
	}
	return elementSymbols[z], nil
}

// AtomicNumber returns the atomic number for an element symbol.
func AtomicNumber(symbol string) (int, error) {
	if z, ok := atomicNumbers[symbol]; ok {
		return z, nil
	}
	return 0, fmt.Errorf("unknown element symbol %q", symbol)
}

// WriteXYZ writes the structure in XYZ format.
func (a *AtomsData) WriteXYZ(w io.Writer, comment string) error {
	if len(a.Numbers) != len(a.Positions) {
		return fmt.Errorf("atomsdata has %d numbers but %d positions", len(a.Numbers), len(a.Positions))
	}
	if _, err := fmt.Fprintf(w, "%d\n%s\n", len(a.Numbers), comment); err != nil {
		return err
	}
	for i, z := range a.Numbers {
		sym, err := Symbol(z)
		if err != nil {
			return err
		}
		pos := a.Positions[i]
		if len(pos) != 3 {
			return fmt.Errorf("atom %d has %d coordinates", i, len(pos))
		}
		if _, err := fmt.Fprintf(w, "%-2s %14.8f %14.8f %14.8f\n", sym, pos[0], pos[1], pos[2]); err != nil {
			return err
		}
	}
	return nil
}

// ReadXYZ parses a structure in XYZ format.
func ReadXYZ(r io.Reader) (*AtomsData, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("xyz: missing atom count line")
	}
	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("xyz: bad atom count: %w", err)
	}

	// Comment line.
	if !scanner.Scan() {
		return nil, fmt.Errorf("xyz: missing comment line")
	}

	atoms := &AtomsData{Multiplicity: 1}
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("xyz: expected %d atoms, got %d", count, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("xyz: malformed atom line %d", i+1)
		}
		z, err := AtomicNumber(fields[0])
		if err != nil {
			return nil, fmt.Errorf("xyz: line %d: %w", i+1, err)
		}
		pos := make([]float64, 3)
		for j := 0; j < 3; j++ {
			pos[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("xyz: line %d: bad coordinate: %w", i+1, err)
			}
		}
		atoms.Numbers = append(atoms.Numbers, z)
		atoms.Positions = append(atoms.Positions, pos)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return atoms, nil
}
