package codon

import (
	"fmt"
	"strings"

	polycodon "github.com/bebop/poly/synthesis/codon"
)

// FromNCBITable builds a genetic code from an NCBI translation table
// (1 = standard, 2 = vertebrate mitochondrial, ...).
// ATG stays the canonical start; every other start codon of the table
// becomes an alternative start, followed by any extra starts given.
func FromNCBITable(index int, extraStarts ...string) (*GeneticCode, error) {
	table, err := polycodon.NewTranslationTable(index)
	if err != nil {
		return nil, fmt.Errorf("NCBI translation table %d: %w", index, err)
	}

	var alternatives []string
	for _, c := range table.StartCodons {
		c = strings.ToUpper(c)
		if c != CanonicalStart {
			alternatives = append(alternatives, c)
		}
	}
	alternatives = append(alternatives, extraStarts...)

	stops := make([]string, 0, len(table.StopCodons))
	for _, c := range table.StopCodons {
		stops = append(stops, strings.ToUpper(c))
	}

	gc, err := NewGeneticCode(CanonicalStart, alternatives, stops)
	if err != nil {
		return nil, fmt.Errorf("NCBI translation table %d: %w", index, err)
	}
	return gc, nil
}
