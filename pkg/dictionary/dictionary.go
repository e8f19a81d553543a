// Package dictionary builds term-matching dictionaries from a store snapshot:
// per-code synonym lists restricted to a set of semantic types. Four canonical
// groupings are used downstream by text annotation.
package dictionary

import (
	"fmt"

	"github.com/duynguyendang/termgraph/pkg/common/errors"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// Group names one of the canonical semantic-type groupings.
type Group string

const (
	GroupDisease    Group = "disease"
	GroupDrug       Group = "drug"
	GroupGene       Group = "gene"
	GroupAlteration Group = "alteration"
)

// groupTypes fixes the semantic-type labels of each canonical grouping.
// Labels follow the UMLS semantic network names carried by the dump.
var groupTypes = map[Group][]string{
	GroupDisease: {
		"Neoplastic Process",
		"Disease or Syndrome",
		"Mental or Behavioral Dysfunction",
		"Congenital Abnormality",
		"Anatomical Abnormality",
		"Sign or Symptom",
		"Finding",
	},
	GroupDrug: {
		"Pharmacologic Substance",
		"Antibiotic",
		"Immunologic Factor",
		"Clinical Drug",
		"Biologically Active Substance",
		"Therapeutic or Preventive Procedure",
	},
	GroupGene: {
		"Gene or Genome",
	},
	GroupAlteration: {
		"Cell or Molecular Dysfunction",
		"Genetic Function",
		"Molecular Sequence",
		"Nucleotide Sequence",
		"Amino Acid, Peptide, or Protein",
	},
}

// Groups returns the canonical group names.
func Groups() []Group {
	return []Group{GroupDisease, GroupDrug, GroupGene, GroupAlteration}
}

// TypesFor returns the semantic-type labels of a canonical group.
func TypesFor(group Group) ([]string, bool) {
	types, ok := groupTypes[group]
	return types, ok
}

// Build returns a mapping code -> synonym list for every concept whose
// semantic types intersect the filter. Synonym order is the post-pruning
// order from normalization, so identical input yields identical output.
// Concepts with no surviving synonyms are excluded.
func Build(snap *store.Snapshot, filter []string) map[string][]string {
	types := make(map[string]bool, len(filter))
	for _, t := range filter {
		types[t] = true
	}

	dict := make(map[string][]string)
	for _, code := range snap.Codes() {
		c, ok := snap.Concept(code)
		if !ok || len(c.Synonyms) == 0 {
			continue
		}
		if !c.HasSemanticType(types) {
			continue
		}
		dict[c.Code] = c.Synonyms
	}
	return dict
}

// BuildGroup builds the dictionary for a canonical grouping.
func BuildGroup(snap *store.Snapshot, group Group) (map[string][]string, error) {
	types, ok := groupTypes[group]
	if !ok {
		return nil, fmt.Errorf("%w: unknown dictionary group %q", errors.ErrInvalidInput, group)
	}
	return Build(snap, types), nil
}
