// Package normalize turns parsed dump records into a cleaned concept
// collection plus explicit edge and synonym tables. The cleaning steps run in
// a fixed order and are driven by a declarative rule set, so release-specific
// data fixes live in data rather than in branches.
package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HierarchyRule adds parents to every concept whose current parent set
// intersects the anchor set, unless the concept code is excluded. Used to
// stitch synthetic edges into the hierarchy, e.g. marking every solid tumor
// subtype as a descendant of a generic solid neoplasm concept while keeping
// hematologic subtypes out.
type HierarchyRule struct {
	Name          string   `yaml:"name"`
	AnchorParents []string `yaml:"anchor_parents"`
	ExcludeCodes  []string `yaml:"exclude_codes"`
	AddParents    []string `yaml:"add_parents"`
}

// EdgeRule adds a single known-missing parent edge.
type EdgeRule struct {
	Child  string `yaml:"child"`
	Parent string `yaml:"parent"`
}

// SynonymRule adds or removes one synonym string on one code.
type SynonymRule struct {
	Code    string `yaml:"code"`
	Synonym string `yaml:"synonym"`
}

// Rules is the full declarative rule set consumed by Normalize. The zero
// value disables every repair step; DefaultRules returns the embedded set for
// the current terminology release.
type Rules struct {
	// Hierarchy repair rules, applied in order.
	Hierarchy []HierarchyRule `yaml:"hierarchy"`

	// Targeted edge injection for known-missing relationships.
	AddEdges []EdgeRule `yaml:"add_edges"`

	// Targeted synonym injection.
	AddSynonyms []SynonymRule `yaml:"add_synonyms"`

	// Targeted synonym removal for known ambiguous overlaps.
	RemoveSynonyms []SynonymRule `yaml:"remove_synonyms"`

	// ExcludeConcepts removes entire concepts whose synonyms are too generic
	// for reliable text matching.
	ExcludeConcepts []string `yaml:"exclude_concepts"`

	// GenericSynonyms are pruned from every concept.
	GenericSynonyms []string `yaml:"generic_synonyms"`
}

// LoadRules reads a rule set from a YAML file, replacing the embedded
// defaults wholesale.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return &rules, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
