package thesaurus

// Concept is a normalized terminology entry. Synonym order is meaningful: the
// first entry is the preferred term.
type Concept struct {
	Code          string   `json:"code"`
	PreferredTerm string   `json:"preferred_term"`
	Parents       []string `json:"parents,omitempty"`
	Synonyms      []string `json:"synonyms,omitempty"`
	SemanticTypes []string `json:"semantic_types,omitempty"`
}

// Edge is one parent-of relation. A child may have multiple parents and the
// resulting graph is not guaranteed acyclic.
type Edge struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// SynonymEntry is one row of the flattened synonym table.
type SynonymEntry struct {
	Code    string `json:"code"`
	Synonym string `json:"synonym"`
}

// HasSemanticType reports whether the concept carries any of the given types.
func (c Concept) HasSemanticType(types map[string]bool) bool {
	for _, st := range c.SemanticTypes {
		if types[st] {
			return true
		}
	}
	return false
}
