package normalize

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

// Result holds the three output tables of a normalization run. All three are
// deduplicated and deterministically ordered.
type Result struct {
	Concepts []thesaurus.Concept
	Edges    []thesaurus.Edge
	Synonyms []thesaurus.SynonymEntry
}

// Normalize applies the cleaning steps to the parsed records, in fixed order:
//
//  1. status filter (obsolete/retired dropped)
//  2. record dedup (last write wins on conflicting attributes)
//  3. hierarchy repair rules
//  4. targeted edge injection
//  5. targeted synonym injection
//  6. generic-entity exclusion
//  7. generic-synonym pruning
//  8. parenthetical synonym pruning
//  9. targeted synonym removal
// 10. final dedup and table materialization
//
// Edges only reference codes that survive normalization. Running the same
// input twice yields identical tables.
func Normalize(records []thesaurus.Record, rules *Rules) (*Result, error) {
	if rules == nil {
		rules = DefaultRules()
	}

	// Status filter + dedup. Later rows overwrite earlier ones for the same
	// code, but the code keeps its first-seen position so output order is
	// stable.
	order := make([]string, 0, len(records))
	byCode := make(map[string]*thesaurus.Concept, len(records))
	for _, rec := range records {
		if rec.IsRetired() {
			continue
		}
		c := &thesaurus.Concept{
			Code:          rec.Code,
			PreferredTerm: rec.PreferredTerm(),
			Parents:       dedupe(rec.Parents),
			Synonyms:      dedupe(rec.Synonyms),
			SemanticTypes: dedupe(rec.SemanticTypes),
		}
		if _, seen := byCode[rec.Code]; !seen {
			order = append(order, rec.Code)
		}
		byCode[rec.Code] = c
	}

	applyHierarchyRules(order, byCode, rules.Hierarchy)
	applyEdgeInjection(byCode, rules.AddEdges)
	applySynonymInjection(byCode, rules.AddSynonyms)

	// Generic-entity exclusion removes whole concepts.
	if len(rules.ExcludeConcepts) > 0 {
		excluded := toSet(rules.ExcludeConcepts)
		kept := order[:0]
		for _, code := range order {
			if excluded[code] {
				delete(byCode, code)
				continue
			}
			kept = append(kept, code)
		}
		order = kept
	}

	pruneSynonyms(byCode, rules)

	return materialize(order, byCode)
}

func applyHierarchyRules(order []string, byCode map[string]*thesaurus.Concept, hierarchy []HierarchyRule) {
	for _, rule := range hierarchy {
		anchors := toSet(rule.AnchorParents)
		excluded := toSet(rule.ExcludeCodes)
		for _, code := range order {
			c := byCode[code]
			if c == nil || excluded[c.Code] {
				continue
			}
			matched := false
			for _, p := range c.Parents {
				if anchors[p] {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			for _, add := range rule.AddParents {
				c.Parents = appendUnique(c.Parents, add)
			}
		}
	}
}

func applyEdgeInjection(byCode map[string]*thesaurus.Concept, edges []EdgeRule) {
	for _, e := range edges {
		if c, ok := byCode[e.Child]; ok {
			c.Parents = appendUnique(c.Parents, e.Parent)
		}
	}
}

func applySynonymInjection(byCode map[string]*thesaurus.Concept, syns []SynonymRule) {
	for _, s := range syns {
		if c, ok := byCode[s.Code]; ok {
			c.Synonyms = appendUnique(c.Synonyms, s.Synonym)
		}
	}
}

// pruneSynonyms runs the three synonym removal steps: configured generic
// strings, parenthetical strings (they create ambiguous matches downstream),
// and targeted per-code removals.
func pruneSynonyms(byCode map[string]*thesaurus.Concept, rules *Rules) {
	generic := toSet(rules.GenericSynonyms)

	targeted := make(map[string]map[string]bool, len(rules.RemoveSynonyms))
	for _, r := range rules.RemoveSynonyms {
		if targeted[r.Code] == nil {
			targeted[r.Code] = make(map[string]bool)
		}
		targeted[r.Code][r.Synonym] = true
	}

	for _, c := range byCode {
		kept := c.Synonyms[:0]
		for _, syn := range c.Synonyms {
			if generic[syn] {
				continue
			}
			if strings.ContainsAny(syn, "()") {
				continue
			}
			if targeted[c.Code][syn] {
				continue
			}
			kept = append(kept, syn)
		}
		c.Synonyms = kept

		// The preferred term tracks the first surviving synonym. A concept
		// whose synonyms were all pruned keeps its original label so
		// traversal results stay readable.
		if len(c.Synonyms) > 0 {
			c.PreferredTerm = c.Synonyms[0]
		}
	}
}

func materialize(order []string, byCode map[string]*thesaurus.Concept) (*Result, error) {
	res := &Result{
		Concepts: make([]thesaurus.Concept, 0, len(order)),
		Edges:    make([]thesaurus.Edge, 0, len(order)),
		Synonyms: make([]thesaurus.SynonymEntry, 0, len(order)),
	}

	seenEdge := make(map[thesaurus.Edge]bool)
	seenSyn := make(map[thesaurus.SynonymEntry]bool)

	for _, code := range order {
		c := byCode[code]
		if c == nil {
			return nil, fmt.Errorf("concept %s vanished during normalization", code)
		}

		// Parents referencing codes filtered out of the collection are
		// dropped, so edges never dangle.
		kept := c.Parents[:0]
		for _, p := range c.Parents {
			if _, ok := byCode[p]; ok {
				kept = append(kept, p)
			}
		}
		c.Parents = kept

		res.Concepts = append(res.Concepts, *c)

		for _, p := range c.Parents {
			e := thesaurus.Edge{Child: c.Code, Parent: p}
			if !seenEdge[e] {
				seenEdge[e] = true
				res.Edges = append(res.Edges, e)
			}
		}
		for _, syn := range c.Synonyms {
			s := thesaurus.SynonymEntry{Code: c.Code, Synonym: syn}
			if !seenSyn[s] {
				seenSyn[s] = true
				res.Synonyms = append(res.Synonyms, s)
			}
		}
	}

	return res, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
