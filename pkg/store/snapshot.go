package store

import (
	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

// Snapshot is an immutable in-memory view of one store generation. Traversal
// and dictionary queries run against a snapshot without touching BadgerDB, so
// any number of them may run concurrently while a rebuild is in flight.
type Snapshot struct {
	generation uint64
	order      []string
	concepts   map[string]thesaurus.Concept
	parents    map[string][]string
	children   map[string][]string
}

func newSnapshot(gen uint64, concepts []thesaurus.Concept, edges []thesaurus.Edge) *Snapshot {
	snap := &Snapshot{
		generation: gen,
		order:      make([]string, 0, len(concepts)),
		concepts:   make(map[string]thesaurus.Concept, len(concepts)),
		parents:    make(map[string][]string),
		children:   make(map[string][]string),
	}
	for _, c := range concepts {
		if _, dup := snap.concepts[c.Code]; !dup {
			snap.order = append(snap.order, c.Code)
		}
		snap.concepts[c.Code] = c
	}
	for _, e := range edges {
		snap.parents[e.Child] = append(snap.parents[e.Child], e.Parent)
		snap.children[e.Parent] = append(snap.children[e.Parent], e.Child)
	}
	return snap
}

// Generation returns the store generation this snapshot was built from.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Len returns the number of concepts.
func (s *Snapshot) Len() int {
	return len(s.concepts)
}

// Concept returns the concept for a code.
func (s *Snapshot) Concept(code string) (thesaurus.Concept, bool) {
	c, ok := s.concepts[code]
	return c, ok
}

// PreferredTerm returns the preferred term for a code.
func (s *Snapshot) PreferredTerm(code string) (string, bool) {
	c, ok := s.concepts[code]
	if !ok {
		return "", false
	}
	return c.PreferredTerm, true
}

// Parents returns the parent codes of a concept.
func (s *Snapshot) Parents(code string) []string {
	return s.parents[code]
}

// Children returns the child codes of a concept.
func (s *Snapshot) Children(code string) []string {
	return s.children[code]
}

// Codes returns every concept code in insertion order.
func (s *Snapshot) Codes() []string {
	return s.order
}
