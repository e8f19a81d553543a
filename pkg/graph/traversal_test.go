package graph

import (
	"reflect"
	"testing"

	"github.com/duynguyendang/termgraph/pkg/store"
	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

// buildSnapshot creates a throwaway store holding the given edges, with one
// concept per referenced code.
func buildSnapshot(t *testing.T, edges []thesaurus.Edge) *store.Snapshot {
	t.Helper()

	codes := make(map[string]bool)
	for _, e := range edges {
		codes[e.Child] = true
		codes[e.Parent] = true
	}
	var concepts []thesaurus.Concept
	for code := range codes {
		concepts = append(concepts, thesaurus.Concept{
			Code:          code,
			PreferredTerm: "term-" + code,
			Synonyms:      []string{"term-" + code},
		})
	}

	cfg := store.DefaultConfig(t.TempDir())
	cfg.BypassLockGuard = true
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Rebuild(concepts, edges, nil, "test"); err != nil {
		t.Fatal(err)
	}
	return s.Snapshot()
}

func flat(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Code
	}
	return out
}

func TestAncestorsChain(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{
		{Child: "C10", Parent: "C5"},
		{Child: "C5", Parent: "C1"},
	})

	hits := Ancestors(snap, []string{"C10"})
	want := []Hit{
		{Code: "C10", Term: "term-C10", Distance: 0},
		{Code: "C5", Term: "term-C5", Distance: 1},
		{Code: "C1", Term: "term-C1", Distance: 2},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("Ancestors = %v, want %v", hits, want)
	}
}

func TestDescendantsChain(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{
		{Child: "C10", Parent: "C5"},
		{Child: "C5", Parent: "C1"},
	})

	hits := Descendants(snap, []string{"C1"})
	want := []Hit{
		{Code: "C1", Term: "term-C1", Distance: 0},
		{Code: "C5", Term: "term-C5", Distance: 1},
		{Code: "C10", Term: "term-C10", Distance: 2},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("Descendants = %v, want %v", hits, want)
	}
}

func TestReflexivity(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{{Child: "C2", Parent: "C1"}})

	for _, code := range []string{"C1", "C2"} {
		for name, walk := range map[string]func(*store.Snapshot, []string) []Hit{
			"Ancestors":   Ancestors,
			"Descendants": Descendants,
		} {
			hits := walk(snap, []string{code})
			if len(hits) == 0 || hits[0].Code != code || hits[0].Distance != 0 {
				t.Errorf("%s(%s) does not start with the seed at distance 0: %v", name, code, hits)
			}
		}
	}
}

func TestCycleSafety(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{
		{Child: "A", Parent: "B"},
		{Child: "B", Parent: "A"},
	})

	hits := Ancestors(snap, []string{"A"})
	want := []Hit{
		{Code: "A", Term: "term-A", Distance: 0},
		{Code: "B", Term: "term-B", Distance: 1},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("Ancestors over cycle = %v, want %v", hits, want)
	}
}

func TestMinimumDistance(t *testing.T) {
	// C4 is reachable from C1 directly and via C2->C3.
	snap := buildSnapshot(t, []thesaurus.Edge{
		{Child: "C1", Parent: "C2"},
		{Child: "C1", Parent: "C4"},
		{Child: "C2", Parent: "C3"},
		{Child: "C3", Parent: "C4"},
	})

	hits := Ancestors(snap, []string{"C1"})

	seen := make(map[string]int)
	for _, h := range hits {
		if _, dup := seen[h.Code]; dup {
			t.Errorf("code %s reported twice", h.Code)
		}
		seen[h.Code] = h.Distance
	}
	if seen["C4"] != 1 {
		t.Errorf("distance(C4) = %d, want 1 (minimum over paths)", seen["C4"])
	}
}

func TestUnknownSeedsIgnored(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{{Child: "C2", Parent: "C1"}})

	hits := Ancestors(snap, []string{"C404", "C2"})
	if !reflect.DeepEqual(flat(hits), []string{"C2", "C1"}) {
		t.Errorf("Ancestors = %v, want unknown seed skipped", flat(hits))
	}

	if hits := Ancestors(snap, []string{"C404"}); len(hits) != 0 {
		t.Errorf("Ancestors of unknown seed = %v, want empty", hits)
	}
}

func TestMultiSeedLevels(t *testing.T) {
	snap := buildSnapshot(t, []thesaurus.Edge{
		{Child: "C2", Parent: "C1"},
		{Child: "C3", Parent: "C1"},
	})

	hits := Ancestors(snap, []string{"C3", "C2"})
	// Both seeds at distance 0 sorted by code, then the shared parent once.
	want := []string{"C2", "C3", "C1"}
	if !reflect.DeepEqual(flat(hits), want) {
		t.Errorf("Ancestors = %v, want %v", flat(hits), want)
	}
}
