package store

import (
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

func openTestStore(t *testing.T) *ConceptStore {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.BypassLockGuard = true // For testing
	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTables() ([]thesaurus.Concept, []thesaurus.Edge, []thesaurus.SynonymEntry) {
	concepts := []thesaurus.Concept{
		{Code: "C1", PreferredTerm: "Root", Synonyms: []string{"Root"}, SemanticTypes: []string{"Finding"}},
		{Code: "C5", PreferredTerm: "Mid", Parents: []string{"C1"}, Synonyms: []string{"Mid", "Middle"}},
		{Code: "C10", PreferredTerm: "Leaf", Parents: []string{"C5"}, Synonyms: []string{"Leaf"}},
	}
	edges := []thesaurus.Edge{
		{Child: "C5", Parent: "C1"},
		{Child: "C10", Parent: "C5"},
	}
	synonyms := []thesaurus.SynonymEntry{
		{Code: "C1", Synonym: "Root"},
		{Code: "C5", Synonym: "Mid"},
		{Code: "C5", Synonym: "Middle"},
		{Code: "C10", Synonym: "Leaf"},
	}
	return concepts, edges, synonyms
}

func TestRebuildAndLookup(t *testing.T) {
	s := openTestStore(t)

	concepts, edges, synonyms := testTables()
	if err := s.Rebuild(concepts, edges, synonyms, "run-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	term, ok := s.LookupTerm("C5")
	if !ok || term != "Mid" {
		t.Errorf("LookupTerm(C5) = %q, %v; want Mid, true", term, ok)
	}
	if _, ok := s.LookupTerm("C404"); ok {
		t.Error("LookupTerm(C404) found a concept, want none")
	}

	snap := s.Snapshot()
	if snap.Len() != 3 {
		t.Errorf("Len = %d, want 3", snap.Len())
	}
	if got := snap.Parents("C10"); len(got) != 1 || got[0] != "C5" {
		t.Errorf("Parents(C10) = %v, want [C5]", got)
	}
	if got := snap.Children("C1"); len(got) != 1 || got[0] != "C5" {
		t.Errorf("Children(C1) = %v, want [C5]", got)
	}
}

func TestEmptyStoreQueries(t *testing.T) {
	s := openTestStore(t)

	snap := s.Snapshot()
	if snap.Len() != 0 {
		t.Errorf("Len = %d, want 0", snap.Len())
	}
	if _, ok := s.LookupTerm("C1"); ok {
		t.Error("LookupTerm on empty store found a concept")
	}
}

func TestRebuildReplacesSnapshot(t *testing.T) {
	s := openTestStore(t)

	concepts, edges, synonyms := testTables()
	if err := s.Rebuild(concepts, edges, synonyms, "run-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	old := s.Snapshot()

	replacement := []thesaurus.Concept{
		{Code: "C2", PreferredTerm: "Other", Synonyms: []string{"Other"}},
	}
	if err := s.Rebuild(replacement, nil, nil, "run-2"); err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}

	// The snapshot captured before the rebuild still serves the full old view.
	if old.Len() != 3 {
		t.Errorf("old snapshot Len = %d, want 3", old.Len())
	}
	if _, ok := old.Concept("C1"); !ok {
		t.Error("old snapshot lost C1")
	}

	// New readers see only the replacement.
	snap := s.Snapshot()
	if snap.Len() != 1 {
		t.Errorf("new snapshot Len = %d, want 1", snap.Len())
	}
	if _, ok := snap.Concept("C1"); ok {
		t.Error("new snapshot still contains C1")
	}
	if snap.Generation() <= old.Generation() {
		t.Errorf("generation did not advance: %d -> %d", old.Generation(), snap.Generation())
	}
}

func TestReopenLoadsSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BypassLockGuard = true

	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}

	concepts, edges, synonyms := testTables()
	if err := s.Rebuild(concepts, edges, synonyms, "run-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	snap := reopened.Snapshot()
	if snap.Len() != 3 {
		t.Errorf("Len after reopen = %d, want 3", snap.Len())
	}
	c, ok := snap.Concept("C5")
	if !ok {
		t.Fatal("C5 missing after reopen")
	}
	if c.PreferredTerm != "Mid" || len(c.Synonyms) != 2 {
		t.Errorf("C5 = %+v, want PreferredTerm Mid with 2 synonyms", c)
	}
	if got := snap.Parents("C10"); len(got) != 1 || got[0] != "C5" {
		t.Errorf("Parents(C10) after reopen = %v, want [C5]", got)
	}

	runID, err := reopened.RunID()
	if err != nil {
		t.Fatalf("RunID failed: %v", err)
	}
	if runID != "run-1" {
		t.Errorf("RunID = %q, want run-1", runID)
	}
}

func TestRebuildClearsAbortedGeneration(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BypassLockGuard = true

	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}

	concepts, edges, synonyms := testTables()
	if err := s.Rebuild(concepts, edges, synonyms, "run-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Simulate a rebuild attempt that died after part of its batch committed:
	// rows exist under the next generation but the meta key never flipped.
	phantom := thesaurus.Concept{Code: "C999", PreferredTerm: "Phantom", Synonyms: []string{"Phantom"}}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyConcept(2, phantom.Code), encodeConcept(phantom))
	})
	if err != nil {
		t.Fatalf("failed to inject orphan row: %v", err)
	}

	replacement := []thesaurus.Concept{
		{Code: "C2", PreferredTerm: "Other", Synonyms: []string{"Other"}},
	}
	if err := s.Rebuild(replacement, nil, nil, "run-2"); err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	snap := reopened.Snapshot()
	if snap.Len() != 1 {
		t.Errorf("Len after reopen = %d, want 1", snap.Len())
	}
	if _, ok := snap.Concept("C999"); ok {
		t.Error("row from the aborted rebuild attempt is visible after reopen")
	}
	if _, ok := snap.Concept("C2"); !ok {
		t.Error("C2 missing after reopen")
	}
}

func TestSynonymTablePersisted(t *testing.T) {
	s := openTestStore(t)

	concepts, edges, synonyms := testTables()
	if err := s.Rebuild(concepts, edges, synonyms, "run-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	got, err := s.Synonyms()
	if err != nil {
		t.Fatalf("Synonyms failed: %v", err)
	}
	if len(got) != len(synonyms) {
		t.Fatalf("Synonyms = %d rows, want %d", len(got), len(synonyms))
	}

	want := make(map[thesaurus.SynonymEntry]bool, len(synonyms))
	for _, syn := range synonyms {
		want[syn] = true
	}
	for _, syn := range got {
		if !want[syn] {
			t.Errorf("unexpected synonym row %v", syn)
		}
	}
}
