// Package store implements the durable concept graph store on BadgerDB.
//
// All table rows live under a generation prefix. A rebuild writes the next
// generation in full, then flips a single meta key and swaps the in-memory
// snapshot pointer, so readers either see the previous complete snapshot or
// the new one, never a partial mix. The previous generation is dropped after
// the flip.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

// ConceptStore holds one terminology release: concepts, hierarchy edges and
// synonyms. Reads are served from an atomically swapped in-memory snapshot;
// BadgerDB provides durability between runs.
type ConceptStore struct {
	db     *badger.DB
	config *Config

	snap atomic.Pointer[Snapshot]

	// Serializes Rebuild. Readers never take this lock.
	rebuildMu sync.Mutex
}

// Open opens (or creates) a store in the configured data directory and loads
// the current snapshot into memory.
func Open(cfg *Config) (*ConceptStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	db, err := OpenBadgerDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	s := &ConceptStore{db: db, config: cfg}

	gen, err := s.currentGeneration()
	if err != nil {
		db.Close()
		return nil, err
	}
	if gen > 0 {
		snap, err := s.loadSnapshot(gen)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load generation %d: %w", gen, err)
		}
		s.snap.Store(snap)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *ConceptStore) Close() error {
	return s.db.Close()
}

// Snapshot returns the current read view. A store that has never been rebuilt
// returns an empty snapshot, so queries against it yield empty results rather
// than errors.
func (s *ConceptStore) Snapshot() *Snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	return newSnapshot(0, nil, nil)
}

// LookupTerm returns the preferred term for a code.
func (s *ConceptStore) LookupTerm(code string) (string, bool) {
	return s.Snapshot().PreferredTerm(code)
}

// Rebuild atomically replaces the store contents with the given tables.
// Concurrent readers keep seeing the prior snapshot until the new generation
// is fully written and the meta key flips.
func (s *ConceptStore) Rebuild(concepts []thesaurus.Concept, edges []thesaurus.Edge, synonyms []thesaurus.SynonymEntry, runID string) error {
	if s.config.ReadOnly {
		return fmt.Errorf("store is read-only")
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	oldGen, err := s.currentGeneration()
	if err != nil {
		return err
	}
	gen := oldGen + 1

	// A previous rebuild of this generation may have died after part of its
	// batch committed without ever flipping the meta key. Those rows would
	// otherwise merge into this run and surface on the next reopen.
	if err := s.db.DropPrefix(genPrefix(gen)); err != nil {
		return fmt.Errorf("failed to clear generation %d: %w", gen, err)
	}

	// Phase 1: write every row of the new generation. These keys are
	// invisible to readers until the meta flip below.
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, c := range concepts {
		if err := wb.Set(keyConcept(gen, c.Code), encodeConcept(c)); err != nil {
			return fmt.Errorf("failed to write concept %s: %w", c.Code, err)
		}
	}
	for _, e := range edges {
		if err := wb.Set(keyEdge(gen, e.Child, e.Parent), nil); err != nil {
			return fmt.Errorf("failed to write edge %s->%s: %w", e.Child, e.Parent, err)
		}
	}
	synIndex := make(map[string]int)
	for _, syn := range synonyms {
		n := synIndex[syn.Code]
		synIndex[syn.Code] = n + 1
		if err := wb.Set(keySynonym(gen, syn.Code, n), []byte(syn.Synonym)); err != nil {
			return fmt.Errorf("failed to write synonym for %s: %w", syn.Code, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush rebuild batch: %w", err)
	}

	// Phase 2: flip the current generation in one transaction.
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyMeta(gen), []byte(runID+"\t"+strconv.Itoa(len(concepts)))); err != nil {
			return err
		}
		return txn.Set(keyCurrent, []byte(strconv.FormatUint(gen, 10)))
	})
	if err != nil {
		return fmt.Errorf("failed to commit generation %d: %w", gen, err)
	}

	s.snap.Store(newSnapshot(gen, concepts, edges))

	// Garbage-collect the previous generation. Readers already moved on.
	if oldGen > 0 {
		if err := s.db.DropPrefix(genPrefix(oldGen)); err != nil {
			return fmt.Errorf("failed to drop generation %d: %w", oldGen, err)
		}
	}

	return nil
}

// Synonyms scans the persisted synonym table of the current generation.
func (s *ConceptStore) Synonyms() ([]thesaurus.SynonymEntry, error) {
	gen := s.Snapshot().Generation()
	if gen == 0 {
		return nil, nil
	}

	var out []thesaurus.SynonymEntry
	prefix := synonymPrefix(gen)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			// Key shape: g/<gen>/s/<code>/<n>
			rest := strings.TrimPrefix(key, string(prefix))
			idx := strings.LastIndex(rest, "/")
			if idx < 0 {
				continue
			}
			code := rest[:idx]
			err := it.Item().Value(func(val []byte) error {
				out = append(out, thesaurus.SynonymEntry{Code: code, Synonym: string(val)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunID returns the ingest run identifier recorded with the current
// generation, if any.
func (s *ConceptStore) RunID() (string, error) {
	gen := s.Snapshot().Generation()
	if gen == 0 {
		return "", nil
	}
	var runID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyMeta(gen))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			runID, _, _ = strings.Cut(string(val), "\t")
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *ConceptStore) currentGeneration() (uint64, error) {
	var gen uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyCurrent)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			g, err := strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt generation marker: %w", err)
			}
			gen = g
			return nil
		})
	})
	return gen, err
}

func (s *ConceptStore) loadSnapshot(gen uint64) (*Snapshot, error) {
	var concepts []thesaurus.Concept
	var edges []thesaurus.Edge

	err := s.db.View(func(txn *badger.Txn) error {
		cPrefix := conceptPrefix(gen)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = cPrefix
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			code := strings.TrimPrefix(string(it.Item().Key()), string(cPrefix))
			err := it.Item().Value(func(val []byte) error {
				c, err := decodeConcept(code, val)
				if err != nil {
					return err
				}
				concepts = append(concepts, c)
				return nil
			})
			if err != nil {
				it.Close()
				return err
			}
		}
		it.Close()

		ePrefix := edgePrefix(gen)
		opts = badger.DefaultIteratorOptions
		opts.Prefix = ePrefix
		it = txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), string(ePrefix))
			child, parent, ok := strings.Cut(rest, "/")
			if !ok {
				continue
			}
			edges = append(edges, thesaurus.Edge{Child: child, Parent: parent})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newSnapshot(gen, concepts, edges), nil
}

// encodeConcept flattens a concept row: preferred term, parents, synonyms and
// semantic types tab-separated, multi-valued columns pipe-joined.
func encodeConcept(c thesaurus.Concept) []byte {
	cols := []string{
		c.PreferredTerm,
		thesaurus.JoinValues(c.Parents),
		thesaurus.JoinValues(c.Synonyms),
		thesaurus.JoinValues(c.SemanticTypes),
	}
	return []byte(strings.Join(cols, thesaurus.FieldDelimiter))
}

func decodeConcept(code string, val []byte) (thesaurus.Concept, error) {
	cols := strings.Split(string(val), thesaurus.FieldDelimiter)
	if len(cols) != 4 {
		return thesaurus.Concept{}, fmt.Errorf("corrupt concept row for %s: %d columns", code, len(cols))
	}
	return thesaurus.Concept{
		Code:          code,
		PreferredTerm: cols[0],
		Parents:       thesaurus.SplitValues(cols[1]),
		Synonyms:      splitOrdered(cols[2]),
		SemanticTypes: thesaurus.SplitValues(cols[3]),
	}, nil
}

// splitOrdered preserves synonym order exactly as written; SplitValues would
// also work but re-trims, and synonyms are stored verbatim.
func splitOrdered(col string) []string {
	if col == "" {
		return nil
	}
	return strings.Split(col, thesaurus.ValueDelimiter)
}
