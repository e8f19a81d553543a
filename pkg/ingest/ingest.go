// Package ingest orchestrates the batch pipeline: parse the raw dump,
// normalize it into the concept/edge/synonym tables and rebuild the store.
// Each stage consumes the complete output of the previous one; the store only
// flips to the new snapshot if every stage succeeds.
package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/duynguyendang/termgraph/pkg/common/errors"
	"github.com/duynguyendang/termgraph/pkg/normalize"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// Run executes one full pipeline run from a local dump path into the store.
func Run(s *store.ConceptStore, rules *normalize.Rules, dumpPath string) error {
	runID := uuid.NewString()

	fmt.Printf("Pass 1: parsing %s (run %s)...\n", dumpPath, runID)
	records, skipped, err := ReadDumpFile(dumpPath)
	if err != nil {
		return errors.NewStageError("parse", "", err)
	}
	if skipped > 0 {
		fmt.Printf("  Skipped %d malformed rows\n", skipped)
	}

	fmt.Printf("Pass 2: normalizing %d records...\n", len(records))
	res, err := normalize.Normalize(records, rules)
	if err != nil {
		return errors.NewStageError("normalize", "", err)
	}

	fmt.Printf("Pass 3: rebuilding store (%d concepts, %d edges, %d synonyms)...\n",
		len(res.Concepts), len(res.Edges), len(res.Synonyms))
	if err := s.Rebuild(res.Concepts, res.Edges, res.Synonyms, runID); err != nil {
		return errors.NewStageError("rebuild", "", err)
	}

	fmt.Printf("Run %s complete.\n", runID)
	return nil
}
