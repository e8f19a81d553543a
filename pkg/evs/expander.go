package evs

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/duynguyendang/termgraph/pkg/graph"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// MaxWorkers bounds the concurrent relation lookups.
const MaxWorkers = 8

// expandRelationTypes are the two complementary kinds linking a gene product
// variant concept to the gene mutant encoding it. Only relations of these
// types contribute codes to the working set.
var expandRelationTypes = map[string]bool{
	"Gene_Product_Variant_Of_Gene_Product":                   true,
	"Gene_Product_Sequence_Variation_Encoded_By_Gene_Mutant": true,
}

// Expander grows a seed code set: one inverse-role lookup per seed, then the
// graph ancestors of everything collected.
type Expander struct {
	lookup Lookup
}

// NewExpander creates an Expander using the given relation lookup.
func NewExpander(lookup Lookup) *Expander {
	return &Expander{lookup: lookup}
}

// Expand returns the union of the seeds, their matching related codes and the
// ancestors of that whole set, sorted. The relation pass is a single sweep:
// newly discovered codes are not re-queried. A failed or empty lookup for one
// seed contributes nothing and does not abort the pass; the union is computed
// only after every outstanding lookup has resolved.
func (e *Expander) Expand(ctx context.Context, snap *store.Snapshot, seeds []string) ([]string, error) {
	working := make(map[string]bool, len(seeds))
	for _, code := range seeds {
		working[code] = true
	}

	jobs := make(chan string, len(seeds))
	related := make(chan string, len(seeds))
	var wg sync.WaitGroup

	workerCount := MaxWorkers
	if len(seeds) < workerCount {
		workerCount = len(seeds)
	}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				relations, err := e.lookup.Relations(ctx, code, KindInverseRoles)
				if err != nil {
					log.Printf("relation lookup for %s failed, continuing: %v", code, err)
					continue
				}
				for _, rel := range relations {
					if expandRelationTypes[rel.Type] && rel.Code != "" {
						related <- rel.Code
					}
				}
			}
		}()
	}

	for code := range working {
		jobs <- code
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(related)
	}()

	// The union happens only here, after all reads have resolved.
	for code := range related {
		working[code] = true
	}

	flat := make([]string, 0, len(working))
	for code := range working {
		flat = append(flat, code)
	}
	for _, hit := range graph.Ancestors(snap, flat) {
		working[hit.Code] = true
	}

	out := make([]string, 0, len(working))
	for code := range working {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}
