// Package graph implements breadth-first ancestor and descendant queries over
// a store snapshot. The walk keeps a visited set keyed by code, so it
// terminates even when synthetic edges introduce cycles, and the recorded
// distance of every code is its minimum hop count from the seed set.
package graph

import (
	"sort"

	"github.com/duynguyendang/termgraph/pkg/store"
)

// Hit is one traversal result.
type Hit struct {
	Code     string `json:"code"`
	Term     string `json:"term"`
	Distance int    `json:"distance"`
}

// Ancestors walks parent edges upward from the seed set. Seeds are included
// at distance 0. Seeds absent from the graph contribute nothing.
func Ancestors(snap *store.Snapshot, seeds []string) []Hit {
	return walk(snap, seeds, snap.Parents)
}

// Descendants walks child edges downward from the seed set.
func Descendants(snap *store.Snapshot, seeds []string) []Hit {
	return walk(snap, seeds, snap.Children)
}

// walk is a level-by-level BFS. Results are ordered by ascending distance;
// ties within a level are sorted by code so responses are byte-stable.
func walk(snap *store.Snapshot, seeds []string, next func(string) []string) []Hit {
	visited := make(map[string]bool, len(seeds))
	level := make([]string, 0, len(seeds))
	for _, code := range seeds {
		if visited[code] {
			continue
		}
		if _, ok := snap.Concept(code); !ok {
			continue
		}
		visited[code] = true
		level = append(level, code)
	}

	var hits []Hit
	for dist := 0; len(level) > 0; dist++ {
		sort.Strings(level)
		var frontier []string
		for _, code := range level {
			term, _ := snap.PreferredTerm(code)
			hits = append(hits, Hit{Code: code, Term: term, Distance: dist})
			for _, n := range next(code) {
				if visited[n] {
					continue
				}
				if _, ok := snap.Concept(n); !ok {
					continue
				}
				visited[n] = true
				frontier = append(frontier, n)
			}
		}
		level = frontier
	}
	return hits
}
