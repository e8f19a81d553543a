package dictionary

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// Match is a single term search result.
type Match struct {
	Code  string  `json:"code"`
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Search scores every synonym in the snapshot against the query and returns
// the best matches, one per concept. It combines exact match, Levenshtein
// distance and token-wise similarity, which handles both near-exact terms and
// "bag of words" queries with typos.
func Search(snap *store.Snapshot, query string, limit int) []Match {
	if query == "" || snap.Len() == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryLower := strings.ToLower(query)
	queryTokens := tokenize(queryLower)

	var results []Match
	for _, code := range snap.Codes() {
		c, _ := snap.Concept(code)

		best := 0.0
		bestTerm := ""
		for _, syn := range c.Synonyms {
			score := calculateScore(queryLower, queryTokens, syn)
			if score > best {
				best = score
				bestTerm = syn
			}
		}

		if best > 0.3 { // Threshold to filter out irrelevant results
			results = append(results, Match{Code: c.Code, Term: bestTerm, Score: best})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Code < results[j].Code
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// calculateScore returns a similarity score between 0 and 1.
func calculateScore(queryLower string, queryTokens map[string]bool, term string) float64 {
	termLower := strings.ToLower(term)

	if queryLower == termLower {
		return 1.0
	}
	if strings.Contains(termLower, queryLower) {
		return 0.95 // Substring match is very strong
	}

	// Global Levenshtein, for near-exact terms.
	levDist := levenshtein.Distance(queryLower, termLower, nil)
	maxLen := float64(len(queryLower))
	if len(termLower) > int(maxLen) {
		maxLen = float64(len(termLower))
	}
	globalLevScore := 1.0 - (float64(levDist) / maxLen)
	if globalLevScore < 0 {
		globalLevScore = 0
	}

	// Token-wise: best fuzzy match of each query token against term tokens.
	// Handles "lung carcinoma" vs "Non-Small Cell Lung Carcinoma" and typos
	// inside a single keyword.
	termTokens := tokenize(termLower)
	totalTokenScore := 0.0
	for qToken := range queryTokens {
		bestTokenScore := 0.0
		if termTokens[qToken] {
			bestTokenScore = 1.0
		} else {
			for tToken := range termTokens {
				dist := levenshtein.Distance(qToken, tToken, nil)
				tMax := float64(len(qToken))
				if len(tToken) > int(tMax) {
					tMax = float64(len(tToken))
				}
				score := 1.0 - (float64(dist) / tMax)
				if score > bestTokenScore {
					bestTokenScore = score
				}
			}
		}
		totalTokenScore += bestTokenScore
	}

	tokenScore := 0.0
	if len(queryTokens) > 0 {
		tokenScore = totalTokenScore / float64(len(queryTokens))
	}

	return math.Max(globalLevScore, tokenScore)
}

// tokenize splits a term into unique lowercase tokens on non-alphanumeric
// boundaries. Very short tokens are kept only for short inputs, so gene
// symbols like "ALK" still tokenize.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := strings.ToLower(current.String())
		if len(token) > 2 || len(s) < 10 {
			tokens[token] = true
		}
		current.Reset()
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return tokens
}
