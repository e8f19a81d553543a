// Package thesaurus defines the concept model shared across the pipeline and
// the parser for the raw flat-file dump. One line of the dump is one concept,
// fields are tab separated and multi-valued fields use a pipe between entries.
// By convention the first entry of the synonym field is the preferred term.
package thesaurus

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/termgraph/pkg/common/errors"
)

const (
	// FieldDelimiter separates the columns of a raw row.
	FieldDelimiter = "\t"
	// ValueDelimiter separates entries inside a multi-valued column.
	ValueDelimiter = "|"

	// Column layout of the flat file. The subset flag is optional, so a row
	// has either NumFields or NumFields-1 columns.
	NumFields = 9
)

// Status is the concept status column of the raw dump.
type Status string

const (
	StatusActive   Status = ""
	StatusObsolete Status = "Obsolete_Concept"
	StatusRetired  Status = "Retired_Concept"
)

// Record is one parsed row of the raw dump, multi-valued fields split.
type Record struct {
	Code          string
	URI           string
	Parents       []string
	Synonyms      []string
	Definition    string
	DisplayName   string
	Status        Status
	SemanticTypes []string
	InSubset      bool
}

// PreferredTerm returns the first synonym, the conventional display label.
func (r Record) PreferredTerm() string {
	if len(r.Synonyms) == 0 {
		return ""
	}
	return r.Synonyms[0]
}

// IsRetired reports whether the concept is flagged obsolete or retired and
// must be filtered out before entering the graph.
func (r Record) IsRetired() bool {
	return r.Status == StatusObsolete || r.Status == StatusRetired
}

// ParseRow parses one raw line into a Record. Lines with the wrong number of
// columns are rejected; the caller decides whether to skip or abort.
func ParseRow(line string) (Record, error) {
	fields := strings.Split(line, FieldDelimiter)
	if len(fields) != NumFields && len(fields) != NumFields-1 {
		return Record{}, fmt.Errorf("%w: row has %d fields, want %d or %d", errors.ErrInvalidInput, len(fields), NumFields-1, NumFields)
	}

	rec := Record{
		Code:          strings.TrimSpace(fields[0]),
		URI:           strings.TrimSpace(fields[1]),
		Parents:       SplitValues(fields[2]),
		Synonyms:      SplitValues(fields[3]),
		Definition:    fields[4],
		DisplayName:   strings.TrimSpace(fields[5]),
		Status:        Status(strings.TrimSpace(fields[6])),
		SemanticTypes: SplitValues(fields[7]),
	}
	if len(fields) == NumFields {
		rec.InSubset = strings.TrimSpace(fields[8]) != ""
	}

	if rec.Code == "" {
		return Record{}, fmt.Errorf("%w: row has empty code", errors.ErrInvalidInput)
	}
	return rec, nil
}

// SplitValues splits a pipe-joined multi-value field into a deduplicated,
// order-preserving list. Empty entries are dropped.
func SplitValues(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ValueDelimiter)
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// JoinValues is the inverse of SplitValues, used when persisting multi-valued
// columns.
func JoinValues(values []string) string {
	return strings.Join(values, ValueDelimiter)
}
