// Package evs augments a seed code set with relations from an EVS-style
// terminology REST API, then pulls in graph ancestors. The remote lookup is
// an injected capability so the expander is testable against canned relation
// sets.
package evs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RelationKind selects which relation table of a concept to fetch.
type RelationKind string

const (
	KindRoles               RelationKind = "roles"
	KindInverseRoles        RelationKind = "inverseRoles"
	KindAssociations        RelationKind = "associations"
	KindInverseAssociations RelationKind = "inverseAssociations"
	KindParents             RelationKind = "parents"
	KindChildren            RelationKind = "children"
)

// Relation is one typed relation to another concept.
type Relation struct {
	Type string `json:"type"`
	Code string `json:"relatedCode"`
}

// Lookup fetches the relations of one concept. An empty result and a nil
// error both mean "no additional relations"; the expander treats them the
// same way.
type Lookup interface {
	Relations(ctx context.Context, code string, kind RelationKind) ([]Relation, error)
}

// Client is a Lookup backed by an EVS-style REST endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given API base URL, e.g.
// "https://api-evsrest.nci.nih.gov/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Relations fetches one relation table for a code.
func (c *Client) Relations(ctx context.Context, code string, kind RelationKind) ([]Relation, error) {
	u := fmt.Sprintf("%s/concept/ncit/%s/%s", c.baseURL, url.PathEscape(code), kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relation lookup for %s failed: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relation lookup for %s returned %s", code, resp.Status)
	}

	var relations []Relation
	if err := json.NewDecoder(resp.Body).Decode(&relations); err != nil {
		return nil, fmt.Errorf("failed to decode relations for %s: %w", code, err)
	}
	return relations, nil
}
