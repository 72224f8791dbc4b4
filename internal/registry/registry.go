// Package registry holds the static catalog of government data endpoints.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an endpoint id is not in the catalog.
var ErrNotFound = errors.New("endpoint not found")

// KeyLocation says where an endpoint expects its API key.
type KeyLocation string

const (
	KeyInHeader KeyLocation = "header"
	KeyInQuery  KeyLocation = "query"
)

// Endpoint describes one external data source. Instances are immutable after
// process start.
type Endpoint struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Method      string      `json:"method"`
	RequiresKey bool        `json:"requiresKey"`
	KeyName     string      `json:"-"`
	KeyLocation KeyLocation `json:"-"`
	// SecretName is the secret provider lookup for the endpoint's API key.
	SecretName string   `json:"-"`
	Keywords   []string `json:"searchKeywords"`
	Example    string   `json:"example"`
}

// Registry is an ordered, read-only endpoint table.
type Registry struct {
	endpoints []Endpoint
	byID      map[string]int
}

// New builds a registry from an ordered endpoint table. Duplicate ids are a
// configuration error.
func New(endpoints []Endpoint) (*Registry, error) {
	byID := make(map[string]int, len(endpoints))
	for i, ep := range endpoints {
		if ep.ID == "" {
			return nil, fmt.Errorf("endpoint %d has empty id", i)
		}
		if _, ok := byID[ep.ID]; ok {
			return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		if ep.Method != "GET" && ep.Method != "POST" {
			return nil, fmt.Errorf("endpoint %q has unsupported method %q", ep.ID, ep.Method)
		}
		byID[ep.ID] = i
	}
	return &Registry{endpoints: endpoints, byID: byID}, nil
}

// Default returns a registry over the built-in catalog.
func Default() *Registry {
	r, err := New(catalog)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in catalog: %v", err))
	}
	return r
}

// List returns all endpoints in insertion order.
func (r *Registry) List() []Endpoint {
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Find returns the endpoint with the given id or ErrNotFound.
func (r *Registry) Find(id string) (Endpoint, error) {
	i, ok := r.byID[id]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return r.endpoints[i], nil
}

// CandidatesFor returns endpoints relevant to the given filter tokens. An
// empty token set means "no filter" and matches everything. Otherwise an
// endpoint matches when its id, category, or any search keyword equals one of
// the tokens, case-insensitively.
func (r *Registry) CandidatesFor(tokens []string) []Endpoint {
	if len(tokens) == 0 {
		return r.List()
	}

	want := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			want[tok] = struct{}{}
		}
	}
	if len(want) == 0 {
		return r.List()
	}

	var out []Endpoint
	for _, ep := range r.endpoints {
		if matchesAny(ep, want) {
			out = append(out, ep)
		}
	}
	return out
}

func matchesAny(ep Endpoint, want map[string]struct{}) bool {
	if _, ok := want[strings.ToLower(ep.ID)]; ok {
		return true
	}
	if _, ok := want[strings.ToLower(ep.Category)]; ok {
		return true
	}
	for _, kw := range ep.Keywords {
		if _, ok := want[strings.ToLower(kw)]; ok {
			return true
		}
	}
	return false
}
