package verdict

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// toDocument round-trips v through JSON so every value is map[string]any,
// []any, string, float64, bool, or nil. Searchers and schema validators
// both expect this shape, and structural equality stays type-consistent.
func toDocument(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("verdict: encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("verdict: decode document: %w", err)
	}
	return doc, nil
}

// grantDocument normalizes a grant to its wire form. Nil containers
// become empty so they satisfy the generated grant schema.
func grantDocument(g Grant) (map[string]any, error) {
	if g.Actions == nil {
		g.Actions = []string{}
	}
	if g.Data == nil {
		g.Data = map[string]any{}
	}
	if g.ContextSchema == nil {
		g.ContextSchema = map[string]any{}
	}
	doc, err := toDocument(g)
	if err != nil {
		return nil, err
	}
	return doc.(map[string]any), nil
}

// requestDocument normalizes a request to its wire form. Nil containers,
// including nil instance slices inside identity/parent/child maps,
// become empty so they satisfy the generated request schema.
func requestDocument(r *Request) (map[string]any, error) {
	doc, err := toDocument(r)
	if err != nil {
		return nil, err
	}
	m := doc.(map[string]any)
	for _, key := range []string{"identities", "parents", "children", "context"} {
		if m[key] == nil {
			m[key] = map[string]any{}
		}
	}
	for _, key := range []string{"identities", "parents", "children"} {
		group := m[key].(map[string]any)
		for typ, instances := range group {
			if instances == nil {
				group[typ] = []any{}
			}
		}
	}
	return m, nil
}

// queryPayload builds the document a grant's query is evaluated over.
func queryPayload(reqDoc, grantDoc map[string]any) map[string]any {
	return map[string]any{
		"request": reqDoc,
		"grant":   grantDoc,
	}
}
