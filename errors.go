package verdict

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by engine construction and the grant store.
var (
	// ErrInvalidDefinitions reports that the identity and/or resource
	// definitions failed validation.
	ErrInvalidDefinitions = errors.New("verdict: invalid definitions")

	// ErrInvalidGrants reports that one or more grants failed schema
	// validation.
	ErrInvalidGrants = errors.New("verdict: invalid grants")

	// ErrInvalidRequest reports that a request failed schema validation.
	ErrInvalidRequest = errors.New("verdict: invalid request")
)

// DefinitionError reports a problem with a single identity or resource
// definition.
type DefinitionError struct {
	// Message describes the problem.
	Message string `json:"message"`

	// Critical is always true for definition errors: evaluation cannot
	// proceed against a broken definition set.
	Critical bool `json:"critical"`

	// DefinitionType is "identity" or "resource".
	DefinitionType string `json:"definition_type"`

	// Definition is the offending definition.
	Definition any `json:"definition"`
}

// GrantError reports that a grant failed validation against the
// generated grant schema.
type GrantError struct {
	Message  string `json:"message"`
	Critical bool   `json:"critical"`

	// Grant is the offending raw grant value.
	Grant any `json:"grant"`
}

// RequestError reports that a request failed validation against the
// generated request schema.
type RequestError struct {
	Message  string `json:"message"`
	Critical bool   `json:"critical"`
}

// ContextError reports that a request context did not satisfy a grant's
// context schema, under the "error" or "critical" validation levels.
type ContextError struct {
	Message  string `json:"message"`
	Critical bool   `json:"critical"`

	// Grant is the grant whose context schema rejected the request.
	Grant Grant `json:"grant"`
}

// QueryError reports that a grant's query failed to evaluate, under the
// "error" or "critical" validation levels.
type QueryError struct {
	Message  string `json:"message"`
	Critical bool   `json:"critical"`

	// Grant is the grant whose query failed.
	Grant Grant `json:"grant"`
}

// Errors aggregates every error recorded during a workflow, grouped by
// kind. All slices are non-nil so the zero groups serialize as empty
// arrays.
type Errors struct {
	Definition []DefinitionError `json:"definition"`
	Grant      []GrantError      `json:"grant"`
	Request    []RequestError    `json:"request"`
	Context    []ContextError    `json:"context"`
	Query      []QueryError      `json:"jmespath"`
}

func newErrors() Errors {
	return Errors{
		Definition: []DefinitionError{},
		Grant:      []GrantError{},
		Request:    []RequestError{},
		Context:    []ContextError{},
		Query:      []QueryError{},
	}
}

// Empty reports whether no errors were recorded.
func (e Errors) Empty() bool {
	return len(e.Definition) == 0 &&
		len(e.Grant) == 0 &&
		len(e.Request) == 0 &&
		len(e.Context) == 0 &&
		len(e.Query) == 0
}

// merge appends all of other's errors onto e, preserving order within
// each group.
func (e *Errors) merge(other Errors) {
	e.Definition = append(e.Definition, other.Definition...)
	e.Grant = append(e.Grant, other.Grant...)
	e.Request = append(e.Request, other.Request...)
	e.Context = append(e.Context, other.Context...)
	e.Query = append(e.Query, other.Query...)
}

// InvalidDefinitionsError is returned by NewEngine when the identity or
// resource definitions are not valid. It carries every recorded
// definition error.
type InvalidDefinitionsError struct {
	Errors []DefinitionError
}

func (e *InvalidDefinitionsError) Error() string {
	return fmt.Sprintf("verdict: invalid definitions (%d errors)", len(e.Errors))
}

// Unwrap lets errors.Is match ErrInvalidDefinitions.
func (e *InvalidDefinitionsError) Unwrap() error { return ErrInvalidDefinitions }
