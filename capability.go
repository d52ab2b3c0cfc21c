package verdict

// Searcher evaluates a query expression against a JSON-shaped document
// and returns the result. The engine treats a non-nil error according to
// the resolved query validation level; it never inspects the error
// itself.
type Searcher interface {
	Search(query string, data any) (any, error)
}

// SearchFunc adapts a plain function to the Searcher interface.
type SearchFunc func(query string, data any) (any, error)

// Search calls f.
func (f SearchFunc) Search(query string, data any) (any, error) { return f(query, data) }

// SchemaValidator validates a JSON-shaped document against a JSON
// Schema. A nil return means the document conforms; the error message is
// surfaced verbatim in recorded validation errors.
type SchemaValidator interface {
	Validate(schema, doc any) error
}

// ValidateFunc adapts a plain function to the SchemaValidator interface.
type ValidateFunc func(schema, doc any) error

// Validate calls f.
func (f ValidateFunc) Validate(schema, doc any) error { return f(schema, doc) }
