// Package search provides the default JMESPath query evaluator.
package search

import (
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// JMESPath evaluates JMESPath expressions over JSON-shaped documents.
// The zero value is ready to use and safe for concurrent use.
type JMESPath struct{}

// New returns a JMESPath query evaluator.
func New() *JMESPath {
	return &JMESPath{}
}

// Search compiles the query and runs it against data. Compile and
// runtime failures are both returned as errors; the caller decides how
// to treat them.
func (j *JMESPath) Search(query string, data any) (any, error) {
	expr, err := jmespath.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("search: compile query: %w", err)
	}

	result, err := expr.Search(data)
	if err != nil {
		return nil, fmt.Errorf("search: evaluate query: %w", err)
	}

	return result, nil
}
