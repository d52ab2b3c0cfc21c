package verdict

import (
	"log/slog"

	"github.com/xraph/verdict/plugin"
	"github.com/xraph/verdict/schemaval"
	"github.com/xraph/verdict/search"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	searcher  Searcher
	validator SchemaValidator
	logger    *slog.Logger
	plugins   []plugin.Plugin
}

func defaultOptions() *options {
	return &options{
		searcher:  search.New(),
		validator: schemaval.New(),
		logger:    slog.Default(),
	}
}

// WithSearcher replaces the default JMESPath query evaluator.
func WithSearcher(s Searcher) Option {
	return func(o *options) {
		if s != nil {
			o.searcher = s
		}
	}
}

// WithSchemaValidator replaces the default JSON Schema validator.
func WithSchemaValidator(v SchemaValidator) Option {
	return func(o *options) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPlugin registers a lifecycle plugin. May be given multiple times;
// plugins are notified in registration order.
func WithPlugin(p plugin.Plugin) Option {
	return func(o *options) {
		if p != nil {
			o.plugins = append(o.plugins, p)
		}
	}
}

// Defaults for the capability interfaces live in their own packages;
// assert conformance here to keep those packages decoupled from this one.
var (
	_ Searcher        = (*search.JMESPath)(nil)
	_ SchemaValidator = (*schemaval.Validator)(nil)
)
