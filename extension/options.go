package extension

import (
	"log/slog"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/definition"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/plugin"
)

// ExtOption configures the Verdict Forge extension.
type ExtOption func(*Extension)

// WithDefinitions sets the identity and resource definitions the engine
// is built from. Required.
func WithDefinitions(identityDefs []definition.Identity, resourceDefs []definition.Resource) ExtOption {
	return func(e *Extension) {
		e.identityDefs = identityDefs
		e.resourceDefs = resourceDefs
	}
}

// WithStore sets the grant persistence backend.
func WithStore(s grantstore.Store) ExtOption {
	return func(e *Extension) {
		e.store = s
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...verdict.Option) ExtOption {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
