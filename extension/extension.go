// Package extension provides a Forge extension entry point for Verdict.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/api"
	"github.com/xraph/verdict/definition"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/grantstore/memory"
	"github.com/xraph/verdict/plugin"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "verdict"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Grant-based policy evaluation engine with JMESPath queries and JSON Schema validation"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Verdict as a Forge extension.
type Extension struct {
	config       Config
	identityDefs []definition.Identity
	resourceDefs []definition.Resource
	eng          *verdict.Engine
	store        grantstore.Store
	apiHandler   *api.API
	logger       *slog.Logger
	engineOpts   []verdict.Option
	plugins      []plugin.Plugin
}

// New creates a Verdict Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Verdict engine.
func (e *Extension) Engine() *verdict.Engine { return e.eng }

// Store returns the grant store.
func (e *Extension) Store() grantstore.Store { return e.store }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine and the store in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*verdict.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("verdict: register engine in container: %w", err)
	}
	if err := vessel.Provide(fapp.Container(), func() (grantstore.Store, error) {
		return e.store, nil
	}); err != nil {
		return fmt.Errorf("verdict: register store in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Resolve the grant store: option-provided, DI container, or memory.
	if e.store == nil {
		if s, err := forge.Inject[grantstore.Store](fapp.Container()); err == nil {
			e.store = s
		} else {
			e.store = memory.New()
		}
	}

	opts := make([]verdict.Option, 0, len(e.engineOpts)+len(e.plugins)+1)
	opts = append(opts, verdict.WithLogger(logger))
	opts = append(opts, e.engineOpts...)
	for _, x := range e.plugins {
		opts = append(opts, verdict.WithPlugin(x))
	}

	eng, err := verdict.NewEngine(e.identityDefs, e.resourceDefs, opts...)
	if err != nil {
		return fmt.Errorf("verdict: create engine: %w", err)
	}
	e.eng = eng

	e.apiHandler = api.New(eng, e.store, fapp.Router())

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("verdict: register routes: %w", err)
		}
	}

	return nil
}

// Start runs grant store migrations unless disabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("verdict: extension not initialized")
	}

	if !e.config.DisableMigrate && e.store != nil {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("verdict: migration failed: %w", err)
		}
	}

	return nil
}

// Stop gracefully shuts down: plugins are notified and the store closed.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	e.eng.Plugins().EmitShutdown(ctx)
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("verdict: extension not initialized")
	}
	if e.store == nil {
		return errors.New("verdict: no store configured")
	}
	return e.store.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all verdict API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
